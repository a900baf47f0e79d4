package permission

import (
	"context"
	"errors"
	"sort"
)

// ErrUnknownSubject is an exported constant or variable used by the session engine.
var ErrUnknownSubject = errors.New("unknown subject")

// Set defines a public type used by goSession APIs.
//
// Set instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Set map[string]struct{}

// Has describes the has operation and its observable behavior.
//
// Has does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s Set) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// List returns the permission codes in sorted order.
func (s Set) List() []string {
	out := make([]string, 0, len(s))
	for code := range s {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// RoleSource supplies role assignments and per-role grants.
//
// UserRoles returns [ErrUnknownSubject] for subjects it has never seen.
// RolePermissions silently skips unknown roles so a stale role name on a
// subject does not break authorization for its remaining roles.
type RoleSource interface {
	UserRoles(ctx context.Context, userID string) ([]string, error)
	RolePermissions(ctx context.Context, roles []string) (Set, error)
}

// Resolver computes effective permissions by unioning role grants.
//
//	Docs: docs/permission.md
type Resolver struct {
	source RoleSource
}

// NewResolver describes the newresolver operation and its observable behavior.
//
// NewResolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewResolver(source RoleSource) *Resolver {
	return &Resolver{source: source}
}

// Roles describes the roles operation and its observable behavior.
//
// Roles may return an error when input validation, dependency calls, or security checks fail.
// Roles does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) Roles(ctx context.Context, userID string) ([]string, error) {
	return r.source.UserRoles(ctx, userID)
}

// EffectivePermissions describes the effectivepermissions operation and its observable behavior.
//
// EffectivePermissions may return an error when input validation, dependency calls, or security checks fail.
// EffectivePermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID string) (Set, error) {
	roles, err := r.source.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	return r.source.RolePermissions(ctx, roles)
}

// Authorize describes the authorize operation and its observable behavior.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) Authorize(ctx context.Context, userID, code string) (bool, error) {
	perms, err := r.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}

	return perms.Has(code), nil
}

// StaticRoleSource is an in-memory [RoleSource] built from fixed maps.
// Inputs are deep-copied at construction.
type StaticRoleSource struct {
	userRoles map[string][]string
	rolePerms map[string][]string
}

// NewStaticRoleSource describes the newstaticrolesource operation and its observable behavior.
//
// NewStaticRoleSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStaticRoleSource(userRoles map[string][]string, rolePerms map[string][]string) *StaticRoleSource {
	return &StaticRoleSource{
		userRoles: cloneStringSliceMap(userRoles),
		rolePerms: cloneStringSliceMap(rolePerms),
	}
}

// UserRoles describes the userroles operation and its observable behavior.
//
// UserRoles may return an error when input validation, dependency calls, or security checks fail.
// UserRoles does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *StaticRoleSource) UserRoles(ctx context.Context, userID string) ([]string, error) {
	roles, ok := s.userRoles[userID]
	if !ok {
		return nil, ErrUnknownSubject
	}

	out := make([]string, len(roles))
	copy(out, roles)
	return out, nil
}

// RolePermissions describes the rolepermissions operation and its observable behavior.
//
// RolePermissions may return an error when input validation, dependency calls, or security checks fail.
// RolePermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *StaticRoleSource) RolePermissions(ctx context.Context, roles []string) (Set, error) {
	perms := make(Set)
	for _, role := range roles {
		for _, code := range s.rolePerms[role] {
			perms[code] = struct{}{}
		}
	}
	return perms, nil
}

func cloneStringSliceMap(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		vv := make([]string, len(v))
		copy(vv, v)
		out[k] = vv
	}
	return out
}
