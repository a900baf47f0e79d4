package middleware

import (
	"context"
	"net/http"
	"strings"

	goSession "github.com/kvn-dev/goSession"
)

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated principal injected by
// [Guard], if any.
func PrincipalFromContext(ctx context.Context) (*goSession.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*goSession.Principal)
	return p, ok
}

// Guard validates the bearer access token on every request and injects the
// resulting principal into the request context. Requests without a valid
// token are rejected with 401.
func Guard(engine *goSession.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := engine.Validate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission is [Guard] plus a permission check: the authenticated
// principal must hold permissionCode or the request is rejected with 403.
func RequirePermission(engine *goSession.Engine, permissionCode string) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := engine.Authorize(r.Context(), principal.UserID, permissionCode); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
