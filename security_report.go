package goSession

// SecurityReport describes the securityreport operation and its observable behavior.
//
// SecurityReport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm: e.config.JWT.SigningMethod,
		AccessTTL:        e.config.JWT.AccessTTL,
		RefreshTTL:       e.config.Refresh.TTL,
		Argon2: PasswordConfigReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		RefreshRotationEnabled: true,
		ReuseDetectionEnabled:  true,
		CSRFProtectionEnabled:  e.config.CSRF.Enabled,
		RateLimitingActive:     e.rateLimiter != nil,
		AccountCreationEnabled: e.config.Account.Enabled,
	}
}
