package config

import "time"

// Config is built once at process start and handed to every component.
// Nothing reads the environment lazily after startup; a deliberate Reload is
// the only way settings change.
type Config struct {
	AppName       string
	DBPath        string
	JWTSecret     string
	EncryptionKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	RateLimitMax    int
	RateLimitWindow time.Duration

	LockoutMaxFailures int
	LockoutWindow      time.Duration

	OTPCodeTTL        time.Duration
	OTPMaxAttempts    int
	OTPResendCooldown time.Duration

	SessionTTL         time.Duration
	SessionIdleTimeout time.Duration

	CleanupInterval time.Duration
	AuditRetention  time.Duration

	Cookie CookieConfig
}

// Load reads the full configuration from the environment.
func Load() *Config {
	cfg := &Config{}
	cfg.Reload()
	return cfg
}

// Reload re-reads every setting in place. Components hold a *Config, so a
// reload is visible to them on their next access without any restart.
func (c *Config) Reload() {
	c.AppName = GetEnvAsStr("APP_NAME", "Kominfo Portal Admin")
	c.DBPath = GetEnvAsStr("DB_PATH", "kominfo-auth.db")
	c.JWTSecret = GetEnv("JWT_SECRET_KEY")
	c.EncryptionKey = GetEnv("ENCRYPTION_KEY")

	c.SMTPHost = GetEnvAsStr("SMTP_HOST", "smtp.gmail.com")
	c.SMTPPort = GetEnvAsInt("SMTP_PORT", 587, true)
	c.SMTPUser = GetEnv("SMTP_USER")
	c.SMTPPassword = GetEnv("SMTP_PASSWORD")

	c.RateLimitMax = GetEnvAsInt("RATE_LIMIT_MAX", 10, true)
	c.RateLimitWindow = GetEnvAsDuration("RATE_LIMIT_WINDOW_SECONDS", 60*time.Second)
	c.LockoutMaxFailures = GetEnvAsInt("LOCKOUT_MAX_FAILURES", 5, true)
	c.LockoutWindow = GetEnvAsDuration("LOCKOUT_WINDOW_SECONDS", 15*time.Minute)

	c.OTPCodeTTL = GetEnvAsDuration("OTP_CODE_TTL_SECONDS", 10*time.Minute)
	c.OTPMaxAttempts = GetEnvAsInt("OTP_MAX_ATTEMPTS", 3, true)
	c.OTPResendCooldown = GetEnvAsDuration("OTP_RESEND_COOLDOWN_SECONDS", 60*time.Second)

	c.SessionTTL = GetEnvAsDuration("SESSION_TTL_SECONDS", 12*time.Hour)
	c.SessionIdleTimeout = GetEnvAsDuration("SESSION_IDLE_TIMEOUT_SECONDS", 30*time.Minute)

	c.CleanupInterval = GetEnvAsDuration("CLEANUP_INTERVAL_SECONDS", 30*time.Minute)
	c.AuditRetention = GetEnvAsDuration("AUDIT_RETENTION_SECONDS", 90*24*time.Hour)

	c.Cookie = CookieConfig{
		Domain:   GetEnvAsStr("DOMAIN", ""),
		IsSecure: GetEnvAsStr("SECURE_COOKIE", "true") == "true",
		HttpOnly: true, // Always HttpOnly for XSS protection
	}
}
