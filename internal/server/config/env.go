package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A .env file in
// the working directory is loaded first if present; real environment
// variables win over .env entries (godotenv does not override).
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("MFA_ISSUER"); v != "" {
		config.MFAIssuer = v
	}
	if v, ok := lookupInt("LOCKOUT_THRESHOLD"); ok {
		config.LockoutThreshold = v
	}
	if v, ok := lookupInt("LOGIN_RATE_LIMIT"); ok {
		config.LoginRateLimit = v
	}
	if v, ok := lookupDuration("LOGIN_RATE_WINDOW"); ok {
		config.LoginRateWindow = v
	}
	if v, ok := lookupInt("GLOBAL_REQUEST_LIMIT"); ok {
		config.GlobalRequestLimit = v
	}
	if v, ok := lookupDuration("GLOBAL_RATE_WINDOW"); ok {
		config.GlobalRateWindow = v
	}
	if v := os.Getenv("AUDIT_LOG_PATH"); v != "" {
		config.AuditLogPath = v
	}
	if v, ok := lookupDuration("SESSION_TOKEN_VALIDITY"); ok {
		config.SessionTokenValidityDuration = v
	}
}

func lookupInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupDuration(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
