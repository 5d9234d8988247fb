package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secblog/internal/flagx"
	"github.com/dmitrijs2005/secblog/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. Interval fields use timex.Duration so both "30m" and integer
// nanoseconds parse; after unmarshalling, values are copied into Config.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	MFAIssuer                    string         `json:"mfa_issuer"`
	LockoutThreshold             int            `json:"lockout_threshold"`
	LoginRateLimit               int            `json:"login_rate_limit"`
	LoginRateWindow              timex.Duration `json:"login_rate_window"`
	GlobalRequestLimit           int            `json:"global_request_limit"`
	GlobalRateWindow             timex.Duration `json:"global_rate_window"`
	AuditLogPath                 string         `json:"audit_log_path"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no flag is set, nothing is
// loaded; an unreadable or invalid file panics, as a broken explicit config
// is not recoverable.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.MFAIssuer != "" {
		config.MFAIssuer = c.MFAIssuer
	}
	if c.LockoutThreshold > 0 {
		config.LockoutThreshold = c.LockoutThreshold
	}
	if c.LoginRateLimit > 0 {
		config.LoginRateLimit = c.LoginRateLimit
	}
	if c.LoginRateWindow.Duration > 0 {
		config.LoginRateWindow = c.LoginRateWindow.Duration
	}
	if c.GlobalRequestLimit > 0 {
		config.GlobalRequestLimit = c.GlobalRequestLimit
	}
	if c.GlobalRateWindow.Duration > 0 {
		config.GlobalRateWindow = c.GlobalRateWindow.Duration
	}
	if c.AuditLogPath != "" {
		config.AuditLogPath = c.AuditLogPath
	}
	if c.SessionTokenValidityDuration.Duration > 0 {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
}
