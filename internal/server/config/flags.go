package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/secblog/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-i string   MFA issuer label
//	-k int      lockout threshold (failed attempts per session)
//	-n int      login attempts per client per window
//	-w int      login rate window, minutes
//	-g int      global request cap per day
//	-f string   audit log file path
//	-t int      session token validity, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes and converted.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-i", "-k", "-n", "-w", "-g", "-f", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.MFAIssuer, "i", config.MFAIssuer, "MFA issuer label")
	fs.IntVar(&config.LockoutThreshold, "k", config.LockoutThreshold, "lockout threshold")
	fs.IntVar(&config.LoginRateLimit, "n", config.LoginRateLimit, "login attempts per client per window")
	fs.IntVar(&config.GlobalRequestLimit, "g", config.GlobalRequestLimit, "global request cap per window")
	fs.StringVar(&config.AuditLogPath, "f", config.AuditLogPath, "audit log file path")

	loginRateWindow := fs.Int("w", int(config.LoginRateWindow.Minutes()), "login rate window (in minutes)")
	sessionTokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LoginRateWindow = time.Duration(*loginRateWindow) * time.Minute
	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidity) * time.Minute
}
