// Package mfa implements time-based one-time password (RFC 6238) enrollment
// and verification for the second login factor.
package mfa

import (
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Engine verifies TOTP codes and builds provisioning URIs for authenticator
// apps. Period, digits and algorithm match the common authenticator defaults
// (30s step, 6 digits, SHA-1); verification tolerates one step of clock skew
// in either direction.
type Engine struct {
	issuer string
	now    func() time.Time
}

// 20 random bytes encode to a 32-character base32 secret.
const secretSize = 20

// NewEngine returns an Engine labelling provisioning URIs with issuer.
func NewEngine(issuer string) *Engine {
	return &Engine{issuer: issuer, now: time.Now}
}

// GenerateSecret creates a fresh 32-character base32 shared secret. It is
// called once per user at account creation; enrollment itself happens on the
// first successful code verification.
func (e *Engine) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: "pending",
		Period:      30,
		SecretSize:  secretSize,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// VerifyCode reports whether code is valid for secret at the current time,
// allowing ±1 time step of skew.
func (e *Engine) VerifyCode(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, e.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// ProvisioningURI builds the otpauth:// URL encoding secret, account label
// and issuer, suitable for rendering as a QR code by the caller.
func (e *Engine) ProvisioningURI(secret, account string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", e.issuer)
	v.Set("period", "30")
	v.Set("algorithm", "SHA1")
	v.Set("digits", "6")

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + e.issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}
