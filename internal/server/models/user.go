// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/secblog/internal/server/access"
)

// User is the identity and credential record.
//
// Salt and MFASecret are generated once at creation and never change.
// MFAEnabled flips false→true exactly once, on the first login that supplies
// both a correct password and a correct TOTP code, and is never reversed.
type User struct {
	ID           string
	Email        string
	Firstname    string
	Lastname     string
	Phone        string
	PasswordHash string
	// Salt feeds the scrypt content-key derivation, not the password hash
	// (Argon2id carries its own salt inside PasswordHash).
	Salt       []byte
	MFASecret  string
	MFAEnabled bool
	Active     bool
	Role       access.Role
	CreatedAt  time.Time
}
