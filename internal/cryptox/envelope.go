package cryptox

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/dmitrijs2005/secblog/internal/common"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for the content key. N=2048 keeps derivation cheap enough
// to run on every authenticated request while still being memory-hard.
const (
	scryptN      = 2048
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// DeriveContentKey derives the user's 256-bit content key with scrypt over
// the stored Argon2id password hash and the per-user salt.
//
// The input is the stored hash, not the raw password: the key stays
// re-derivable whenever the user record is available, without re-prompting.
// Anyone with read access to the users table can therefore derive every
// content key. This mirrors the upstream design and is a deliberate,
// reviewable trade-off of key secrecy for operational convenience.
func DeriveContentKey(passwordHash string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(passwordHash), salt, scryptN, scryptR, scryptP, scryptKeyLen)
}

// Encrypt seals plaintext with AES-256-GCM under key and returns a
// self-contained token: a fresh random nonce followed by the ciphertext and
// tag. Callers never manage nonces themselves.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a token produced by Encrypt. Any failure that indicates a
// wrong key or tampered ciphertext (bad shape, failed tag check) is reported
// as common.ErrorAuthentication; truncated or garbled plaintext is never
// returned.
func Decrypt(key, token []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(token) < aead.NonceSize() {
		return nil, common.ErrorAuthentication
	}

	nonce, ciphertext := token[:aead.NonceSize()], token[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrorAuthentication
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
