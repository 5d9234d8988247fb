// Package cryptox implements the cryptographic core: one-way password
// hashing (Argon2id), per-user content key derivation (scrypt), and the
// authenticated envelope cipher (AES-256-GCM) used for post fields.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/secblog/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. They are embedded in every produced hash string, so
// changing them only affects newly hashed passwords; existing hashes keep
// verifying with the parameters they were created with.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// HashPassword hashes a raw password with Argon2id and a fresh random salt,
// returning a self-describing PHC-style string:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<b64 salt>$<b64 hash>
func HashPassword(raw string) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)
	sum := argon2.IDKey([]byte(raw), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum))

	return encoded, nil
}

// VerifyPassword reports whether raw matches the encoded Argon2id hash.
// A malformed hash and a wrong password both return false; the caller never
// learns which, so a corrupted record cannot be used as an oracle.
func VerifyPassword(encoded, raw string) bool {
	salt, sum, time, memory, threads, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(raw), salt, time, memory, threads, uint32(len(sum)))
	return subtle.ConstantTimeCompare(sum, candidate) == 1
}

func decodeHash(encoded string) (salt, sum []byte, time, memory uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, fmt.Errorf("malformed hash")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, err
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, err
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, err
	}
	sum, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, err
	}
	if len(sum) == 0 {
		return nil, nil, 0, 0, 0, fmt.Errorf("empty digest")
	}

	return salt, sum, time, memory, threads, nil
}
