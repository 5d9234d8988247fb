package models

import "time"

// Post is a content record. Title and Body hold self-contained envelope
// ciphertext (nonce + AES-GCM ciphertext); they are opaque to everyone but
// the owner, whose derived content key seals and opens them.
type Post struct {
	ID        int64
	UserID    string
	Title     []byte
	Body      []byte
	CreatedAt time.Time
}
