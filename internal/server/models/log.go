package models

import (
	"database/sql"
	"time"
)

// Log is the one-to-one login history record for a user: the registration
// timestamp plus a two-entry rolling window of login time and origin.
// Each successful login shifts latest→previous before recording the new one.
type Log struct {
	ID              int64
	UserID          string
	RegisteredAt    time.Time
	LatestLoginAt   sql.NullTime
	PreviousLoginAt sql.NullTime
	LatestLoginIP   sql.NullString
	PreviousLoginIP sql.NullString
}
