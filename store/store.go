package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no record has been saved.
var ErrNotFound = errors.New("session record not found")

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("session store unavailable")

// Record is the persisted session state. Token may be expired by the time
// it is loaded; expiry is the caller's concern. Identity is the login
// hint used when the token itself is no longer decodable.
type Record struct {
	Token     string `json:"token"`
	Identity  string `json:"identity,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Store reads and writes the single current session record.
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context) error
}
