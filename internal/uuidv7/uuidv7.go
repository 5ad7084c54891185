// Package uuidv7 generates time-ordered identifiers used for request
// correlation and streaming-probe tokens.
package uuidv7

import "github.com/google/uuid"

// NewString returns the string form of a fresh UUIDv7. Generation only
// fails when the platform randomness source is broken, which is treated
// as unrecoverable.
func NewString() string {
	return uuid.Must(uuid.NewV7()).String()
}
