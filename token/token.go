// Package token generates the monotonic tokens that order range-index
// entries. Tokens are canonical UUIDv7 strings: their lexical order matches
// creation order within a process and they are globally unique across
// writers.
package token

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh token.
func New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("token: generate: %w", err)
	}
	return id.String(), nil
}

// Valid reports whether tok is a well-formed version 7 token.
func Valid(tok string) bool {
	id, err := uuid.Parse(tok)
	return err == nil && id.Version() == 7
}

// Time returns the creation time embedded in tok, with millisecond precision.
func Time(tok string) (time.Time, error) {
	id, err := uuid.Parse(tok)
	if err != nil {
		return time.Time{}, fmt.Errorf("token: parse %q: %w", tok, err)
	}
	if id.Version() != 7 {
		return time.Time{}, fmt.Errorf("token: %q is not a v7 token", tok)
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}
