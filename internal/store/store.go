// Package store holds the user record backends: MongoDB, PostgreSQL and an
// in-memory map. All of them enforce username uniqueness themselves.
package store

import "errors"

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")
