package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUsernameLength bounds the username column in every backend.
const MaxUsernameLength = 50

// ErrDuplicateUsername is returned by stores when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

// User is a registered account. Stores own it; handlers only hold it for
// the duration of a request or inside a session.
type User struct {
	ID           string    `json:"id"            bson:"_id,omitempty"`
	Username     string    `json:"username"      bson:"username"`
	PasswordHash string    `json:"password_hash" bson:"passwordHash"`
	CreatedAt    time.Time `json:"created_at"    bson:"created_at"`
}

// ValidationError describes a record that fails schema-level checks.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "User validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "User validation failed: " + strings.Join(parts, ", ")
}

// Validate checks the record before it is persisted.
func (u *User) Validate() error {
	fields := map[string]string{}
	if u.Username == "" {
		fields["username"] = "Username is required."
	} else if utf8.RuneCountInString(u.Username) > MaxUsernameLength {
		fields["username"] = fmt.Sprintf("Username must be at most %d characters.", MaxUsernameLength)
	}
	if u.PasswordHash == "" {
		fields["passwordHash"] = "Password hash is required."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
