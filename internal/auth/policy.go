package auth

import (
	"errors"
	"strings"
	"unicode/utf16"
)

// MinPasswordLength is the shortest password accepted at signup, counted in
// UTF-16 code units as browsers count it.
const MinPasswordLength = 6

// ErrPasswordPolicy is returned when a password misses a policy requirement.
var ErrPasswordPolicy = errors.New("password does not satisfy policy")

// ValidatePassword requires one line of the password to hold at least
// MinPasswordLength characters with an ASCII digit, a lowercase and an
// uppercase letter. Lines split on \n, \r, U+2028 and U+2029, and a character
// outside the BMP counts twice. The empty password fails.
func ValidatePassword(password string) error {
	for _, line := range strings.FieldsFunc(password, isLineTerminator) {
		if lineSatisfiesPolicy(line) {
			return nil
		}
	}
	return ErrPasswordPolicy
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func lineSatisfiesPolicy(line string) bool {
	var digit, lower, upper bool
	n := 0
	for _, r := range line {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		}
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return digit && lower && upper && n >= MinPasswordLength
}
