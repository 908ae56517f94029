package util

import (
	"errors"
	"regexp"
	"strings"
)

// MaxUsernameLength bounds usernames, matching the users.username column.
const MaxUsernameLength = 150

var (
	usernamePattern  = regexp.MustCompile(`^[A-Za-z0-9@.+_-]+$`)
	usernameReplacer = regexp.MustCompile(`[^A-Za-z0-9@.+_-]+`)
)

// ErrInvalidUsername is returned for usernames outside the allowed charset or length.
var ErrInvalidUsername = errors.New("invalid username")

// ValidUsername reports whether s may be used as a username.
func ValidUsername(s string) bool {
	return s != "" && len(s) <= MaxUsernameLength && usernamePattern.MatchString(s)
}

// SanitizeUsername turns an arbitrary string, such as an email local part, into a username.
func SanitizeUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if at := strings.Index(s, "@"); at > 0 {
		s = s[:at]
	}
	s = usernameReplacer.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > MaxUsernameLength {
		s = s[:MaxUsernameLength]
	}
	if !ValidUsername(s) {
		return "", ErrInvalidUsername
	}
	return s, nil
}
