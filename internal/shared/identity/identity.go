// Package identity describes who is making a request.
package identity

import "strings"

// Identity is the caller resolved from the session. The zero value is anonymous.
type Identity struct {
	Username string
}

// Anonymous returns the identity of a caller without a session.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated reports whether the caller is logged in.
func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.Username) != ""
}

// Is reports whether the caller is the named user.
func (i Identity) Is(username string) bool {
	return i.Authenticated() && i.Username == username
}
