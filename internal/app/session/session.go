package session

import "strings"

// TokenSource exposes the current user's access token. A missing token is the
// only authentication gate the booking flow checks.
type TokenSource interface {
	CurrentToken() (string, bool)
}

// Static is a fixed token, typically lifted from an Authorization header.
type Static string

func (s Static) CurrentToken() (string, bool) {
	token := strings.TrimSpace(string(s))
	return token, token != ""
}

// Func adapts a function to TokenSource.
type Func func() (string, bool)

func (f Func) CurrentToken() (string, bool) {
	if f == nil {
		return "", false
	}
	return f()
}

// Anonymous never has a token.
var Anonymous TokenSource = Static("")

// FromBearer extracts the token of an "Authorization: Bearer <token>" header.
func FromBearer(header string) Static {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return Static(strings.TrimSpace(header[len(prefix):]))
}

// Token returns the token of src, treating a nil source as anonymous.
func Token(src TokenSource) (string, bool) {
	if src == nil {
		return "", false
	}
	return src.CurrentToken()
}
