// internal/session/token.go
package session

import "os"

// TokenSource supplies the bearer credential attached to every delivery
// service request. Validity is the identity provider's concern; this
// subsystem only forwards whatever credential is current.
type TokenSource interface {
	Token() string
}

// StaticTokenSource returns a fixed credential.
type StaticTokenSource struct {
	value string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{value: token}
}

func (s *StaticTokenSource) Token() string { return s.value }

// FromEnv reads DELIVERY_TOKEN once at startup.
func FromEnv() *StaticTokenSource {
	return NewStaticTokenSource(os.Getenv("DELIVERY_TOKEN"))
}
