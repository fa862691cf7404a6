package auth

// Credential is handed explicitly to every service call that talks to the backend.
// SessionID keys the per-session view state; Token is the backend bearer.
type Credential struct {
	SessionID string
	UserID    string
	Token     string
}

// Anonymous is used for catalog reads made without a session.
var Anonymous = Credential{}

// IsAnonymous reports whether no backend token is attached.
func (c Credential) IsAnonymous() bool {
	return c.Token == ""
}
