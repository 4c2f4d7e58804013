package enums

// SessionState is where the client sits in the sign-in lifecycle.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticating  SessionState = "authenticating"
	SessionAuthenticated   SessionState = "authenticated"
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}
