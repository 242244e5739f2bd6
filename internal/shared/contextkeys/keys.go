package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "volunteer-hub context key " + string(c)
}

const (
	// UserEmailKey holds the verified session email.
	UserEmailKey = contextKey("userEmail")
	// UserNameKey holds the optional display name carried by the session.
	UserNameKey = contextKey("userName")
	// ClaimsKey holds the decoded session claims.
	ClaimsKey = contextKey("claims")
	// RequestIDKey is the Fiber locals key for the request id as well.
	RequestIDKey = contextKey("requestID")
	ComponentKey = contextKey("component")
	OperationKey = contextKey("operation")
)
