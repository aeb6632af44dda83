package common

// SessionTokenHeaderName is the HTTP header used to carry the session token
// on inbound requests. The legacy query parameter name is kept for older
// frontend builds.
const (
	SessionTokenHeaderName = "X-Session-Token"
	SessionTokenQueryParam = "session_token"
)
