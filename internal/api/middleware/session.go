package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	SessionHeader   = "X-Session-ID"
	SessionCookie   = "football_session"

	requestIDKey = "request_id"
	sessionIDKey = "session_id"

	sessionMaxAge = 365 * 24 * 60 * 60
)

// RequestID tags every request with an id, reusing the caller's X-Request-ID if present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Session identifies the visitor. Favorites and browsing sessions are keyed by this id.
// The id comes from the X-Session-ID header, then the session cookie; a missing or
// malformed id is replaced by a new one, which is returned in both places.
func Session(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if !validSessionID(id) {
			id, _ = c.Cookie(SessionCookie)
		}
		if !validSessionID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, sessionMaxAge, "/", "", secure, true)
		}
		c.Set(sessionIDKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// SessionID returns the session id set by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// GetRequestID returns the request id set by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
