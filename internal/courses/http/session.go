package http

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/courses/pkg/jwtx"
)

// SessionCookieName is the cookie carrying the signed session.
const SessionCookieName = "courses_session"

// maxFlashes bounds the queued messages so the cookie stays well under the
// 4 KB browser limit. The oldest messages are dropped first.
const maxFlashes = 5

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID  *int64   `json:"uid,omitempty"`
	Flashes []string `json:"flashes,omitempty"`
}

// Session is the per-browser state decoded from the session cookie.
type Session struct {
	claims  SessionClaims
	changed bool
}

// UserID returns the logged-in user id, if any.
func (s *Session) UserID() (int64, bool) {
	if s.claims.UserID == nil {
		return 0, false
	}
	return *s.claims.UserID, true
}

func (s *Session) SetUserID(id int64) {
	s.claims.UserID = &id
	s.changed = true
}

// ClearUserID forgets the logged-in user. It is a no-op for anonymous sessions.
func (s *Session) ClearUserID() {
	if s.claims.UserID == nil {
		return
	}
	s.claims.UserID = nil
	s.changed = true
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.claims.Flashes = append(s.claims.Flashes, msg)
	if n := len(s.claims.Flashes); n > maxFlashes {
		s.claims.Flashes = append([]string(nil), s.claims.Flashes[n-maxFlashes:]...)
	}
	s.changed = true
}

// PopFlashes returns and clears the pending messages.
func (s *Session) PopFlashes() []string {
	flashes := s.claims.Flashes
	if len(flashes) > 0 {
		s.claims.Flashes = nil
		s.changed = true
	}
	return flashes
}

func (s *Session) empty() bool {
	return s.claims.UserID == nil && len(s.claims.Flashes) == 0
}

// Sessions reads and writes the signed session cookie.
type Sessions struct {
	Codec  *jwtx.HS256
	Secure bool
}

// Load decodes the session cookie. A missing, tampered or otherwise invalid
// cookie yields an empty anonymous session.
func (s *Sessions) Load(r *http.Request) *Session {
	sess := &Session{}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return sess
	}

	var claims SessionClaims
	if err := s.Codec.Verify(cookie.Value, &claims); err != nil {
		// Drop the bad cookie on the next save.
		sess.changed = true
		return sess
	}
	sess.claims = claims
	return sess
}

// Save writes the session cookie when the session changed. Must be called
// before the response header is written.
func (s *Sessions) Save(w http.ResponseWriter, sess *Session) error {
	if !sess.changed {
		return nil
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	if sess.empty() {
		cookie.MaxAge = -1
	} else {
		raw, err := s.Codec.Sign(sess.claims)
		if err != nil {
			return err
		}
		cookie.Value = raw
	}

	http.SetCookie(w, cookie)
	sess.changed = false
	return nil
}
