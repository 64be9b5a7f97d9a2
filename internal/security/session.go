// Package security owns authentication state: the session table, password
// hashing and the rank-based permission table.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhodessheriff/sheriffd/internal/logging"
)

// Session is the per-token authentication state.
type Session struct {
	UserID    string
	Username  string
	CreatedAt time.Time
}

// SessionManager maps opaque bearer tokens to sessions. Expiry is absolute
// from creation; the underlying cache sweeps expired entries periodically.
type SessionManager struct {
	sessions *cache.Cache
	ttl      time.Duration
	logger   *slog.Logger
}

// NewSessionManager creates a session table with the given absolute TTL and
// sweep interval.
func NewSessionManager(ttl, sweepEvery time.Duration) *SessionManager {
	return &SessionManager{
		sessions: cache.New(ttl, sweepEvery),
		ttl:      ttl,
		logger:   logging.ForService("security"),
	}
}

// newToken returns a fresh opaque token: 32 random bytes, base64url encoded.
func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic("security: cannot read random bytes: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// Create opens a new session for the user and returns its token.
func (sm *SessionManager) Create(userID, username string) string {
	token := newToken()
	sm.sessions.Set(token, Session{
		UserID:    userID,
		Username:  username,
		CreatedAt: time.Now(),
	}, cache.DefaultExpiration)
	sm.logger.Debug("session created", "username", username)
	return token
}

// Resolve returns the session for a token, if it exists and has not expired.
func (sm *SessionManager) Resolve(token string) (Session, bool) {
	v, ok := sm.sessions.Get(token)
	if !ok {
		return Session{}, false
	}
	return v.(Session), true
}

// Destroy removes the session for a token. Unknown tokens are a no-op.
func (sm *SessionManager) Destroy(token string) {
	sm.sessions.Delete(token)
}

// Rotate destroys the old token and opens a fresh session for the same user.
// Used after password changes so stolen tokens die with the old password.
func (sm *SessionManager) Rotate(oldToken, userID, username string) string {
	sm.sessions.Delete(oldToken)
	return sm.Create(userID, username)
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	return sm.sessions.ItemCount()
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// bcrypt hash. Comparison time does not depend on where the inputs differ.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
