package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrInvalidToken covers expired, malformed, or tampered session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Session is the identity carried by a verified cookie.
type Session struct {
	ID     string
	UserID int64
}

type claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session cookies with an HMAC secret supplied
// at startup. Each issued session gets a fresh uuid id that also keys the
// server-side transient store.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed token for the user and returns it with the new
// session id.
func (m *Manager) Issue(userID int64) (token, sid string, err error) {
	sid = uuid.NewString()
	now := time.Now()

	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign session token: %w", err)
	}
	return token, sid, nil
}

// Verify parses and validates a token, returning the session it identifies.
func (m *Manager) Verify(token string) (*Session, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if c.ID == "" || c.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return &Session{ID: c.ID, UserID: c.UserID}, nil
}
