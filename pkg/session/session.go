// Package session stores design tool credentials for the CLI.
//
// A [Session] holds a personal access token and the account it belongs to,
// as reported by the API when the token was verified. Sessions are kept by a
// [Store]; the CLI uses the file-backed [CLIStore] under the user config
// directory.
//
// Manage sessions:
//
//	sess, err := session.New(token, user, 0) // 0 = never expires
//	if err != nil {
//	    return err
//	}
//	store.SaveSession(ctx, sess)
//
//	sess, err := store.GetSession(ctx)
//	if sess == nil {
//	    // not logged in
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/matzehuels/componentscope/pkg/integrations/figma"
)

var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session stores an access token and the user it authenticates.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      *figma.User `json:"user,omitempty"`
	ExpiresAt time.Time   `json:"expires_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsExpired reports whether the session has expired. A zero ExpiresAt never
// expires; personal access tokens carry their own expiry on the server.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Handle returns the account handle, or "" when unknown.
func (s *Session) Handle() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Handle
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for token. A ttl of zero never expires.
func New(token string, user *figma.User, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:        id,
		Token:     token,
		User:      user,
		CreatedAt: now,
	}
	if ttl > 0 {
		sess.ExpiresAt = now.Add(ttl)
	}
	return sess, nil
}
