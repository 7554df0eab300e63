// Package session persists OAuth access tokens between CLI runs.
//
// A two-legged (client credentials) token is valid for about an hour. Storing
// it lets consecutive commands reuse it instead of requesting a new one each
// time. Sessions are keyed by OAuth client id so several applications can be
// used side by side.
//
// # Usage
//
//	store, err := session.NewCLIStore("", clientID) // ~/.config/fusiongraph/sessions/
//	if err != nil {
//	    return err
//	}
//	sess, err := store.GetSession(ctx)
//	if sess == nil {
//	    // no valid token stored
//	}
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// ExpiryLeeway is subtracted from a token's expiry so a token is never used
// in its last moments.
const ExpiryLeeway = time.Minute

// Session stores one access token.
type Session struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Scopes      []string  `json:"scopes,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired or is about to.
func (s *Session) IsExpired() bool {
	return time.Now().Add(ExpiryLeeway).After(s.ExpiresAt)
}

// Token converts the session back into an OAuth token.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		Expiry:      s.ExpiresAt,
	}
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

	// Prune removes expired sessions and returns how many were removed.
	Prune(ctx context.Context) (int, error)
}

// DefaultTTL is used for tokens that carry no expiry.
const DefaultTTL = time.Hour

// IDFor derives the session id of a client id. Client ids are not used as
// file names directly.
func IDFor(clientID string) string {
	sum := sha256.Sum256([]byte(clientID))
	return "client-" + hex.EncodeToString(sum[:8])
}

// New creates a session for a token issued to clientID.
func New(clientID string, tok *oauth2.Token, scopes []string) *Session {
	now := time.Now()
	expires := tok.Expiry
	if expires.IsZero() {
		expires = now.Add(DefaultTTL)
	}
	return &Session{
		ID:          IDFor(clientID),
		ClientID:    clientID,
		AccessToken: tok.AccessToken,
		TokenType:   tok.Type(),
		Scopes:      scopes,
		ExpiresAt:   expires,
		CreatedAt:   now,
	}
}
