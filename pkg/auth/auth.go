// Package auth obtains two-legged OAuth2 access tokens for the API.
//
// Tokens come from the client credentials grant and are persisted in a
// [TokenStore] so consecutive CLI runs reuse a token until it expires.
package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/session"
)

// DefaultTokenURL is the two-legged token endpoint.
const DefaultTokenURL = "https://developer.api.autodesk.com/authentication/v2/token"

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{"data:read", "data:write", "data:create"}

// Config holds the application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Validate reports missing credentials.
func (c Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeMissingCredentials,
			"missing %s (set APS_CLIENT_ID and APS_CLIENT_SECRET or the credentials section of the config file)",
			strings.Join(missing, " and "))
	}
	return nil
}

func (c Config) oauth() *clientcredentials.Config {
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
}

// TokenStore persists the session of one client.
// [*session.CLIStore] implements it.
type TokenStore interface {
	GetSession(ctx context.Context) (*session.Session, error)
	SaveSession(ctx context.Context, sess *session.Session) error
	DeleteSession(ctx context.Context) error
}

// NewTokenSource returns a token source that serves the stored token while it
// is valid and otherwise requests a new one and stores it. A nil store keeps
// tokens in memory only.
func NewTokenSource(ctx context.Context, cfg Config, store TokenStore) (oauth2.TokenSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	oc := cfg.oauth()
	src := &storedSource{
		ctx:    ctx,
		base:   oc.TokenSource(ctx),
		store:  store,
		client: cfg.ClientID,
		scopes: oc.Scopes,
	}
	return oauth2.ReuseTokenSource(nil, src), nil
}

// Login requests a fresh token, replacing any stored one.
func Login(ctx context.Context, cfg Config, store TokenStore) (*session.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	oc := cfg.oauth()
	tok, err := oc.Token(ctx)
	if err != nil {
		return nil, wrapTokenError(err)
	}
	sess := session.New(cfg.ClientID, tok, oc.Scopes)
	if store != nil {
		if err := store.SaveSession(ctx, sess); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "save session")
		}
	}
	return sess, nil
}

type storedSource struct {
	ctx    context.Context
	base   oauth2.TokenSource
	store  TokenStore
	client string
	scopes []string

	mu     sync.Mutex
	loaded bool
}

func (s *storedSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The store is read once. ReuseTokenSource holds the token afterwards
	// and calls back here when it expires.
	if s.store != nil && !s.loaded {
		s.loaded = true
		if sess, err := s.store.GetSession(s.ctx); err == nil && sess != nil {
			return sess.Token(), nil
		}
	}

	tok, err := s.base.Token()
	if err != nil {
		return nil, wrapTokenError(err)
	}
	if s.store != nil {
		// Save failures are ignored; the next run requests a new token.
		_ = s.store.SaveSession(s.ctx, session.New(s.client, tok, s.scopes))
	}
	return tok, nil
}

func wrapTokenError(err error) error {
	var re *oauth2.RetrieveError
	if stderrors.As(err, &re) {
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "token request rejected")
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "token request failed")
}
