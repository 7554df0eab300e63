package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/session"
)

func tokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		if r.FormValue("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.FormValue("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type memStore struct {
	sess  *session.Session
	saves int
}

func (m *memStore) GetSession(context.Context) (*session.Session, error) {
	if m.sess == nil || m.sess.IsExpired() {
		return nil, nil
	}
	return m.sess, nil
}

func (m *memStore) SaveSession(_ context.Context, s *session.Session) error {
	m.sess = s
	m.saves++
	return nil
}

func (m *memStore) DeleteSession(context.Context) error {
	m.sess = nil
	return nil
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{ClientID: "id", ClientSecret: "secret"}, false},
		{"missing id", Config{ClientSecret: "secret"}, true},
		{"missing secret", Config{ClientID: "id"}, true},
		{"empty", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeMissingCredentials) {
				t.Errorf("code = %s", errors.GetCode(err))
			}
		})
	}
}

func TestTokenSourceStoresToken(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls)
	store := &memStore{}

	ts, err := NewTokenSource(context.Background(), Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, store)
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		tok, err := ts.Token()
		if err != nil {
			t.Fatal(err)
		}
		if tok.AccessToken != "fresh" {
			t.Errorf("AccessToken = %q", tok.AccessToken)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("token requests = %d, want 1", calls.Load())
	}
	if store.saves != 1 || store.sess.ClientID != "id" {
		t.Errorf("stored session = %+v (saves %d)", store.sess, store.saves)
	}
}

func TestTokenSourceReusesStoredToken(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls)
	store := &memStore{sess: session.New("id", &oauth2.Token{AccessToken: "stored", Expiry: time.Now().Add(time.Hour)}, nil)}

	ts, err := NewTokenSource(context.Background(), Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, store)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "stored" || calls.Load() != 0 {
		t.Errorf("token = %q after %d requests, want stored token without requests", tok.AccessToken, calls.Load())
	}
}

func TestTokenSourceRejected(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls)

	ts, err := NewTokenSource(context.Background(), Config{ClientID: "id", ClientSecret: "wrong", TokenURL: srv.URL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Token(); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestLogin(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls)
	store := &memStore{sess: session.New("id", &oauth2.Token{AccessToken: "stored", Expiry: time.Now().Add(time.Hour)}, nil)}

	sess, err := Login(context.Background(), Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL, Scopes: []string{"data:read"}}, store)
	if err != nil {
		t.Fatal(err)
	}
	if sess.AccessToken != "fresh" || store.sess.AccessToken != "fresh" {
		t.Errorf("Login should replace the stored token, got %q", store.sess.AccessToken)
	}
	if len(sess.Scopes) != 1 || sess.Scopes[0] != "data:read" {
		t.Errorf("scopes = %v", sess.Scopes)
	}
	if time.Until(sess.ExpiresAt) < 50*time.Minute {
		t.Errorf("ExpiresAt = %v", sess.ExpiresAt)
	}
}
