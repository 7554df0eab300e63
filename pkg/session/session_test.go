package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNew(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	sess := New("client-a", &oauth2.Token{AccessToken: "tok", Expiry: expiry}, []string{"data:read"})

	if sess.ID != IDFor("client-a") || sess.ClientID != "client-a" {
		t.Errorf("session = %+v", sess)
	}
	if sess.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer default", sess.TokenType)
	}
	if sess.IsExpired() {
		t.Error("fresh session reported expired")
	}
	if tok := sess.Token(); tok.AccessToken != "tok" || !tok.Expiry.Equal(expiry) {
		t.Errorf("Token() = %+v", tok)
	}
}

func TestNewWithoutExpiry(t *testing.T) {
	sess := New("c", &oauth2.Token{AccessToken: "tok"}, nil)
	if d := time.Until(sess.ExpiresAt); d < 59*time.Minute || d > DefaultTTL {
		t.Errorf("ExpiresAt in %v, want about %v", d, DefaultTTL)
	}
}

func TestIsExpiredLeeway(t *testing.T) {
	sess := &Session{ExpiresAt: time.Now().Add(30 * time.Second)}
	if !sess.IsExpired() {
		t.Error("session inside the leeway should count as expired")
	}
}

func TestIDFor(t *testing.T) {
	if IDFor("a") == IDFor("b") {
		t.Error("different clients share a session id")
	}
	if IDFor("a/../../etc") != IDFor("a/../../etc") || filepath.Base(IDFor("a/../../etc")) != IDFor("a/../../etc") {
		t.Error("session id must be a stable plain file name")
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewCLIStore(dir, "client-a")
	if err != nil {
		t.Fatal(err)
	}
	if got, err := store.GetSession(ctx); got != nil || err != nil {
		t.Fatalf("empty store GetSession() = %v, %v", got, err)
	}

	sess := New("client-a", &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}, nil)
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("session file mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := store.GetSession(ctx)
	if err != nil || got == nil || got.AccessToken != "tok" {
		t.Fatalf("GetSession() = %+v, %v", got, err)
	}

	other, _ := NewCLIStore(dir, "client-b")
	if s, _ := other.GetSession(ctx); s != nil {
		t.Error("sessions of different clients must not be shared")
	}

	if err := store.DeleteSession(ctx); err != nil {
		t.Fatal(err)
	}
	if s, _ := store.GetSession(ctx); s != nil {
		t.Error("session still present after delete")
	}
	if err := store.DeleteSession(ctx); err != nil {
		t.Errorf("deleting a missing session: %v", err)
	}
}

func TestFileStoreExpiredAndPrune(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	expired := &Session{ID: IDFor("old"), AccessToken: "x", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := store.Set(ctx, expired); err != nil {
		t.Fatal(err)
	}
	if s, err := store.Get(ctx, expired.ID); s != nil || err != nil {
		t.Errorf("Get(expired) = %v, %v; want nil, nil", s, err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), expired.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired token file was not removed by Get")
	}

	data, _ := json.Marshal(expired)
	os.WriteFile(filepath.Join(store.Dir(), "stale.json"), data, 0o600)
	os.WriteFile(filepath.Join(store.Dir(), "broken.json"), []byte("{"), 0o600)
	os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("keep"), 0o600)
	live := New("live", &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}, nil)
	if err := store.Set(ctx, live); err != nil {
		t.Fatal(err)
	}

	n, err := store.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Prune() removed %d files, want 1", n)
	}
	for name, want := range map[string]bool{"stale.json": false, "broken.json": true, "notes.txt": true, live.ID + ".json": true} {
		_, err := os.Stat(filepath.Join(store.Dir(), name))
		if exists := err == nil; exists != want {
			t.Errorf("%s exists = %v, want %v", name, exists, want)
		}
	}
}

func TestFileStoreSetRequiresID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), &Session{AccessToken: "tok"}); err == nil {
		t.Error("Set accepted a session without id")
	}
	entries, _ := os.ReadDir(store.Dir())
	if len(entries) != 0 {
		t.Errorf("Set left files behind: %v", entries)
	}
}
