package session

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/matzehuels/componentscope/pkg/integrations/figma"
)

func TestNew(t *testing.T) {
	sess, err := New("figd_abc", &figma.User{Handle: "ada"}, 0)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if sess.ID == "" {
		t.Error("New() should generate an ID")
	}
	if sess.IsExpired() {
		t.Error("zero TTL should never expire")
	}
	if sess.Handle() != "ada" {
		t.Errorf("Handle() = %q, want ada", sess.Handle())
	}

	short, _ := New("figd_abc", nil, time.Nanosecond)
	time.Sleep(time.Millisecond)
	if !short.IsExpired() {
		t.Error("session should be expired after its TTL")
	}
	if short.Handle() != "" {
		t.Errorf("Handle() without user = %q, want empty", short.Handle())
	}
}

func TestCLIStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.GetSession(ctx)
	if err != nil || got != nil {
		t.Fatalf("empty store GetSession() = %v, %v; want nil, nil", got, err)
	}

	sess, _ := New("figd_abc", &figma.User{ID: "1", Handle: "ada"}, 0)
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession() error: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("session file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	got, err = store.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got.Token != "figd_abc" || got.Handle() != "ada" {
		t.Errorf("GetSession() = %+v", got)
	}

	if err := store.DeleteSession(ctx); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if got, _ := store.GetSession(ctx); got != nil {
		t.Error("session should be gone after DeleteSession")
	}
	if err := store.DeleteSession(ctx); err != nil {
		t.Errorf("deleting a missing session should succeed, got %v", err)
	}
}

func TestFileStoreExpiredIsRemoved(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sess := &Session{ID: "old", Token: "t", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, "old")
	if err != nil || got != nil {
		t.Fatalf("Get(expired) = %v, %v; want nil, nil", got, err)
	}
	if _, err := os.Stat(store.sessionPath("old")); !os.IsNotExist(err) {
		t.Error("expired session file should be removed")
	}
}

func TestFileStoreRejectsInvalidIDs(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"", ".", "..", "../figma", `a\b`} {
		if err := store.Set(ctx, &Session{ID: id, Token: "t"}); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Set(%q) = %v, want ErrInvalidID", id, err)
		}
		if _, err := store.Get(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Get(%q) = %v, want ErrInvalidID", id, err)
		}
		if err := store.Delete(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Delete(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestFileStoreOwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, &Session{ID: "figma", Token: "t"}); err != nil {
		t.Fatal(err)
	}

	path := store.sessionPath("figma")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("session dir has %d entries, want only the session file", len(entries))
	}

	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "figma"); err != nil {
		t.Fatal(err)
	}
	info, _ = os.Stat(path)
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode after Get = %o, want 600", perm)
	}
}
