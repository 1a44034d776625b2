package session

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
)

func TestSessionToken(t *testing.T) {
	s := New("")
	if s.LoggedIn() {
		t.Error("empty session reports logged in")
	}

	s.Set(Credentials{APIKey: "abc", Username: "admin"})
	if s.Token() != "abc" || !s.LoggedIn() {
		t.Errorf("Token() = %q", s.Token())
	}

	s.Clear()
	if s.Token() != "" {
		t.Errorf("Token() after Clear = %q", s.Token())
	}
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := New("a")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set(Credentials{APIKey: "b"})
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
		}()
	}
	wg.Wait()
	if s.Token() != "b" {
		t.Errorf("Token() = %q", s.Token())
	}
}

func TestDeviceName(t *testing.T) {
	if got := DeviceName("keep-me"); got != "keep-me" {
		t.Errorf("DeviceName(existing) = %q", got)
	}
	a, b := DeviceName(""), DeviceName("")
	if !strings.HasPrefix(a, "shokodash-") {
		t.Errorf("DeviceName() = %q", a)
	}
	if a == b {
		t.Error("DeviceName() not unique")
	}
}

func TestSaveLoadDelete(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if _, err := Load(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("Load() on empty dir = %v", err)
	}

	path, err := Save(Credentials{APIKey: "k1", Username: "admin", Device: "dev"})
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.APIKey != "k1" || c.Username != "admin" || c.Device != "dev" || c.SavedAt.IsZero() {
		t.Errorf("Load() = %+v", c)
	}

	if err := Delete(); err != nil {
		t.Fatal(err)
	}
	if err := Delete(); err != nil {
		t.Errorf("second Delete() = %v", err)
	}
	if _, err := Load(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Load() after delete = %v", err)
	}
}
