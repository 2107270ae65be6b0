package server

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestWhitelistPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "whitelist.toml")
	wl, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected whitelist file to be created: %v", err)
	}
	for _, name := range []string{"steve", "Alex", "bob"} {
		if added, err := wl.Add(name); err != nil || !added {
			t.Fatalf("add %q: %v, %v", name, added, err)
		}
	}
	if added, _ := wl.Add("STEVE"); added {
		t.Fatalf("expected duplicate name to be rejected")
	}
	if removed, _ := wl.Remove("BOB"); !removed {
		t.Fatalf("expected bob to be removed")
	}
	if _, err := wl.Add("  "); !errors.Is(err, ErrWhitelistInvalidName) {
		t.Fatalf("expected ErrWhitelistInvalidName, got %v", err)
	}

	reloaded, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Names(); !slices.Equal(got, []string{"Alex", "steve"}) {
		t.Fatalf("unexpected names after reload: %v", got)
	}
}

func TestWhitelistAllow(t *testing.T) {
	wl, err := LoadWhitelist(filepath.Join(t.TempDir(), "whitelist.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := wl.Allow("anyone"); !ok {
		t.Fatalf("disabled whitelist must allow everyone")
	}
	wl.SetEnabled(true)
	_, _ = wl.Add("Steve")
	if reason, ok := wl.Allow("nobody"); ok || reason == "" {
		t.Fatalf("expected unlisted name to be refused with a reason")
	}
	if _, ok := wl.Allow(" steve "); !ok {
		t.Fatalf("expected names to be compared case insensitively")
	}

	var nilList *Whitelist
	if _, err := nilList.Add("x"); !errors.Is(err, ErrWhitelistUnavailable) {
		t.Fatalf("expected ErrWhitelistUnavailable, got %v", err)
	}
}

func TestWhitelistReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.toml")
	wl, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.WriteFile(path, []byte("names = [\"Herobrine\"]\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wl.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !wl.Contains("herobrine") {
		t.Fatalf("expected name from file after reload")
	}
}
