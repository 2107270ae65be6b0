package server

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pelletier/go-toml"
	"golang.org/x/text/cases"
)

var (
	// ErrWhitelistUnavailable is returned when the whitelist is not configured.
	ErrWhitelistUnavailable = errors.New("whitelist is not configured")
	// ErrWhitelistInvalidName is returned when an empty name is passed to a whitelist operation.
	ErrWhitelistInvalidName = errors.New("invalid player name")
)

// Whitelist controls which clients are allowed to join the server by name. Entries are persisted in a TOML
// file and compared case insensitively.
type Whitelist struct {
	mu       sync.RWMutex
	names    map[string]string
	filePath string
	enabled  atomic.Bool
}

type whitelistFile struct {
	Names []string `toml:"names"`
}

// LoadWhitelist loads the whitelist stored in the file at the provided path. If the file does not exist yet, it is
// created with an empty list of names.
func LoadWhitelist(path string) (*Whitelist, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("whitelist path must not be empty")
	}
	w := &Whitelist{
		names:    make(map[string]string),
		filePath: path,
	}
	if err := w.reloadFromDisk(); err != nil {
		return nil, err
	}
	return w, nil
}

// Enabled reports if the whitelist is currently enforced.
func (w *Whitelist) Enabled() bool {
	if w == nil {
		return false
	}
	return w.enabled.Load()
}

// SetEnabled updates whether the whitelist is enforced.
func (w *Whitelist) SetEnabled(enabled bool) {
	if w == nil {
		return
	}
	w.enabled.Store(enabled)
}

// Allow implements the Allower interface. If the whitelist is enabled, only names on the whitelist may join.
func (w *Whitelist) Allow(name string) (string, bool) {
	if !w.Enabled() {
		return "", true
	}
	if w.Contains(name) {
		return "", true
	}
	return "You are not whitelisted on this server.", false
}

// Contains checks if the name passed is on the whitelist.
func (w *Whitelist) Contains(name string) bool {
	if w == nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.names[normaliseName(name)]
	return ok
}

// Add inserts the provided name into the whitelist and writes the file. The returned bool indicates if the name was
// newly added.
func (w *Whitelist) Add(name string) (bool, error) {
	return w.update(name, func(key, name string) bool {
		if _, exists := w.names[key]; exists {
			return false
		}
		w.names[key] = name
		return true
	})
}

// Remove deletes the provided name from the whitelist and writes the file. The returned bool indicates if the name
// was present before the call.
func (w *Whitelist) Remove(name string) (bool, error) {
	return w.update(name, func(key, _ string) bool {
		if _, exists := w.names[key]; !exists {
			return false
		}
		delete(w.names, key)
		return true
	})
}

// update applies f to the names of the whitelist under its lock. If f reports a change, the file is rewritten and the
// change is rolled back should writing fail.
func (w *Whitelist) update(name string, f func(key, name string) bool) (bool, error) {
	if w == nil {
		return false, ErrWhitelistUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrWhitelistInvalidName
	}
	key := normaliseName(name)

	w.mu.Lock()
	defer w.mu.Unlock()

	prev := maps.Clone(w.names)
	if !f(key, name) {
		return false, nil
	}
	if err := w.writeLocked(); err != nil {
		w.names = prev
		return false, err
	}
	return true, nil
}

// Names returns the names stored in the whitelist in a case-insensitive sorted order.
func (w *Whitelist) Names() []string {
	if w == nil {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sortedNamesLocked()
}

// Reload reads the whitelist file again, replacing the names held in memory.
func (w *Whitelist) Reload() error {
	if w == nil {
		return ErrWhitelistUnavailable
	}
	return w.reloadFromDisk()
}

func (w *Whitelist) reloadFromDisk() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloadLocked()
}

func (w *Whitelist) reloadLocked() error {
	data := whitelistFile{}
	contents, err := os.ReadFile(w.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.names = make(map[string]string)
			return w.writeLocked()
		}
		return fmt.Errorf("read whitelist: %w", err)
	}
	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, &data); err != nil {
			return fmt.Errorf("decode whitelist: %w", err)
		}
	}
	w.names = make(map[string]string, len(data.Names))
	for _, name := range data.Names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		w.names[normaliseName(trimmed)] = trimmed
	}
	return nil
}

func (w *Whitelist) writeLocked() error {
	dir := filepath.Dir(w.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create whitelist directory: %w", err)
		}
	}
	data := whitelistFile{Names: w.sortedNamesLocked()}
	encoded, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode whitelist: %w", err)
	}
	if err := os.WriteFile(w.filePath, encoded, 0644); err != nil {
		return fmt.Errorf("write whitelist: %w", err)
	}
	return nil
}

func (w *Whitelist) sortedNamesLocked() []string {
	names := make([]string, 0, len(w.names))
	for _, name := range w.names {
		names = append(names, name)
	}
	sortNames(names)
	return names
}

func sortNames(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		lowerA, lowerB := strings.ToLower(a), strings.ToLower(b)
		if lowerA == lowerB {
			return strings.Compare(a, b)
		}
		return strings.Compare(lowerA, lowerB)
	})
}

func normaliseName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

var _ Allower = (*Whitelist)(nil)
