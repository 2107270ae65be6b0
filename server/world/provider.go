package world

import (
	"io"
)

// Provider represents a value that may provide the level record of a World.
// Chunk data is stored by a separate collaborator and is not part of the
// Provider.
type Provider interface {
	io.Closer
	// Settings loads the settings of a World and returns them. If the level
	// record has not been stored yet, default settings are returned.
	Settings() *Settings
	// SaveSettings saves the settings of a World.
	SaveSettings(*Settings)
}

// NopProvider implements a Provider that does not perform any disk I/O. It
// returns default settings and discards anything saved.
type NopProvider struct {
	Set *Settings
}

// Settings returns p.Set if non-nil, or a fresh set of default settings.
func (p NopProvider) Settings() *Settings {
	if p.Set == nil {
		return DefaultSettings()
	}
	return p.Set
}

func (NopProvider) SaveSettings(*Settings) {}
func (NopProvider) Close() error           { return nil }
