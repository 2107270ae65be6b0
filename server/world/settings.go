package world

import (
	"sync"
)

// Settings holds the settings of a World. These are typically saved to a
// level.dat file. It is safe to pass the same Settings to multiple worlds
// created using New, in which case the Settings are synchronised between the
// worlds.
type Settings struct {
	sync.Mutex

	// Name is the display name of the World.
	Name string
	// Time is the current time of the World. It advances every tick if
	// TimeCycle is set to true.
	Time int64
	// TimeCycle specifies if the time should advance every tick.
	TimeCycle bool
	// CurrentTick is the current tick of the world. This is similar to the
	// Time, except that it has no visible effect to the client. It can also
	// not be changed through commands and will only ever go up.
	CurrentTick int64
	// WeatherCycle specifies if weather should be enabled in this world. If
	// set to false, weather will be disabled.
	WeatherCycle bool
	// Weather holds the weather flags and countdown timers of the World. It
	// is only ever mutated from the World's transaction goroutine.
	Weather WeatherState
}

// DefaultSettings returns the settings of a freshly created World.
func DefaultSettings() *Settings {
	return &Settings{
		Name:         "World",
		TimeCycle:    true,
		WeatherCycle: true,
	}
}
