package world

import (
	"math/rand/v2"
)

const (
	ticksDay     = 24_000
	ticksHalfDay = ticksDay / 2
	ticksWeek    = ticksDay * 7
)

// Weather is the observable weather of a World: one of WeatherClear,
// WeatherRain or WeatherThunder.
type Weather uint8

const (
	WeatherClear Weather = iota
	WeatherRain
	WeatherThunder
)

// String ...
func (w Weather) String() string {
	switch w {
	case WeatherRain:
		return "rain"
	case WeatherThunder:
		return "thunder"
	}
	return "clear"
}

// ParseWeather parses the name of a Weather as returned by Weather.String.
func ParseWeather(s string) (Weather, bool) {
	switch s {
	case "clear", "sun", "sunny":
		return WeatherClear, true
	case "rain", "raining":
		return WeatherRain, true
	case "thunder", "storm", "thunderstorm":
		return WeatherThunder, true
	}
	return WeatherClear, false
}

// WeatherState holds the persisted weather flags and countdown timers of a
// world. While ClearWeatherTime is positive the weather is pinned to clear.
type WeatherState struct {
	Raining          bool
	Thundering       bool
	RainTime         int32
	ThunderTime      int32
	ClearWeatherTime int32
}

// Weather derives the observable Weather from the flags and timers held. It
// does not modify the state.
func (s WeatherState) Weather() Weather {
	switch {
	case s.ClearWeatherTime > 0:
		return WeatherClear
	case s.Thundering:
		return WeatherThunder
	case s.Raining:
		return WeatherRain
	}
	return WeatherClear
}

// Set sets the fields relevant to the weather passed and returns the
// observable Weather from before the call. Rain and thunder leave the fields
// of the other untouched, while clear weather resets both and pins the
// weather for the duration passed.
func (s *WeatherState) Set(w Weather, duration int32) Weather {
	from := s.Weather()
	switch w {
	case WeatherRain:
		s.Raining = true
		s.RainTime = duration
	case WeatherThunder:
		s.Thundering = true
		s.ThunderTime = duration
	case WeatherClear:
		s.Raining, s.RainTime = false, 0
		s.Thundering, s.ThunderTime = false, 0
		s.ClearWeatherTime = duration
	}
	return from
}

// Force makes w the observable weather right away, such as when an operator
// changes the weather. Unlike Set, Force lifts a pinned spell of clear
// weather and resets the flags of any other weather. Rain and thunder both
// end after the duration passed. The observable Weather from before the call
// is returned.
func (s *WeatherState) Force(w Weather, duration int32) Weather {
	from := s.Weather()
	switch w {
	case WeatherRain:
		*s = WeatherState{Raining: true, RainTime: duration, ThunderTime: duration}
	case WeatherThunder:
		*s = WeatherState{Raining: true, Thundering: true, RainTime: duration, ThunderTime: duration}
	case WeatherClear:
		*s = WeatherState{ClearWeatherTime: duration}
	}
	return from
}

// Advance advances the weather by a single tick. If a transition is due, a
// WeatherChange is created with a random duration drawn from r and passed to
// observe, which may override the target weather and duration. The change
// is committed if its target still differs from the weather before the
// tick, in which case the committed change is returned with true.
func (s *WeatherState) Advance(r *rand.Rand, observe func(*WeatherChange)) (WeatherChange, bool) {
	if s.ClearWeatherTime > 0 {
		s.ClearWeatherTime--
		return WeatherChange{}, false
	}
	from := s.Weather()

	to := from
	if s.RainTime--; s.RainTime <= 0 {
		to = toggle(s.Raining, WeatherRain)
	}
	if s.ThunderTime--; s.ThunderTime <= 0 {
		to = toggle(s.Thundering, WeatherThunder)
	}
	if to == from {
		return WeatherChange{}, false
	}

	ev := &WeatherChange{from: from, To: to, Duration: weatherDuration(r, to)}
	if observe != nil {
		observe(ev)
	}
	if ev.To == from {
		return WeatherChange{}, false
	}
	s.Set(ev.To, ev.Duration)
	return *ev, true
}

// toggle returns clear weather if the flag is currently set and w otherwise.
func toggle(set bool, w Weather) Weather {
	if set {
		return WeatherClear
	}
	return w
}

// weatherDuration returns a random duration in ticks for weather w. Clear
// weather lasts between half a day and a week and a half day, rain and
// thunder between half a day and a day.
func weatherDuration(r *rand.Rand, w Weather) int32 {
	if w == WeatherClear {
		return ticksHalfDay + r.Int32N(ticksWeek)
	}
	return ticksHalfDay + r.Int32N(ticksDay-ticksHalfDay)
}

// WeatherChange is a transition of the weather about to be committed. It is
// passed to every Handler in order, each of which may override To and
// Duration. The change is only committed if To differs from From once all
// handlers ran.
type WeatherChange struct {
	from Weather
	// To is the weather that will be set.
	To Weather
	// Duration is the duration in ticks that the new weather will last.
	Duration int32
}

// From returns the weather before the change.
func (c *WeatherChange) From() Weather {
	return c.from
}
