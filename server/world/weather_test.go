package world

import (
	"math/rand/v2"
	"testing"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestClearWeatherTimePinsWeather(t *testing.T) {
	s := WeatherState{ClearWeatherTime: 5, RainTime: 1, ThunderTime: 1}
	r := testRand()
	for i := 0; i < 5; i++ {
		if _, ok := s.Advance(r, func(*WeatherChange) {
			t.Fatalf("observer called on tick %d while clear weather was pinned", i+1)
		}); ok {
			t.Fatalf("weather transitioned on tick %d while clear weather was pinned", i+1)
		}
	}
	if s.ClearWeatherTime != 0 {
		t.Fatalf("expected clear weather time 0 after five ticks, got %d", s.ClearWeatherTime)
	}
	if s.RainTime != 1 || s.ThunderTime != 1 {
		t.Fatalf("timers changed while clear weather was pinned: %+v", s)
	}
	change, ok := s.Advance(r, nil)
	if !ok {
		t.Fatalf("expected a transition on the sixth tick")
	}
	if change.From() != WeatherClear {
		t.Fatalf("expected transition from clear, got %v", change.From())
	}
}

func TestThunderToggleWinsTies(t *testing.T) {
	s := WeatherState{Raining: true, RainTime: 1, ThunderTime: 1}
	var seen []Weather
	change, ok := s.Advance(testRand(), func(ev *WeatherChange) {
		seen = append(seen, ev.To)
	})
	if !ok {
		t.Fatalf("expected a transition")
	}
	if len(seen) != 1 || seen[0] != WeatherThunder {
		t.Fatalf("expected observer to see a single change to thunder, got %v", seen)
	}
	if change.From() != WeatherRain || change.To != WeatherThunder {
		t.Fatalf("expected rain -> thunder, got %v -> %v", change.From(), change.To)
	}
	if !s.Thundering || s.ThunderTime != change.Duration {
		t.Fatalf("thunder not committed: %+v", s)
	}
	if got := s.Weather(); got != WeatherThunder {
		t.Fatalf("expected observable thunder, got %v", got)
	}
}

func TestSetThunderLeavesRain(t *testing.T) {
	s := WeatherState{Raining: true, RainTime: 42}
	before := s.Weather()
	prev := s.Set(WeatherThunder, 100)
	if prev != before {
		t.Fatalf("expected Set to return %v, got %v", before, prev)
	}
	if !s.Thundering || s.ThunderTime != 100 {
		t.Fatalf("thunder fields not set: %+v", s)
	}
	if !s.Raining || s.RainTime != 42 {
		t.Fatalf("rain fields changed: %+v", s)
	}
}

func TestSetClearResetsTimers(t *testing.T) {
	s := WeatherState{Raining: true, RainTime: 42, Thundering: true, ThunderTime: 7}
	if prev := s.Set(WeatherClear, 300); prev != WeatherThunder {
		t.Fatalf("expected previous weather thunder, got %v", prev)
	}
	want := WeatherState{ClearWeatherTime: 300}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
}

func TestObserverCancelsTransition(t *testing.T) {
	s := WeatherState{RainTime: 1, ThunderTime: 100}
	_, ok := s.Advance(testRand(), func(ev *WeatherChange) {
		ev.To = ev.From()
	})
	if ok {
		t.Fatalf("expected cancelled transition not to commit")
	}
	if s.Raining || s.Weather() != WeatherClear {
		t.Fatalf("cancelled transition changed weather: %+v", s)
	}
	if s.RainTime != 0 || s.ThunderTime != 99 {
		t.Fatalf("expected timers to still be decremented, got %+v", s)
	}
}

func TestObserverOverridesTransition(t *testing.T) {
	s := WeatherState{RainTime: 1, ThunderTime: 100}
	change, ok := s.Advance(testRand(), func(ev *WeatherChange) {
		ev.To = WeatherThunder
		ev.Duration = 77
	})
	if !ok || change.To != WeatherThunder || change.Duration != 77 {
		t.Fatalf("override not committed: %+v (ok=%v)", change, ok)
	}
	if !s.Thundering || s.ThunderTime != 77 || s.Raining {
		t.Fatalf("unexpected state after override: %+v", s)
	}
}

func TestWeatherDurationRanges(t *testing.T) {
	r := testRand()
	for i := 0; i < 10_000; i++ {
		if d := weatherDuration(r, WeatherClear); d < ticksHalfDay || d >= ticksWeek+ticksHalfDay {
			t.Fatalf("clear duration %d out of range", d)
		}
		if d := weatherDuration(r, WeatherRain); d < ticksHalfDay || d >= ticksDay {
			t.Fatalf("rain duration %d out of range", d)
		}
	}
}

func TestWeatherDerivation(t *testing.T) {
	tests := []struct {
		s    WeatherState
		want Weather
	}{
		{WeatherState{}, WeatherClear},
		{WeatherState{Raining: true}, WeatherRain},
		{WeatherState{Thundering: true}, WeatherThunder},
		{WeatherState{Raining: true, Thundering: true}, WeatherThunder},
		{WeatherState{Raining: true, Thundering: true, ClearWeatherTime: 1}, WeatherClear},
	}
	for _, tt := range tests {
		if got := tt.s.Weather(); got != tt.want {
			t.Errorf("%+v: expected %v, got %v", tt.s, tt.want, got)
		}
	}
}

func TestParseWeather(t *testing.T) {
	for _, w := range []Weather{WeatherClear, WeatherRain, WeatherThunder} {
		got, ok := ParseWeather(w.String())
		if !ok || got != w {
			t.Fatalf("ParseWeather(%q) = %v, %v", w.String(), got, ok)
		}
	}
	if _, ok := ParseWeather("snow"); ok {
		t.Fatalf("expected unknown weather to fail parsing")
	}
}

func TestForceWeatherLiftsClearSpell(t *testing.T) {
	s := WeatherState{ClearWeatherTime: 500}
	if from := s.Force(WeatherRain, 300); from != WeatherClear {
		t.Fatalf("expected previous weather clear, got %v", from)
	}
	if s.Weather() != WeatherRain || s.ClearWeatherTime != 0 || s.RainTime != 300 {
		t.Fatalf("unexpected state after forcing rain: %+v", s)
	}

	if from := s.Force(WeatherThunder, 200); from != WeatherRain {
		t.Fatalf("expected previous weather rain, got %v", from)
	}
	if !s.Raining || !s.Thundering || s.ThunderTime != 200 {
		t.Fatalf("unexpected state after forcing thunder: %+v", s)
	}

	s.Force(WeatherRain, 100)
	if s.Weather() != WeatherRain || s.Thundering {
		t.Fatalf("expected forcing rain to stop thunder, got %+v", s)
	}
}
