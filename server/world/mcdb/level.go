package mcdb

import (
	"github.com/dm-vev/ember/server/world"
)

// levelData is the NBT representation of the level record. Field names
// follow the Bedrock level.dat where one exists.
type levelData struct {
	LevelName        string  `nbt:"LevelName"`
	Time             int64   `nbt:"Time"`
	CurrentTick      int64   `nbt:"currentTick"`
	DoDayLightCycle  bool    `nbt:"dodaylightcycle"`
	DoWeatherCycle   bool    `nbt:"doweathercycle"`
	RainLevel        float32 `nbt:"rainLevel"`
	RainTime         int32   `nbt:"rainTime"`
	LightningLevel   float32 `nbt:"lightningLevel"`
	LightningTime    int32   `nbt:"lightningTime"`
	ClearWeatherTime int32   `nbt:"clearWeatherTime"`
}

func levelDataFrom(s *world.Settings) levelData {
	d := levelData{
		LevelName:        s.Name,
		Time:             s.Time,
		CurrentTick:      s.CurrentTick,
		DoDayLightCycle:  s.TimeCycle,
		DoWeatherCycle:   s.WeatherCycle,
		RainTime:         s.Weather.RainTime,
		LightningTime:    s.Weather.ThunderTime,
		ClearWeatherTime: s.Weather.ClearWeatherTime,
	}
	if s.Weather.Raining {
		d.RainLevel = 1
	}
	if s.Weather.Thundering {
		d.LightningLevel = 1
	}
	return d
}

func (d levelData) settings() *world.Settings {
	return &world.Settings{
		Name:         d.LevelName,
		Time:         d.Time,
		CurrentTick:  d.CurrentTick,
		TimeCycle:    d.DoDayLightCycle,
		WeatherCycle: d.DoWeatherCycle,
		Weather: world.WeatherState{
			Raining:          d.RainLevel > 0,
			Thundering:       d.LightningLevel > 0,
			RainTime:         d.RainTime,
			ThunderTime:      d.LightningTime,
			ClearWeatherTime: d.ClearWeatherTime,
		},
	}
}
