package builtin

import (
	"strings"
	"time"

	"github.com/dm-vev/ember/server/cmd"
	"github.com/dm-vev/ember/server/world"
)

// defaultWeatherDuration is used for rain and thunder started without a
// duration.
const defaultWeatherDuration = 5 * time.Minute

type weatherCommand struct{}

func newWeatherCommand() cmd.Command {
	return cmd.New("weather", "Sets, queries or toggles the weather.", "<clear|rain|thunder> [duration] | query | cycle <on|off>", nil, weatherCommand{})
}

func (weatherCommand) Run(args []string, _ cmd.Source, o *cmd.Output, tx *world.Tx) {
	if len(args) == 0 {
		o.Errorf(cmd.MessageUsage, "/weather <clear|rain|thunder> [duration] | query | cycle <on|off>")
		return
	}
	switch sub := strings.ToLower(args[0]); sub {
	case "query":
		w := tx.World()
		state := w.WeatherState()
		o.Printf("Weather is %s (rain %d, thunder %d, clear %d ticks). Cycle: %s.", w.Weather(), state.RainTime, state.ThunderTime, state.ClearWeatherTime, onOff(w.WeatherCycle()))
	case "cycle":
		if len(args) < 2 {
			o.Errorf(cmd.MessageUsage, "/weather cycle <on|off>")
			return
		}
		v, ok := parseOnOff(args[1])
		if !ok {
			o.Errorf(cmd.MessageParameterInvalid, args[1])
			return
		}
		tx.SetWeatherCycle(v)
		o.Printf("Weather cycle turned %s.", onOff(v))
	default:
		w, ok := world.ParseWeather(sub)
		if !ok {
			o.Errorf(cmd.MessageParameterInvalid, args[0])
			return
		}
		if w == world.WeatherClear && len(args) == 1 {
			tx.ClearWeather()
			o.Print("Changing to clear weather.")
			return
		}
		d := defaultWeatherDuration
		if len(args) > 1 {
			var err error
			if d, err = parseDuration(args[1]); err != nil {
				o.Errorf(cmd.MessageParameterInvalid, args[1])
				return
			}
		}
		tx.ForceWeather(w, durationTicks(d))
		o.Printf("Changing to %s weather for %s.", w, d)
	}
}
