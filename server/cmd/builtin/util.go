package builtin

import (
	"math"
	"strconv"
	"strings"
	"time"
)

func bytesToMiB(v uint64) float64 {
	return float64(v) / (1024 * 1024)
}

// parseDuration parses a duration either as a whole number of seconds or in
// the format accepted by time.ParseDuration.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 || int64(secs) > math.MaxInt64/int64(time.Second) {
			return 0, strconv.ErrRange
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err == nil && d < 0 {
		return 0, strconv.ErrRange
	}
	return d, err
}

// durationTicks converts d to world ticks, capped at the largest duration a
// weather timer holds.
func durationTicks(d time.Duration) int32 {
	ticks := d / (time.Second / 20)
	if ticks > 1<<31-1 {
		return 1<<31 - 1
	}
	return int32(ticks)
}

func parseOnOff(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "on", "true", "enable", "1":
		return true, true
	case "off", "false", "disable", "0":
		return false, true
	}
	return false, false
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
