package world

import (
	"math"
	"time"
)

// ticker implements World ticking methods.
type ticker struct {
	interval time.Duration
}

const (
	tpsSampleSize       = 20
	tpsWarningThreshold = 19.0
)

// tickLoop starts ticking the World 20 times every second, advancing the
// tick counter, time and weather of the world, as required.
func (t ticker) tickLoop(w *World) {
	tc := time.NewTicker(t.interval)
	defer tc.Stop()
	lastTick := time.Now()
	var (
		durationSum time.Duration
		ticksCount  int
		warned      bool
	)
	for {
		select {
		case <-tc.C:
			tickStart := time.Now()
			duration := tickStart.Sub(lastTick)
			lastTick = tickStart
			if duration > 0 {
				durationSum += duration
				ticksCount++
				if ticksCount >= tpsSampleSize {
					tps := 1.0 / (durationSum / time.Duration(ticksCount)).Seconds()
					w.tps.Store(math.Float64bits(tps))
					if tps < tpsWarningThreshold && !warned {
						w.conf.Log.Warn("TPS dropped below threshold.", "tps", tps)
						warned = true
					} else if tps >= tpsWarningThreshold {
						warned = false
					}
					durationSum, ticksCount = 0, 0
				}
			}
			<-w.Exec(t.tick)
		case <-w.closing:
			// World is being closed: Stop ticking and get rid of a task.
			w.running.Done()
			return
		}
	}
}

// tick performs a tick on the World and updates the tick counter, time and
// weather.
func (t ticker) tick(tx *Tx) {
	w := tx.World()
	if w.conf.ReadOnly {
		return
	}

	w.set.Lock()
	w.set.CurrentTick++
	if w.set.TimeCycle {
		w.set.Time++
	}
	weatherCycle := w.set.WeatherCycle
	w.set.Unlock()

	if weatherCycle {
		w.advanceWeather()
	}
}
