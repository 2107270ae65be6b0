package world

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// World holds the level record of a world together with its chunk-entity
// index. All mutations of the weather, time and tick counter happen on a
// single transaction goroutine, so that weather transitions are totally
// ordered. World is safe for simultaneous calls.
type World struct {
	conf Config

	queue        chan transaction
	queueClosing chan struct{}
	queueing     sync.WaitGroup

	o sync.Once

	set      *Settings
	handlers handlerList

	closing chan struct{}
	running sync.WaitGroup

	// entities is the chunk-entity index of the World. It is safe for
	// concurrent use and is not guarded by the transaction queue.
	entities *ChunkEntities

	// r is only used from the transaction goroutine.
	r *rand.Rand

	tps atomic.Uint64
}

// transaction is a type that may be added to the transaction queue of a World.
// Its Run method is called when the transaction is taken out of the queue.
type transaction interface {
	Run(w *World)
}

// normalTransaction runs f and closes c once it is done.
type normalTransaction struct {
	c chan struct{}
	f ExecFunc
}

func (t normalTransaction) Run(w *World) {
	tx := &Tx{w: w}
	t.f(tx)
	tx.close()
	close(t.c)
}

// New creates a new initialised World with a NopProvider and default
// settings. It ticks 20 times per second.
func New() *World {
	var conf Config
	return conf.New()
}

// Name returns the display name of the World.
func (w *World) Name() string {
	w.set.Lock()
	defer w.set.Unlock()
	return w.set.Name
}

// CurrentTick returns the current tick counter of the world.
func (w *World) CurrentTick() int64 {
	if w == nil {
		return 0
	}
	w.set.Lock()
	defer w.set.Unlock()
	return w.set.CurrentTick
}

// Time returns the current time of the World.
func (w *World) Time() int64 {
	w.set.Lock()
	defer w.set.Unlock()
	return w.set.Time
}

// Weather returns the observable weather of the World. Weather does not
// modify any state.
func (w *World) Weather() Weather {
	w.set.Lock()
	defer w.set.Unlock()
	return w.set.Weather.Weather()
}

// WeatherState returns a copy of the weather flags and timers of the World.
func (w *World) WeatherState() WeatherState {
	w.set.Lock()
	defer w.set.Unlock()
	return w.set.Weather
}

// WeatherCycle reports if the weather of the World advances by itself.
func (w *World) WeatherCycle() bool {
	w.set.Lock()
	defer w.set.Unlock()
	return w.set.WeatherCycle
}

// TPS returns the current average ticks per second of the world. The value is
// averaged over the last tpsSampleSize ticks and may be zero if no samples have
// been recorded yet.
func (w *World) TPS() float64 {
	return math.Float64frombits(w.tps.Load())
}

// Entities returns the chunk-entity index of the World.
func (w *World) Entities() *ChunkEntities {
	return w.entities
}

// ExecFunc is a function that performs a synchronised transaction on a World.
type ExecFunc func(tx *Tx)

// Exec performs a synchronised transaction f on a World. Exec returns a channel
// that is closed once the transaction is complete.
func (w *World) Exec(f ExecFunc) <-chan struct{} {
	c := make(chan struct{})
	w.queue <- normalTransaction{c: c, f: f}
	return c
}

// handleTransactions continuously reads transactions from the queue and runs
// them.
func (w *World) handleTransactions() {
	for {
		select {
		case tx := <-w.queue:
			tx.Run(w)
		case <-w.queueClosing:
			w.queueing.Done()
			return
		}
	}
}

// Handle adds h to the handlers of the World. Handlers are called in the
// order they were added. The function returned removes h again. Handle does
// nothing if nil is passed.
func (w *World) Handle(h Handler) (unregister func()) {
	if w == nil || h == nil {
		return func() {}
	}
	id := w.handlers.add(wrapWorldHandler(w, h))
	var once sync.Once
	return func() {
		once.Do(func() { w.handlers.remove(id) })
	}
}

// advanceWeather advances the weather by one tick on a copy of the weather
// state. Handlers run without the settings lock held, so that they may read
// the World freely. The result is written back before it is broadcast.
func (w *World) advanceWeather() {
	w.set.Lock()
	state := w.set.Weather
	w.set.Unlock()

	handlers := w.handlers.snapshot()
	change, ok := state.Advance(w.r, func(ev *WeatherChange) {
		for _, h := range handlers {
			h.HandleWeatherChange(ev)
		}
	})

	w.set.Lock()
	w.set.Weather = state
	w.set.Unlock()

	if ok {
		w.conf.Log.Debug("Weather changed.", "from", change.From(), "to", change.To, "duration", change.Duration)
		w.broadcastWeather(change.To)
	}
}

// setWeather sets the weather of the World and broadcasts it if the
// observable weather changed.
func (w *World) setWeather(to Weather, duration int32, set func(*WeatherState, Weather, int32) Weather) {
	w.set.Lock()
	from := set(&w.set.Weather, to, duration)
	now := w.set.Weather.Weather()
	w.set.Unlock()

	if from != now {
		w.broadcastWeather(now)
	}
}

func (w *World) broadcastWeather(to Weather) {
	if w.conf.Broadcaster != nil {
		w.conf.Broadcaster.BroadcastWeather(to)
	}
}

// Save saves the level record of the World to its Provider.
func (w *World) Save() {
	<-w.Exec(func(*Tx) { w.save() })
}

// save must be called from the transaction goroutine.
func (w *World) save() {
	if w.conf.ReadOnly {
		return
	}
	w.conf.Log.Debug("Updating level record...")
	w.conf.Provider.SaveSettings(w.set)
}

// autoSave runs until the world is closed, saving the level record every
// SaveInterval.
func (w *World) autoSave() {
	save := time.NewTicker(w.conf.SaveInterval)
	defer save.Stop()

	for {
		select {
		case <-save.C:
			w.Save()
		case <-w.closing:
			w.running.Done()
			return
		}
	}
}

// Close closes the World, saving its level record and closing its Provider.
func (w *World) Close() error {
	w.o.Do(w.close)
	return nil
}

// close stops the World from ticking, saves the level record to the Provider
// and closes it.
func (w *World) close() {
	close(w.closing)
	w.running.Wait()

	<-w.Exec(func(tx *Tx) {
		// Let user code run anything that needs to be finished before closing.
		for _, h := range w.handlers.snapshot() {
			h.HandleClose(tx)
		}
		w.handlers.clear()
		w.save()
	})

	close(w.queueClosing)
	w.queueing.Wait()

	w.conf.Log.Debug("Closing provider...")
	if err := w.conf.Provider.Close(); err != nil {
		w.conf.Log.Error("close world provider: " + err.Error())
	}
}
