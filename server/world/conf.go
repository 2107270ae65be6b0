package world

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

// Config may be used to create a new World. It holds a variety of fields that
// influence the World.
type Config struct {
	// Log is the Logger that will be used to log errors and debug messages to.
	// If set to nil, slog.Default() is used.
	Log *slog.Logger
	// Provider is the Provider implementation used to read and write the
	// level record of the World. If set to nil, NopProvider is used.
	Provider Provider
	// ReadOnly specifies if the World should be read-only, meaning no new
	// data will be written to the Provider.
	ReadOnly bool
	// Broadcaster receives committed weather transitions so that they may be
	// sent to connected clients. If set to nil, transitions are not sent.
	Broadcaster Broadcaster
	// Handlers are added to the World in order before it starts ticking.
	Handlers []Handler
	// TickInterval is the duration between two ticks of the World. If 0, the
	// World ticks 20 times per second. Setting it to a negative value stops
	// the World from ticking by itself, in which case Tx.Tick may be used to
	// step the World manually.
	TickInterval time.Duration
	// SaveInterval specifies how often the level record should be saved to
	// the Provider. If 0, it is saved every 5 minutes. Setting it to a
	// negative value disables periodic saving.
	SaveInterval time.Duration
	// Entities is the chunk-entity index of the World. If nil, a new index
	// with IndexShards shards is created.
	Entities *ChunkEntities
	// IndexShards is the number of shards of the index created if Entities
	// is nil. If 0 or lower, DefaultIndexShards is used.
	IndexShards int
	// RandSource is the rand.Source used for generation of random numbers in
	// the World, such as weather durations. If nil, a source seeded with the
	// current time is used.
	RandSource rand.Source
}

// Broadcaster delivers committed world transitions to connected clients.
type Broadcaster interface {
	// BroadcastWeather sends the weather passed to every connected client.
	BroadcastWeather(to Weather)
}

// New creates a new World using the Config conf. The World returned will
// start ticking as soon as New is called, unless TickInterval is negative.
func (conf Config) New() *World {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Provider == nil {
		conf.Provider = NopProvider{}
	}
	if conf.TickInterval == 0 {
		conf.TickInterval = time.Second / 20
	}
	if conf.SaveInterval == 0 {
		conf.SaveInterval = time.Minute * 5
	}
	if conf.Entities == nil {
		conf.Entities = NewChunkEntities(conf.IndexShards)
	}
	if conf.RandSource == nil {
		t := uint64(time.Now().UnixNano())
		conf.RandSource = rand.NewPCG(t, t)
	}
	w := &World{
		conf:     conf,
		set:      conf.Provider.Settings(),
		r:        rand.New(conf.RandSource),
		entities: conf.Entities,
		queue:    make(chan transaction, 128),
		closing:  make(chan struct{}),

		queueClosing: make(chan struct{}),
	}
	w.set.Lock()
	if w.set.Weather == (WeatherState{}) && !conf.ReadOnly {
		// Freshly created level record: start off with a spell of clear
		// weather so that the first tick does not toggle to rain.
		w.set.Weather.Set(WeatherClear, weatherDuration(w.r, WeatherClear))
	}
	w.set.Unlock()

	for _, h := range conf.Handlers {
		w.Handle(h)
	}

	w.queueing.Add(1)
	go w.handleTransactions()

	if conf.TickInterval > 0 {
		w.running.Add(1)
		go ticker{interval: conf.TickInterval}.tickLoop(w)
	}
	if conf.SaveInterval > 0 && !conf.ReadOnly {
		w.running.Add(1)
		go w.autoSave()
	}
	return w
}
