package finisher

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerConfig holds the parameters of a pool of finishing workers. The zero
// value is usable; defaults are applied by withDefaults.
type WorkerConfig struct {
	// Log is the Logger used for backpressure warnings and recovered panics.
	Log *slog.Logger
	// Workers is the number of goroutines finishing chunks. If 0 or lower,
	// runtime.NumCPU() is used.
	Workers int
	// QueueSize is the number of tasks buffered before Submit falls back to
	// enqueueing asynchronously. If 0 or lower, 256 is used.
	QueueSize int
	// Seed is the world seed passed to the Finisher.
	Seed uint64
	// Finisher is run on every chunk submitted. If nil, an empty Pipeline is
	// used.
	Finisher Finisher
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Finisher == nil {
		c.Finisher = Pipeline{}
	}
	return c
}

// Task is a chunk waiting to be finished. The chunk is owned by the worker
// that picks it up until Done is called.
type Task struct {
	Chunk  Chunk
	Biomes *Biomes
	Top    *TopBlocks
	// Done is called once the chunk was finished, or when the workers were
	// closed before the task ran. It may be nil.
	Done func(c Chunk, finished bool)
}

// Workers finishes chunks asynchronously on a bounded pool of goroutines.
type Workers struct {
	conf WorkerConfig

	// mu guards closed. Submit holds it for reading while enqueueing, so that
	// no task is queued once Close started draining.
	mu     sync.RWMutex
	closed bool

	queue   chan Task
	closing chan struct{}
	running sync.WaitGroup
	once    sync.Once

	// saturation counts how often tasks had to be enqueued asynchronously
	// because the queue was full.
	saturation atomic.Uint64
	lastLog    atomic.Int64
}

// New starts the workers described by the WorkerConfig.
func (c WorkerConfig) New() *Workers {
	c = c.withDefaults()
	w := &Workers{
		conf:    c,
		queue:   make(chan Task, c.QueueSize),
		closing: make(chan struct{}),
	}
	w.running.Add(c.Workers)
	for i := 0; i < c.Workers; i++ {
		go w.work()
	}
	return w
}

// Submit queues t to be finished. Submit does not block: if the queue is
// full, the task is enqueued from a separate goroutine and a throttled
// warning is logged.
func (w *Workers) Submit(t Task) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		t.done(false)
		return
	}
	saturated := false
	select {
	case w.queue <- t:
	default:
		saturated = true
		w.running.Add(1)
		go w.enqueue(t)
	}
	w.mu.RUnlock()

	if saturated {
		w.handleBackpressure()
	}
}

// Close stops the workers. Tasks still queued are completed with finished
// set to false. Close blocks until all workers have returned.
func (w *Workers) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.closing)
		w.mu.Unlock()

		w.running.Wait()
		w.drain()
	})
}

func (w *Workers) enqueue(t Task) {
	defer w.running.Done()
	select {
	case <-w.closing:
		t.done(false)
	case w.queue <- t:
	}
}

func (w *Workers) work() {
	defer w.running.Done()
	for {
		select {
		case t := <-w.queue:
			w.run(t)
		case <-w.closing:
			return
		}
	}
}

// run finishes a single task, recovering from panics so that the worker
// survives a faulty Finisher.
func (w *Workers) run(t Task) {
	finished := false
	defer func() {
		if r := recover(); r != nil {
			pos := t.Chunk.Position()
			w.conf.Log.Error("finish chunk: panic", "error", fmt.Sprint(r), "X", pos[0], "Z", pos[1])
		}
		t.done(finished)
	}()
	w.conf.Finisher.Finish(t.Chunk, t.Biomes, t.Top, w.conf.Seed)
	finished = true
}

func (w *Workers) drain() {
	for {
		select {
		case t := <-w.queue:
			t.done(false)
		default:
			return
		}
	}
}

// handleBackpressure emits a warning at most once a minute when the queue
// saturates.
func (w *Workers) handleBackpressure() {
	count := w.saturation.Add(1)
	now := time.Now().UnixNano()
	last := w.lastLog.Load()
	if last != 0 && time.Duration(now-last) < time.Minute {
		return
	}
	if !w.lastLog.CompareAndSwap(last, now) {
		return
	}
	w.conf.Log.Warn("Finisher queue saturated: chunk finishing backlog detected.",
		"queued_tasks", count,
		"queue_size", cap(w.queue),
		"workers", w.conf.Workers,
	)
}

// Saturation returns how often Submit found the queue full.
func (w *Workers) Saturation() uint64 {
	return w.saturation.Load()
}

func (t Task) done(finished bool) {
	if t.Done != nil {
		t.Done(t.Chunk, finished)
	}
}
