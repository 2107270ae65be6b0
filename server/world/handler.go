package world

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Handler handles events that are called by a World. Implementations of
// Handler may be used to listen to specific events such as when the weather
// changes. Handlers are called on the World's transaction goroutine.
type Handler interface {
	// HandleWeatherChange handles a weather transition before it is
	// committed. Handlers may override ctx.To and ctx.Duration. Setting To
	// to ctx.From() cancels the transition.
	HandleWeatherChange(ctx *WeatherChange)
	// HandleClose handles the World being closed. HandleClose may be used as a
	// moment to finish code running on other goroutines that operates on the
	// World specifically.
	HandleClose(tx *Tx)
}

// Compile time check to make sure NopHandler implements Handler.
var _ Handler = (*NopHandler)(nil)

// NopHandler implements the Handler interface but does not execute any code
// when an event is called. The default Handler of worlds is set to
// NopHandler. Users may embed NopHandler to avoid having to implement each
// method.
type NopHandler struct{}

func (NopHandler) HandleWeatherChange(*WeatherChange) {}
func (NopHandler) HandleClose(*Tx)                    {}

type handlerRegistration struct {
	id uint64
	h  Handler
}

// handlerList is an ordered list of handlers. Writers take the mutex and
// publish a fresh snapshot, so readers on the transaction goroutine never
// lock.
type handlerList struct {
	mu    sync.Mutex
	regs  []handlerRegistration
	next  uint64
	chain atomic.Pointer[[]Handler]
}

func (l *handlerList) add(h Handler) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.next
	l.next++
	l.regs = append(l.regs, handlerRegistration{id: id, h: h})
	l.publish()
	return id
}

func (l *handlerList) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.regs = slices.DeleteFunc(l.regs, func(reg handlerRegistration) bool {
		return reg.id == id
	})
	l.publish()
}

func (l *handlerList) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.regs = nil
	l.publish()
}

func (l *handlerList) publish() {
	chain := make([]Handler, len(l.regs))
	for i, reg := range l.regs {
		chain[i] = reg.h
	}
	l.chain.Store(&chain)
}

func (l *handlerList) snapshot() []Handler {
	if chain := l.chain.Load(); chain != nil {
		return *chain
	}
	return nil
}
