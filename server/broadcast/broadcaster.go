// Package broadcast turns changes in a world into packets and delivers them
// to the clients that need to see them.
package broadcast

import (
	"log/slog"

	"github.com/dm-vev/ember/server/world"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Config holds the collaborators of a Broadcaster.
type Config struct {
	// Log is the Logger used for debug messages. If nil, slog.Default() is
	// used.
	Log *slog.Logger
	// Registry holds the connected clients. If nil, an empty Registry is
	// created.
	Registry *Registry
	// Store provides the entities whose changes are broadcast.
	Store EntityStore
	// Index is the chunk-entity index used to find the entities in chunks
	// that a client just loaded.
	Index *world.ChunkEntities
	// Metrics receives per-policy counters. It may be nil.
	Metrics *Metrics
}

// Broadcaster delivers packets to connected clients using one of several
// delivery policies. Every policy only writes to clients that are alive and
// writes the packets of a single call in order. Broadcaster is safe for
// concurrent use.
type Broadcaster struct {
	conf Config
}

// Compile time check to make sure Broadcaster can receive weather changes of
// a world.
var _ world.Broadcaster = (*Broadcaster)(nil)

// New creates a Broadcaster using the Config conf.
func (conf Config) New() *Broadcaster {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Registry == nil {
		conf.Registry = NewRegistry()
	}
	return &Broadcaster{conf: conf}
}

// Registry returns the Registry of connected clients.
func (b *Broadcaster) Registry() *Registry {
	return b.conf.Registry
}

// Metrics returns the Metrics of the Broadcaster, which may be nil.
func (b *Broadcaster) Metrics() *Metrics {
	return b.conf.Metrics
}

// ChunkScoped sends pks to every client that has the chunk at pos loaded,
// except the client with the ID exclude. uuid.Nil excludes nobody.
func (b *Broadcaster) ChunkScoped(pos world.ChunkPos, exclude uuid.UUID, pks ...packet.Packet) {
	b.filtered(PolicyChunk, exclude, func(c Client) bool { return c.ChunkLoaded(pos) }, pks)
}

// EntityScoped sends pks to every client that can see the entity e, except
// the client with the ID exclude. uuid.Nil excludes nobody.
func (b *Broadcaster) EntityScoped(e world.EntityID, exclude uuid.UUID, pks ...packet.Packet) {
	b.filtered(PolicyEntity, exclude, func(c Client) bool { return c.EntityVisible(e) }, pks)
}

// Global sends pks to every connected client, except the client with the ID
// exclude. uuid.Nil excludes nobody.
func (b *Broadcaster) Global(exclude uuid.UUID, pks ...packet.Packet) {
	b.filtered(PolicyGlobal, exclude, func(Client) bool { return true }, pks)
}

// Direct sends pks to the client with the ID passed only.
func (b *Broadcaster) Direct(client uuid.UUID, pks ...packet.Packet) {
	c, ok := b.conf.Registry.Client(client)
	if !ok || !c.Alive() {
		b.conf.Metrics.IncSkipped(PolicyDirect)
		return
	}
	b.write(PolicyDirect, c, pks)
}

func (b *Broadcaster) filtered(p Policy, exclude uuid.UUID, include func(Client) bool, pks []packet.Packet) {
	if len(pks) == 0 {
		return
	}
	clients := b.conf.Registry.snapshot()
	defer release(clients)

	for _, c := range *clients {
		if exclude != uuid.Nil && c.ID() == exclude {
			continue
		}
		if !c.Alive() {
			b.conf.Metrics.IncSkipped(p)
			continue
		}
		if include(c) {
			b.write(p, c, pks)
		}
	}
}

func (b *Broadcaster) write(p Policy, c Client, pks []packet.Packet) {
	for _, pk := range pks {
		c.WritePacket(pk)
	}
	b.conf.Metrics.AddSent(p, uint64(len(pks)))
}
