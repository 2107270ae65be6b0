package session

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dm-vev/ember/server/world"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Conn represents a connection of a client that packets may be written to.
// Encoding and framing of packets is the responsibility of the Conn.
type Conn interface {
	WritePacket(pk packet.Packet) error
	Close() error
}

// ErrClosed is returned when a Session is closed more than once.
var ErrClosed = errors.New("session: already closed")

// Config holds the parameters of a Session.
type Config struct {
	// Log is the Logger used for failed writes. If nil, slog.Default() is
	// used.
	Log *slog.Logger
	// Conn is the connection packets of the Session are written to.
	Conn Conn
}

// Session tracks the view of a single connected client: the chunks it has
// loaded and the entities it can see. Packets written to a Session after it
// was closed are dropped.
type Session struct {
	id   uuid.UUID
	log  *slog.Logger
	conn Conn

	entity atomic.Uint64
	closed atomic.Bool

	writeMu sync.Mutex

	viewMu  sync.RWMutex
	chunks  map[world.ChunkPos]struct{}
	visible map[world.EntityID]struct{}
}

// New creates a new Session for the connection of the Config.
func (conf Config) New() *Session {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	s := &Session{
		id:      uuid.New(),
		conn:    conf.Conn,
		chunks:  make(map[world.ChunkPos]struct{}),
		visible: make(map[world.EntityID]struct{}),
	}
	s.log = conf.Log.With("session", s.id)
	return s
}

// ID returns the unique ID of the Session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Alive checks if the Session has not yet been closed.
func (s *Session) Alive() bool {
	return !s.closed.Load()
}

// Entity returns the entity controlled by the Session, or 0 if it does not
// control one.
func (s *Session) Entity() world.EntityID {
	return world.EntityID(s.entity.Load())
}

// SetEntity sets the entity controlled by the Session.
func (s *Session) SetEntity(e world.EntityID) {
	s.entity.Store(uint64(e))
}

// LoadChunk marks the chunk at pos as loaded by the client.
func (s *Session) LoadChunk(pos world.ChunkPos) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	s.chunks[pos] = struct{}{}
}

// UnloadChunk marks the chunk at pos as no longer loaded by the client.
func (s *Session) UnloadChunk(pos world.ChunkPos) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	delete(s.chunks, pos)
}

// ChunkLoaded checks if the client has the chunk at pos loaded.
func (s *Session) ChunkLoaded(pos world.ChunkPos) bool {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	_, ok := s.chunks[pos]
	return ok
}

// ChunkCount returns the number of chunks loaded by the client.
func (s *Session) ChunkCount() int {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return len(s.chunks)
}

// ShowEntity marks an entity as visible to the client.
func (s *Session) ShowEntity(e world.EntityID) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	s.visible[e] = struct{}{}
}

// HideEntity marks an entity as no longer visible to the client.
func (s *Session) HideEntity(e world.EntityID) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	delete(s.visible, e)
}

// EntityVisible checks if an entity is visible to the client.
func (s *Session) EntityVisible(e world.EntityID) bool {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	_, ok := s.visible[e]
	return ok
}

// WritePacket writes a packet to the connection of the Session. Packets are
// dropped once the Session is closed. A failed write closes the Session.
func (s *Session) WritePacket(pk packet.Packet) {
	if !s.Alive() {
		return
	}
	s.writeMu.Lock()
	err := s.conn.WritePacket(pk)
	s.writeMu.Unlock()
	if err != nil {
		s.log.Debug("Failed writing packet, closing session.", "error", err, "packet", pk.ID())
		_ = s.Close()
	}
}

// Close closes the Session and its connection.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}
	s.viewMu.Lock()
	clear(s.chunks)
	clear(s.visible)
	s.viewMu.Unlock()
	return s.conn.Close()
}
