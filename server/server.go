package server

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dm-vev/ember/server/block/cube"
	"github.com/dm-vev/ember/server/broadcast"
	"github.com/dm-vev/ember/server/entity"
	"github.com/dm-vev/ember/server/session"
	"github.com/dm-vev/ember/server/world"
	"github.com/dm-vev/ember/server/world/finisher"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	// ErrNotAllowed is returned by Server.Join if the Allower of the Server
	// refused the client.
	ErrNotAllowed = errors.New("server: client not allowed to join")
	// ErrClosed is returned when joining a Server that was closed.
	ErrClosed = errors.New("server: closed")
	// ErrUnknownClient is returned for operations on a session ID that is not
	// connected.
	ErrUnknownClient = errors.New("server: unknown client")
)

// Server ties together the world, its entities, the connected clients and
// the chunk finishing workers. Transport is left to the caller: connections
// are handed to Join once a client finished logging in.
type Server struct {
	conf    Config
	started time.Time

	world   *world.World
	index   *world.ChunkEntities
	store   *entity.Store
	bc      *broadcast.Broadcaster
	workers *finisher.Workers

	closed atomic.Bool
	once   sync.Once
	done   chan struct{}
	// joining is held for reading by Join. Close takes it for writing once
	// closed is set, so that every Join either finished before the clients
	// are disconnected or fails with ErrClosed.
	joining sync.RWMutex

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

// client is a connected client of the Server together with the name it
// joined with.
type client struct {
	s    *session.Session
	name string
}

// newServer creates the collaborators of a Server in dependency order: the
// index is shared by the entity store, the broadcaster and the world.
func newServer(conf Config) *Server {
	index := world.NewChunkEntities(conf.IndexShards)
	store := entity.NewStore(index)
	bc := broadcast.Config{
		Log:      conf.Log.With("subsystem", "broadcast"),
		Registry: broadcast.NewRegistry(),
		Store:    store,
		Index:    index,
		Metrics:  broadcast.NewMetrics(),
	}.New()
	store.HandleInventory(bc)

	srv := &Server{
		conf:    conf,
		started: time.Now(),
		index:   index,
		store:   store,
		bc:      bc,
		done:    make(chan struct{}),
		clients: make(map[uuid.UUID]*client),
	}
	srv.world = world.Config{
		Log:          conf.Log,
		Provider:     conf.WorldProvider,
		ReadOnly:     conf.ReadOnlyWorld,
		Broadcaster:  bc,
		TickInterval: conf.TickInterval,
		Entities:     index,
	}.New()
	if conf.WeatherCycle != nil {
		v := *conf.WeatherCycle
		<-srv.world.Exec(func(tx *world.Tx) { tx.SetWeatherCycle(v) })
	}
	srv.workers = finisher.WorkerConfig{
		Log:       conf.Log.With("subsystem", "finisher"),
		Workers:   conf.GeneratorWorkers,
		QueueSize: conf.GeneratorQueueSize,
		Seed:      conf.Seed,
		Finisher:  conf.Finisher,
	}.New()
	return srv
}

// Name returns the name of the Server.
func (srv *Server) Name() string {
	return srv.conf.Name
}

// StartTime returns the time at which the Server was created.
func (srv *Server) StartTime() time.Time {
	return srv.started
}

// World returns the world of the Server.
func (srv *Server) World() *world.World {
	return srv.world
}

// Broadcaster returns the Broadcaster that delivers packets to the clients
// of the Server.
func (srv *Server) Broadcaster() *broadcast.Broadcaster {
	return srv.bc
}

// Entities returns the entity store of the Server.
func (srv *Server) Entities() *entity.Store {
	return srv.store
}

// Workers returns the chunk finishing workers of the Server.
func (srv *Server) Workers() *finisher.Workers {
	return srv.workers
}

// Whitelist returns the Whitelist of the Server, if its Allower is one.
func (srv *Server) Whitelist() (*Whitelist, bool) {
	wl, ok := srv.conf.Allower.(*Whitelist)
	return wl, ok
}

// PlayerCount returns the number of clients currently connected.
func (srv *Server) PlayerCount() int {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	return len(srv.clients)
}

// PlayerNames returns the names of all connected clients, sorted.
func (srv *Server) PlayerNames() []string {
	srv.mu.RLock()
	names := make([]string, 0, len(srv.clients))
	for _, c := range srv.clients {
		names = append(names, c.name)
	}
	srv.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Session returns the session of a connected client.
func (srv *Server) Session(id uuid.UUID) (*session.Session, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	c, ok := srv.clients[id]
	if !ok {
		return nil, false
	}
	return c.s, true
}

// Join admits a client that logged in with the name passed. An entity
// controlled by the client is spawned at pos and the current weather is sent
// before any later weather change. ErrNotAllowed is returned, wrapped with
// the reason, if the Allower refused the client.
func (srv *Server) Join(conn session.Conn, name string, pos mgl64.Vec3) (*session.Session, error) {
	srv.joining.RLock()
	defer srv.joining.RUnlock()
	if srv.closed.Load() {
		return nil, ErrClosed
	}
	if reason, ok := srv.conf.Allower.Allow(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAllowed, reason)
	}
	s := session.Config{Log: srv.conf.Log, Conn: conn}.New()
	e := srv.store.Spawn(entity.SpawnOpts{Position: pos, Controller: s.ID(), Inventory: true})
	s.SetEntity(e.ID())

	srv.mu.Lock()
	srv.clients[s.ID()] = &client{s: s, name: name}
	srv.mu.Unlock()

	// Weather broadcasts are made from the transaction goroutine, so adding
	// the client there orders the initial weather before any transition.
	<-srv.world.Exec(func(tx *world.Tx) {
		srv.bc.Registry().Add(s)
		srv.bc.WeatherTo(s.ID(), tx.Weather())
	})
	srv.conf.Log.Info("Client joined.", "name", name, "session", s.ID(), "entity", e.ID())
	return s, nil
}

// Leave disconnects the client with the ID passed and despawns its entity.
func (srv *Server) Leave(id uuid.UUID) error {
	srv.mu.Lock()
	c, ok := srv.clients[id]
	delete(srv.clients, id)
	srv.mu.Unlock()
	if !ok {
		return ErrUnknownClient
	}
	srv.disconnect(c)
	srv.conf.Log.Info("Client left.", "name", c.name, "session", id)
	return nil
}

func (srv *Server) disconnect(c *client) {
	srv.bc.Registry().Remove(c.s.ID())
	e := c.s.Entity()
	srv.store.Despawn(e)
	srv.mu.RLock()
	for _, other := range srv.clients {
		other.s.HideEntity(e)
	}
	srv.mu.RUnlock()
	if err := c.s.Close(); err != nil && !errors.Is(err, session.ErrClosed) {
		srv.conf.Log.Debug("close session: "+err.Error(), "session", c.s.ID())
	}
}

// LoadChunk marks the chunk at pos as loaded by a client and shows the
// entities in it to the client.
func (srv *Server) LoadChunk(id uuid.UUID, pos world.ChunkPos) error {
	s, ok := srv.Session(id)
	if !ok {
		return ErrUnknownClient
	}
	s.LoadChunk(pos)
	for _, e := range srv.index.EntitiesInChunk(pos) {
		if e != s.Entity() {
			s.ShowEntity(e)
		}
	}
	srv.bc.ChunkShown(pos, id)
	return nil
}

// UnloadChunk marks the chunk at pos as no longer loaded by a client. The
// entities in it are hidden from the client.
func (srv *Server) UnloadChunk(id uuid.UUID, pos world.ChunkPos) error {
	s, ok := srv.Session(id)
	if !ok {
		return ErrUnknownClient
	}
	s.UnloadChunk(pos)
	for _, e := range srv.index.EntitiesInChunk(pos) {
		s.HideEntity(e)
	}
	return nil
}

// SpawnEntity spawns an entity that is not controlled by a client at pos. It
// is shown to every client that has the chunk of pos loaded.
func (srv *Server) SpawnEntity(pos mgl64.Vec3, inventory bool) world.EntityID {
	e := srv.store.Spawn(entity.SpawnOpts{Position: pos, Inventory: inventory})
	srv.updateVisibility(e.ID(), world.ChunkPosFromVec3(pos))
	return e.ID()
}

// MoveEntity moves an entity to pos. If the entity crossed a chunk border,
// it is shown to clients that have its new chunk loaded and hidden from
// clients that do not. False is returned if the entity is not alive.
func (srv *Server) MoveEntity(id world.EntityID, pos mgl64.Vec3) bool {
	e, ok := srv.store.Entity(id)
	if !ok {
		return false
	}
	from, to := world.ChunkPosFromVec3(e.Position()), world.ChunkPosFromVec3(pos)
	if !srv.store.Move(id, pos) {
		return false
	}
	if from != to {
		srv.updateVisibility(id, to)
	}
	return true
}

// DespawnEntity removes an entity from the world and hides it from all
// clients.
func (srv *Server) DespawnEntity(id world.EntityID) bool {
	if !srv.store.Despawn(id) {
		return false
	}
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	for _, c := range srv.clients {
		c.s.HideEntity(id)
	}
	return true
}

// updateVisibility shows or hides the entity e, now in the chunk at pos, for
// every client other than its controller.
func (srv *Server) updateVisibility(e world.EntityID, pos world.ChunkPos) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	for id, c := range srv.clients {
		if c.s.Entity() == e {
			continue
		}
		loaded, visible := c.s.ChunkLoaded(pos), c.s.EntityVisible(e)
		switch {
		case loaded && !visible:
			c.s.ShowEntity(e)
			srv.bc.EntityShown(e, id)
		case !loaded && visible:
			c.s.HideEntity(e)
		}
	}
}

// SetBlock broadcasts a block change at pos to the clients that have its
// chunk loaded. The client origin, which made the change, is excluded.
func (srv *Server) SetBlock(pos cube.Pos, b world.Block, origin uuid.UUID) {
	srv.bc.BlockUpdate(pos, b, origin)
}

// FinishChunk submits a freshly generated chunk to the finishing workers.
// done, which may be nil, is called once the chunk is finished or the Server
// closed before it could be.
func (srv *Server) FinishChunk(c finisher.Chunk, biomes *finisher.Biomes, top *finisher.TopBlocks, done func(c finisher.Chunk, finished bool)) {
	srv.workers.Submit(finisher.Task{Chunk: c, Biomes: biomes, Top: top, Done: done})
}

// Close disconnects all clients, stops the finishing workers and closes the
// world, saving its level record.
func (srv *Server) Close() error {
	var err error
	srv.once.Do(func() {
		srv.closed.Store(true)
		srv.conf.Log.Info("Server closing...")
		srv.joining.Lock()
		srv.joining.Unlock()

		srv.mu.Lock()
		clients := make([]*client, 0, len(srv.clients))
		for id, c := range srv.clients {
			clients = append(clients, c)
			delete(srv.clients, id)
		}
		srv.mu.Unlock()
		for _, c := range clients {
			srv.disconnect(c)
		}

		srv.workers.Close()
		err = srv.world.Close()
		srv.conf.Log.Info("Server closed.", "uptime", time.Since(srv.started).Round(time.Second).String())
		close(srv.done)
	})
	return err
}

// Closed returns a channel that is closed once Close has completed.
func (srv *Server) Closed() <-chan struct{} {
	return srv.done
}

// Log returns the Logger of the Server.
func (srv *Server) Log() *slog.Logger {
	return srv.conf.Log
}
