package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dm-vev/ember/server/world"
	"github.com/dm-vev/ember/server/world/finisher"
	"github.com/dm-vev/ember/server/world/mcdb"
)

// Config contains options for starting a Server.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Name is the name of the server. It is used as the name of the world if
	// the world has not been named yet.
	Name string
	// Allower may be used to specify what clients can join the server and
	// which cannot. If nil, every client is allowed to join.
	Allower Allower
	// WorldProvider is the world.Provider used for storing and loading the
	// level record of the world. If left as nil, the level record is newly
	// created every time and never stored.
	WorldProvider world.Provider
	// ReadOnlyWorld specifies if the world should be read only. If set to
	// true, the WorldProvider won't be saved to at all.
	ReadOnlyWorld bool
	// WeatherCycle specifies if the weather of the world advances by itself.
	// If nil, the value stored in the level record is kept.
	WeatherCycle *bool
	// TickInterval is the duration between two ticks of the world. See
	// world.Config.TickInterval.
	TickInterval time.Duration
	// Seed is the world seed that finishers derive their per-chunk random
	// streams from.
	Seed uint64
	// Finisher is run on every chunk passed to Server.FinishChunk. If nil, a
	// Pipeline holding the default ClumpedFoliage is used.
	Finisher finisher.Finisher
	// GeneratorWorkers controls the number of asynchronous workers dedicated
	// to finishing chunks. If set to 0 or lower, the worker count will be
	// derived from the host's available CPUs.
	GeneratorWorkers int
	// GeneratorQueueSize limits how many chunks may wait for a worker. If set
	// to 0 or lower, a default queue size is used. Increase it alongside
	// GeneratorWorkers if the logs report finisher queue saturation.
	GeneratorQueueSize int
	// IndexShards is the number of shards of the chunk-entity index. If 0 or
	// lower, world.DefaultIndexShards is used.
	IndexShards int
	// QueryAddress is the UDP address that Server.ServeQuery answers query
	// requests on. If empty, ServeQuery does nothing.
	QueryAddress string
}

// New creates a Server using fields of conf. The world of the Server starts
// ticking right away.
func (conf Config) New() *Server {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Name == "" {
		conf.Name = "Ember Server"
	}
	if conf.Allower == nil {
		conf.Allower = allower{}
	}
	if conf.WorldProvider == nil {
		conf.WorldProvider = world.NopProvider{}
	}
	if conf.Finisher == nil {
		f, _ := finisher.NewClumpedFoliage(finisher.DefaultRegistry(), finisher.DefaultClumpChance, finisher.DefaultClumpBiomes, finisher.DefaultClumpBlock)
		conf.Finisher = finisher.Pipeline{f}
	}
	return newServer(conf)
}

// UserConfig is the user configuration for an Ember server. It holds settings
// that affect different aspects of the server, such as its world and chunk
// finishing. UserConfig may be serialised and can be converted to a Config
// by calling UserConfig.Config().
type UserConfig struct {
	// Network holds settings related to network aspects of the server.
	Network struct {
		// Address is the address on which the transport should listen.
		Address string
		// QueryAddress is the UDP address on which query requests are
		// answered. Leave it empty if the transport answers them itself.
		QueryAddress string
	}
	Server struct {
		// Name is the name of the server.
		Name string
	}
	World struct {
		// SaveData controls whether the level record of the world will be
		// saved and loaded. If true, the LevelDB provider is used and if
		// false, an empty provider will be used.
		SaveData bool
		// Folder is the folder that the data of the world resides in.
		Folder string
		// Seed is the world seed used when finishing chunks.
		Seed int64
		// WeatherCycle controls if the weather changes by itself.
		WeatherCycle bool
		// GeneratorWorkers is the number of background workers that should be
		// dedicated to finishing chunks. Set to 0 to automatically select a
		// reasonable default based on the host's CPU count.
		GeneratorWorkers int
		// GeneratorQueueSize determines how many chunks can wait for a
		// worker. Set to 0 to use an automatically chosen size.
		GeneratorQueueSize int
		// IndexShards is the number of independently locked shards of the
		// chunk-entity index. It is rounded up to a power of two.
		IndexShards int
	}
	Generation struct {
		// ClumpChance is the chance, as 1 in ClumpChance, for a column to
		// become the centre of a clump of foliage.
		ClumpChance int
		// ClumpBiomes are the names of the biomes in which clumps grow.
		ClumpBiomes []string
		// ClumpBlock is the name of the block that clumps consist of.
		ClumpBlock string
	}
	Whitelist struct {
		// Enabled controls if the whitelist should be enforced for clients
		// attempting to join.
		Enabled bool
		// File is the path to the whitelist TOML file that stores names.
		File string
	}
}

// Config converts a UserConfig to a Config, so that it may be used for
// creating a Server. An error is returned if creating the world provider or
// loading the whitelist failed.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	if log == nil {
		log = slog.Default()
	}
	weatherCycle := uc.World.WeatherCycle
	conf := Config{
		Log:                log,
		Name:               uc.Server.Name,
		WeatherCycle:       &weatherCycle,
		Seed:               uint64(uc.World.Seed),
		GeneratorWorkers:   uc.World.GeneratorWorkers,
		GeneratorQueueSize: uc.World.GeneratorQueueSize,
		IndexShards:        uc.World.IndexShards,
		QueryAddress:       uc.Network.QueryAddress,
	}

	f, unknown := finisher.NewClumpedFoliage(finisher.DefaultRegistry(), uc.Generation.ClumpChance, uc.Generation.ClumpBiomes, uc.Generation.ClumpBlock)
	if len(unknown) > 0 {
		log.Warn("Unknown names in generation config, ignoring them.", "names", strings.Join(unknown, ", "))
	}
	conf.Finisher = finisher.Pipeline{f}

	whitelistFile := strings.TrimSpace(uc.Whitelist.File)
	if whitelistFile == "" {
		whitelistFile = "whitelist.toml"
	}
	wl, err := LoadWhitelist(whitelistFile)
	if err != nil {
		return conf, fmt.Errorf("load whitelist: %w", err)
	}
	wl.SetEnabled(uc.Whitelist.Enabled)
	conf.Allower = wl

	if uc.World.SaveData {
		conf.WorldProvider, err = mcdb.Config{Log: log}.Open(uc.World.Folder)
		if err != nil {
			return conf, fmt.Errorf("create world provider: %w", err)
		}
	}
	return conf, nil
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.Network.Address = ":19132"
	c.Network.QueryAddress = ":19132"
	c.Server.Name = "Ember Server"
	c.World.SaveData = true
	c.World.Folder = "world"
	c.World.WeatherCycle = true
	c.World.IndexShards = world.DefaultIndexShards
	c.Generation.ClumpChance = finisher.DefaultClumpChance
	c.Generation.ClumpBiomes = append([]string(nil), finisher.DefaultClumpBiomes...)
	c.Generation.ClumpBlock = finisher.DefaultClumpBlock
	c.Whitelist.File = "whitelist.toml"
	return c
}
