// Package mcdb implements a world.Provider that stores the level record of a
// world in a LevelDB database, encoded as little endian NBT.
package mcdb

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/dm-vev/ember/server/world"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// ErrClosed is returned when a DB is used after it was closed.
var ErrClosed = errors.New("mcdb: database closed")

// keyLevel is the key under which the level record is stored.
var keyLevel = []byte("level")

// Config holds the optional parameters of a DB.
type Config struct {
	// Log is the Logger used to log errors that cannot be returned. If nil,
	// slog.Default() is used.
	Log *slog.Logger
	// LDBOptions holds LevelDB specific options. If nil, defaults suited for
	// small level records are used.
	LDBOptions *opt.Options
}

// DB implements a world.Provider on top of a LevelDB database.
type DB struct {
	conf   Config
	ldb    *leveldb.DB
	dir    string
	closed atomic.Bool
}

// Open creates a new DB reading from and writing to the directory dir. The
// directory is created if it does not yet exist.
func Open(dir string) (*DB, error) {
	var conf Config
	return conf.Open(dir)
}

// Open creates a new DB in the directory dir using the Config conf.
func (conf Config) Open(dir string) (*DB, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.LDBOptions == nil {
		conf.LDBOptions = &opt.Options{
			Compression: opt.SnappyCompression,
			BlockSize:   16 * opt.KiB,
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "db"), 0o777); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	ldb, err := leveldb.OpenFile(filepath.Join(dir, "db"), conf.LDBOptions)
	if err != nil {
		return nil, fmt.Errorf("open level db: %w", err)
	}
	return &DB{conf: conf, ldb: ldb, dir: dir}, nil
}

// Settings reads the level record stored in the DB. Default settings are
// returned if none were stored yet or if the record could not be read.
func (db *DB) Settings() *world.Settings {
	s, err := db.LoadSettings()
	if err != nil {
		if !errors.Is(err, leveldb.ErrNotFound) {
			db.conf.Log.Error("load level record: " + err.Error())
		}
		return world.DefaultSettings()
	}
	return s
}

// LoadSettings reads the level record stored in the DB. If none was stored
// yet, an error wrapping leveldb.ErrNotFound is returned.
func (db *DB) LoadSettings() (*world.Settings, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	b, err := db.ldb.Get(keyLevel, nil)
	if err != nil {
		return nil, fmt.Errorf("read level record: %w", err)
	}
	var d levelData
	if err := nbt.UnmarshalEncoding(b, &d, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("decode level record: %w", err)
	}
	return d.settings(), nil
}

// SaveSettings writes s to the DB. Errors are logged.
func (db *DB) SaveSettings(s *world.Settings) {
	if err := db.StoreSettings(s); err != nil {
		db.conf.Log.Error("save level record: " + err.Error())
	}
}

// StoreSettings writes s to the DB.
func (db *DB) StoreSettings(s *world.Settings) error {
	if db.closed.Load() {
		return ErrClosed
	}
	s.Lock()
	d := levelDataFrom(s)
	s.Unlock()

	b, err := nbt.MarshalEncoding(d, nbt.LittleEndian)
	if err != nil {
		return fmt.Errorf("encode level record: %w", err)
	}
	if err := db.ldb.Put(keyLevel, b, nil); err != nil {
		return fmt.Errorf("write level record: %w", err)
	}
	return nil
}

// Close closes the DB. Calling Close more than once returns ErrClosed.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return ErrClosed
	}
	return db.ldb.Close()
}
