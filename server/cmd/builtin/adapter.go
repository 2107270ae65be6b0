package builtin

import (
	"time"

	"github.com/dm-vev/ember/server"
	"github.com/dm-vev/ember/server/broadcast"
	"github.com/dm-vev/ember/server/world/finisher"
)

type serverAdapter interface {
	Name() string
	StartTime() time.Time
	PlayerNames() []string
	Whitelist() (*server.Whitelist, bool)
	Broadcaster() *broadcast.Broadcaster
	Workers() *finisher.Workers
	Close() error
}

var _ serverAdapter = (*server.Server)(nil)
