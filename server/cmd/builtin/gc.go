package builtin

import (
	"runtime"

	"github.com/dm-vev/ember/server/cmd"
	"github.com/dm-vev/ember/server/world"
)

type gcCommand struct{}

func newGCCommand() cmd.Command {
	return cmd.New("gc", "Triggers a Go garbage collection cycle.", "", nil, gcCommand{})
}

func (gcCommand) Run(_ []string, _ cmd.Source, o *cmd.Output, _ *world.Tx) {
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	runtime.GC()

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	freedBytes := uint64(0)
	if before.HeapAlloc > after.HeapAlloc {
		freedBytes = before.HeapAlloc - after.HeapAlloc
	}
	o.Printf("Heap memory freed: %.2f MiB (current heap %.2f MiB)", bytesToMiB(freedBytes), bytesToMiB(after.HeapAlloc))
}
