package builtin

import (
	"fmt"
	"runtime"
	"runtime/metrics"
	"sync"
	"time"

	"github.com/dm-vev/ember/server/broadcast"
	"github.com/dm-vev/ember/server/cmd"
	"github.com/dm-vev/ember/server/world"
)

type statusCommand struct {
	srv serverAdapter
}

func newStatusCommand(srv serverAdapter) cmd.Command {
	return cmd.New("status", "Displays server performance statistics.", "", nil, statusCommand{srv: srv})
}

func (s statusCommand) Run(_ []string, _ cmd.Source, o *cmd.Output, tx *world.Tx) {
	w := tx.World()

	o.Printf("%s | Uptime: %s", s.srv.Name(), time.Since(s.srv.StartTime()).Round(time.Second))
	o.Printf("Clients: %d", len(s.srv.PlayerNames()))
	o.Printf("World: %s | Weather: %s | Occupied chunks: %d", w.Name(), w.Weather(), w.Entities().Len())

	if tps := w.TPS(); tps > 0 {
		o.Printf("TPS (avg): %.2f / 20.00", tps)
	} else {
		o.Print("TPS (avg): collecting samples...")
	}

	if m := s.srv.Broadcaster().Metrics(); m != nil {
		for _, p := range []broadcast.Policy{broadcast.PolicyChunk, broadcast.PolicyEntity, broadcast.PolicyDirect, broadcast.PolicyGlobal} {
			o.Printf("Packets (%s): %d sent, %d skipped", p, m.Sent(p), m.Skipped(p))
		}
	}
	o.Printf("Finisher queue saturated %d times.", s.srv.Workers().Saturation())

	if cpuLoad, ready := sampleAverageCPULoad(); ready {
		o.Printf("CPU load (per core): %.2f%% across %d cores", cpuLoad, runtime.NumCPU())
	} else {
		o.Print("CPU load: collecting baseline, try again shortly.")
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	lastGC := "never"
	if mem.LastGC != 0 {
		lastGC = fmt.Sprintf("%s ago", time.Since(time.Unix(0, int64(mem.LastGC))).Round(time.Second))
	}
	o.Printf("Memory: %.2f MiB heap used / %.2f MiB reserved", bytesToMiB(mem.HeapAlloc), bytesToMiB(mem.HeapSys))
	o.Printf("Goroutines: %d | GOMAXPROCS: %d | GC cycles: %d | Last GC: %s", runtime.NumGoroutine(), runtime.GOMAXPROCS(0), mem.NumGC, lastGC)
}

var (
	cpuSampleMu       sync.Mutex
	cpuSampleLastTime time.Time
	cpuSampleLastUsed float64
)

// sampleAverageCPULoad returns the CPU load since the previous call. False is
// returned for the first sample.
func sampleAverageCPULoad() (float64, bool) {
	samples := []metrics.Sample{{Name: "/cpu/classes/total:cpu-seconds"}}
	metrics.Read(samples)
	if samples[0].Value.Kind() != metrics.KindFloat64 {
		return 0, false
	}
	total := samples[0].Value.Float64()
	now := time.Now()

	cpuSampleMu.Lock()
	defer cpuSampleMu.Unlock()

	ready := !cpuSampleLastTime.IsZero()
	deltaTime := now.Sub(cpuSampleLastTime).Seconds()
	deltaUsed := total - cpuSampleLastUsed

	cpuSampleLastTime = now
	cpuSampleLastUsed = total

	if !ready || deltaTime <= 0 || deltaUsed < 0 {
		return 0, false
	}
	usage := deltaUsed / deltaTime / float64(runtime.NumCPU()) * 100
	return min(max(usage, 0), 100), true
}
