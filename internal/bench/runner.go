package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/cowkit-go/internal/telemetry/logger"
	"github.com/yndnr/cowkit-go/pkg/atomicx"
	"github.com/yndnr/cowkit-go/pkg/cowmap"
)

// Progress is a point-in-time view of a running bench.
type Progress struct {
	Elapsed  time.Duration
	ReadOps  uint64
	WriteOps uint64
}

// Runner executes one bench run against a single map instance.
type Runner struct {
	cfg Config
	log logger.Logger

	m *cowmap.Map[string, int64]

	readOps  atomic.Uint64
	writeOps atomic.Uint64
	progress *atomicx.Ref[Progress]
}

// NewRunner creates a runner for the given configuration.
func NewRunner(cfg Config, log logger.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bench config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	var m *cowmap.Map[string, int64]
	if cfg.Ordered {
		m = cowmap.NewOrdered[string, int64]()
	} else {
		m = cowmap.New[string, int64]()
	}

	return &Runner{
		cfg:      cfg,
		log:      log,
		m:        m,
		progress: atomicx.NewRef(Progress{}),
	}, nil
}

// Map returns the map under test, for metric collector registration.
func (r *Runner) Map() *cowmap.Map[string, int64] {
	return r.m
}

// Progress returns the latest published progress snapshot.
func (r *Runner) Progress() Progress {
	return r.progress.Get()
}

// Run prefills the map, races readers against writers until the configured
// duration elapses or ctx is cancelled, and returns the report. A
// cancellation is not an error; the report covers the elapsed portion.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := ulid.Make().String()
	r.log.Info("bench run starting",
		"run_id", runID,
		"entries", r.cfg.Entries,
		"readers", r.cfg.Readers,
		"writers", r.cfg.Writers,
		"duration", r.cfg.Duration.String(),
		"ordered", r.cfg.Ordered)

	r.prefill()

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Readers; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			r.readLoop(runCtx, seed)
		}(i)
	}
	for i := 0; i < r.cfg.Writers; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			r.writeLoop(runCtx, seed)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.publishProgress(runCtx, start)
	}()

	wg.Wait()
	elapsed := time.Since(start)

	report := r.buildReport(runID, elapsed)
	r.log.Info("bench run finished",
		"run_id", runID,
		"elapsed", elapsed.String(),
		"read_ops", report.ReadOps,
		"write_ops", report.WriteOps)
	return report, nil
}

// prefill seeds the map in SetAll batches so startup cost stays off the
// measured window.
func (r *Runner) prefill() {
	const batch = 1024
	entries := make(map[string]int64, batch)
	for i := 0; i < r.cfg.Entries; i++ {
		entries[r.key(i)] = int64(i)
		if len(entries) == batch {
			r.m.SetAll(entries)
			entries = make(map[string]int64, batch)
		}
	}
	r.m.SetAll(entries)
}

// readLoop hammers the lock-free read path: point reads, presence checks,
// size reads and the occasional short range scan.
func (r *Runner) readLoop(ctx context.Context, seed int) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(time.Now().UnixNano())))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		key := r.key(rng.IntN(r.cfg.Keyspace))
		switch rng.IntN(16) {
		case 0:
			_ = r.m.Count()
		case 1:
			// Short scan; consistent within one snapshot.
			n := 0
			r.m.Range(func(string, int64) bool {
				n++
				return n < 64
			})
		default:
			if rng.IntN(2) == 0 {
				_, _ = r.m.Get(key)
			} else {
				_ = r.m.Has(key)
			}
		}
		r.readOps.Add(1)
	}
}

// writeLoop issues rate-limited mutations: mostly single Set/Delete, with
// one SetAll batch every BatchSize iterations.
func (r *Runner) writeLoop(ctx context.Context, seed int) {
	limit := rate.Inf
	if r.cfg.WriteRate > 0 {
		limit = rate.Limit(r.cfg.WriteRate)
	}
	limiter := rate.NewLimiter(limit, 1)
	rng := rand.New(rand.NewPCG(uint64(seed)^0x9e3779b9, uint64(time.Now().UnixNano())))

	for i := 0; ; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		switch {
		case i%r.cfg.BatchSize == r.cfg.BatchSize-1:
			batch := make(map[string]int64, r.cfg.BatchSize)
			base := rng.IntN(r.cfg.Keyspace)
			for j := 0; j < r.cfg.BatchSize; j++ {
				batch[r.key((base+j)%r.cfg.Keyspace)] = int64(i)
			}
			r.m.SetAll(batch)
		case rng.IntN(4) == 0:
			_, _ = r.m.Delete(r.key(rng.IntN(r.cfg.Keyspace)))
		default:
			_, _ = r.m.Set(r.key(rng.IntN(r.cfg.Keyspace)), int64(i))
		}
		r.writeOps.Add(1)
	}
}

// publishProgress refreshes the shared progress snapshot once a second.
func (r *Runner) publishProgress(ctx context.Context, start time.Time) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p := Progress{
				Elapsed:  time.Since(start),
				ReadOps:  r.readOps.Load(),
				WriteOps: r.writeOps.Load(),
			}
			r.progress.Set(p)
			r.log.Debug("bench progress",
				"elapsed", p.Elapsed.String(),
				"read_ops", p.ReadOps,
				"write_ops", p.WriteOps)
		}
	}
}

func (r *Runner) buildReport(runID string, elapsed time.Duration) *Report {
	reads := r.readOps.Load()
	writes := r.writeOps.Load()
	secs := elapsed.Seconds()

	rep := &Report{
		RunID:    runID,
		Entries:  r.cfg.Entries,
		Readers:  r.cfg.Readers,
		Writers:  r.cfg.Writers,
		Ordered:  r.cfg.Ordered,
		Elapsed:  elapsed,
		ReadOps:  reads,
		WriteOps: writes,
		Map:      r.m.Stats(),
	}
	if secs > 0 {
		rep.ReadsPerSec = float64(reads) / secs
		rep.WritesPerSec = float64(writes) / secs
	}
	return rep
}

// key formats the nth key. Callers on the hot loops bound n by the
// configured keyspace; prefill passes raw indices so every configured
// entry lands on a distinct key even when Entries exceeds Keyspace.
func (r *Runner) key(n int) string {
	return fmt.Sprintf("key-%08d", n)
}
