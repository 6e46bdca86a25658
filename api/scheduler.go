/*
scheduler.go - Periodic report scheduler

PURPOSE:
  Recomputes the current ISO week's overtime report on an interval and
  stores it as a report snapshot, so GET /api/reports/latest is always
  recent without recalculating on every read.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Computes once immediately on start
  - Uses Handler.Calculate, so settings, time zone and metrics match the
    report endpoints
  - A failed run is logged and retried on the next tick

CONFIGURATION:
  - Interval: How often to recompute (default: 1 hour; 0 disables)

USAGE:
  scheduler := NewReportScheduler(handler, cfg.SchedulerInterval)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Calculate, LatestReport
  - cmd/server/main.go: Wiring
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/overtime-engine/engine"
)

const schedulerSource = "scheduler"

// ReportScheduler periodically stores the current week's report.
type ReportScheduler struct {
	Handler  *Handler
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	lastMu  sync.Mutex
	lastRun time.Time
}

// NewReportScheduler creates a new scheduler.
func NewReportScheduler(h *Handler, interval time.Duration) *ReportScheduler {
	return &ReportScheduler{
		Handler:  h,
		Interval: interval,
	}
}

// Start begins the scheduler. A zero interval leaves it disabled.
func (rs *ReportScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.Interval <= 0 {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.Interval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	log.Printf("[Scheduler] Started with interval: %v", rs.Interval)
}

// Stop stops the scheduler and waits for a running calculation to finish.
func (rs *ReportScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.ticker = nil
	log.Println("[Scheduler] Stopped")
}

func (rs *ReportScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	// Run immediately on start
	rs.RunNow(ctx)

	for {
		select {
		case <-ticker.C:
			rs.RunNow(ctx)
		case <-stop:
			return
		}
	}
}

// RunNow computes and stores the current week's report. Returns the stored
// snapshot ID.
func (rs *ReportScheduler) RunNow(ctx context.Context) (string, error) {
	h := rs.Handler
	rng := h.currentWeek()

	results, _, err := h.Calculate(ctx, rng, schedulerSource)
	if err != nil {
		log.Printf("[Scheduler] Error calculating %s: %v", rng, err)
		return "", err
	}

	id, err := h.Store.SaveReport(ctx, rng, schedulerSource, results)
	if err != nil {
		h.Metrics.RecordReportError(schedulerSource)
		log.Printf("[Scheduler] Error saving report %s: %v", rng, err)
		return "", err
	}

	rs.lastMu.Lock()
	rs.lastRun = time.Now()
	rs.lastMu.Unlock()

	log.Printf("[Scheduler] Stored report %s for %s: %d users, %d entries",
		id, rng, len(results), countEntries(results))
	return id, nil
}

// LastRun returns when a report was last stored, zero if never.
func (rs *ReportScheduler) LastRun() time.Time {
	rs.lastMu.Lock()
	defer rs.lastMu.Unlock()
	return rs.lastRun
}

// CurrentRange returns the range the next run will cover.
func (rs *ReportScheduler) CurrentRange() engine.DateRange {
	return rs.Handler.currentWeek()
}
