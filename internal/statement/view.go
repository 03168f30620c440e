package statement

import (
	"log/slog"
	"sync"
)

// View holds the most recently installed report behind an epoch guard.
// Every refresh takes the next epoch before fetching; a refresh may only
// install its result while its epoch is still the newest issued, so a slow
// fetch can never overwrite the result of a newer one.
type View struct {
	mu     sync.Mutex
	epoch  uint64
	report *Report
	logger *slog.Logger
}

// NewView constructs an empty view.
func NewView(logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{logger: logger}
}

// Begin claims the next refresh epoch.
func (v *View) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.epoch++
	return v.epoch
}

// Install stores the report if epoch is still the latest issued. Stale
// results are dropped and logged.
func (v *View) Install(epoch uint64, report *Report) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if epoch != v.epoch {
		v.logger.Warn("discarding stale report refresh",
			slog.Uint64("epoch", epoch),
			slog.Uint64("latest", v.epoch))
		return false
	}
	v.report = report
	return true
}

// Invalidate drops the installed report, for failed fetch cycles: a store
// error must never leave a previous tree visible as if it were current.
func (v *View) Invalidate(epoch uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if epoch != v.epoch {
		return
	}
	v.report = nil
}

// Current returns the installed report, nil when none.
func (v *View) Current() *Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.report
}
