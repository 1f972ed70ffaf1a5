package observability

import (
	"sync"
	"time"
)

// Tracker counts pipeline runs as they start and finish.
type Tracker struct {
	mu           sync.RWMutex
	started      time.Time
	active       int
	total        int
	failed       int
	lastRunID    string
	lastStatus   string
	lastFinished time.Time
}

// Snapshot is a copy of the tracker's state.
type Snapshot struct {
	Active       int
	Total        int
	Failed       int
	LastRunID    string
	LastStatus   string
	LastFinished time.Time
	Uptime       time.Duration
}

func NewTracker() *Tracker {
	return &Tracker{started: time.Now()}
}

// Begin marks a run as in flight.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active++
}

// End records a finished run. Any status other than "succeeded" counts as a failure.
func (t *Tracker) End(runID, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active > 0 {
		t.active--
	}
	t.total++
	if status != "succeeded" {
		t.failed++
	}
	t.lastRunID = runID
	t.lastStatus = status
	t.lastFinished = time.Now()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		Active:       t.active,
		Total:        t.total,
		Failed:       t.failed,
		LastRunID:    t.lastRunID,
		LastStatus:   t.lastStatus,
		LastFinished: t.lastFinished,
		Uptime:       time.Since(t.started),
	}
}
