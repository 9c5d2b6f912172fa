package scan

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// LifecycleEvent marks phase boundaries of a scan.
type LifecycleEvent int

const (
	EventFilesEnumerated LifecycleEvent = iota
	EventBuildingHashesDone
	EventThumbnailsRetrieved
	EventScanDone
	EventScanAborted
	EventDatabaseCleaned
)

func (e LifecycleEvent) String() string {
	switch e {
	case EventFilesEnumerated:
		return "FilesEnumerated"
	case EventBuildingHashesDone:
		return "BuildingHashesDone"
	case EventThumbnailsRetrieved:
		return "ThumbnailsRetrieved"
	case EventScanDone:
		return "ScanDone"
	case EventScanAborted:
		return "ScanAborted"
	case EventDatabaseCleaned:
		return "DatabaseCleaned"
	}
	return "Unknown"
}

type ProgressEvent struct {
	Processed   int
	Total       int
	CurrentPath string
	Elapsed     time.Duration
	Remaining   time.Duration
}

// EventSink receives progress and lifecycle callbacks. Progress events
// may arrive out of order with respect to file completion; CurrentPath is
// informational only.
type EventSink interface {
	Progress(ev ProgressEvent)
	Lifecycle(ev LifecycleEvent)
}

type nopSink struct{}

func (nopSink) Progress(ProgressEvent)   {}
func (nopSink) Lifecycle(LifecycleEvent) {}

const (
	pausePollInterval = 50 * time.Millisecond
	progressInterval  = 300 * time.Millisecond
)

// Tokens carries the two cooperative flags every worker observes at unit
// boundaries, plus the accumulated pause time so ETA math can exclude it.
type Tokens struct {
	paused   atomic.Bool
	canceled atomic.Bool

	mu        sync.Mutex
	pausedAt  time.Time
	pausedAcc time.Duration
}

func NewTokens() *Tokens { return &Tokens{} }

func (t *Tokens) Pause() {
	if t.paused.CompareAndSwap(false, true) {
		t.mu.Lock()
		t.pausedAt = time.Now()
		t.mu.Unlock()
	}
}

func (t *Tokens) Resume() {
	if t.paused.CompareAndSwap(true, false) {
		t.mu.Lock()
		if !t.pausedAt.IsZero() {
			t.pausedAcc += time.Since(t.pausedAt)
			t.pausedAt = time.Time{}
		}
		t.mu.Unlock()
	}
}

// Cancel resumes first so paused workers can observe the flag and exit.
func (t *Tokens) Cancel() {
	t.Resume()
	t.canceled.Store(true)
}

func (t *Tokens) Canceled() bool { return t.canceled.Load() }
func (t *Tokens) Paused() bool   { return t.paused.Load() }

// Reset rearms the tokens for a new scan.
func (t *Tokens) Reset() {
	t.canceled.Store(false)
	t.paused.Store(false)
	t.mu.Lock()
	t.pausedAt = time.Time{}
	t.pausedAcc = 0
	t.mu.Unlock()
}

// PausedFor returns total time spent paused, including a pause still in
// progress.
func (t *Tokens) PausedFor() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	acc := t.pausedAcc
	if !t.pausedAt.IsZero() {
		acc += time.Since(t.pausedAt)
	}
	return acc
}

// WaitIfPaused blocks in 50ms slices while the pause flag is up. Returns
// false when the scan was canceled and the worker should exit.
func (t *Tokens) WaitIfPaused() bool {
	for t.paused.Load() {
		if t.canceled.Load() {
			return false
		}
		time.Sleep(pausePollInterval)
	}
	return !t.canceled.Load()
}

// Tracker counts completed work units and emits throttled progress
// events. Safe for concurrent Step calls.
type Tracker struct {
	total     int
	processed atomic.Int64
	started   time.Time
	tokens    *Tokens
	sink      EventSink

	mu       sync.Mutex
	lastEmit time.Time
}

func NewTracker(total int, tokens *Tokens, sink EventSink) *Tracker {
	if sink == nil {
		sink = nopSink{}
	}
	return &Tracker{
		total:   total,
		started: time.Now(),
		tokens:  tokens,
		sink:    sink,
	}
}

// Step records one completed unit. Events are throttled to one per 300ms,
// except for the final unit which always emits.
func (tr *Tracker) Step(currentPath string) {
	processed := int(tr.processed.Inc())
	final := processed >= tr.total

	tr.mu.Lock()
	now := time.Now()
	if !final && now.Sub(tr.lastEmit) < progressInterval {
		tr.mu.Unlock()
		return
	}
	tr.lastEmit = now
	tr.mu.Unlock()

	elapsed := time.Since(tr.started) - tr.tokens.PausedFor()
	remaining := time.Duration(float64(elapsed) * float64(tr.total-processed-1) / float64(processed+1))
	if remaining < 0 {
		remaining = 0
	}

	tr.sink.Progress(ProgressEvent{
		Processed:   processed,
		Total:       tr.total,
		CurrentPath: currentPath,
		Elapsed:     elapsed,
		Remaining:   remaining,
	})
}

func (tr *Tracker) Processed() int { return int(tr.processed.Load()) }
