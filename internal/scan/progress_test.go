package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_CancelResumesFirst(t *testing.T) {
	tokens := NewTokens()
	tokens.Pause()
	require.True(t, tokens.Paused())

	done := make(chan struct{})
	go func() {
		// A paused worker must escape once Cancel is called.
		tokens.WaitIfPaused()
		close(done)
	}()

	tokens.Cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stayed paused after Cancel")
	}
	assert.True(t, tokens.Canceled())
	assert.False(t, tokens.Paused())
}

func TestTokens_WaitIfPausedReportsCancellation(t *testing.T) {
	tokens := NewTokens()
	assert.True(t, tokens.WaitIfPaused())

	tokens.Cancel()
	assert.False(t, tokens.WaitIfPaused())
}

func TestTokens_Reset(t *testing.T) {
	tokens := NewTokens()
	tokens.Pause()
	tokens.Cancel()
	tokens.Reset()

	assert.False(t, tokens.Canceled())
	assert.False(t, tokens.Paused())
	assert.Equal(t, time.Duration(0), tokens.PausedFor())
}

func TestTokens_PausedForAccumulates(t *testing.T) {
	tokens := NewTokens()
	tokens.Pause()
	time.Sleep(30 * time.Millisecond)
	tokens.Resume()

	paused := tokens.PausedFor()
	assert.GreaterOrEqual(t, paused, 30*time.Millisecond)

	// Resuming again without a pause adds nothing.
	tokens.Resume()
	assert.Equal(t, paused, tokens.PausedFor())
}

func TestTracker_ThrottlesIntermediateEvents(t *testing.T) {
	sink := &recordingSink{}
	tokens := NewTokens()
	tracker := NewTracker(100, tokens, sink)

	for i := 0; i < 99; i++ {
		tracker.Step("/some/file.mp4")
	}

	// 99 rapid steps collapse into at most a couple of events.
	events := sink.progressEvents()
	assert.NotEmpty(t, events)
	assert.Less(t, len(events), 5)
}

func TestTracker_FinalStepAlwaysEmits(t *testing.T) {
	sink := &recordingSink{}
	tokens := NewTokens()
	tracker := NewTracker(3, tokens, sink)

	tracker.Step("/a")
	tracker.Step("/b")
	tracker.Step("/c")

	events := sink.progressEvents()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, 3, last.Processed)
	assert.Equal(t, 3, last.Total)
}

func TestTracker_RemainingNeverNegative(t *testing.T) {
	sink := &recordingSink{}
	tokens := NewTokens()
	tracker := NewTracker(1, tokens, sink)

	tracker.Step("/only")

	events := sink.progressEvents()
	require.Len(t, events, 1)
	assert.GreaterOrEqual(t, events[0].Remaining, time.Duration(0))
}

func TestLifecycleEvent_String(t *testing.T) {
	assert.Equal(t, "FilesEnumerated", EventFilesEnumerated.String())
	assert.Equal(t, "ScanAborted", EventScanAborted.String())
	assert.Equal(t, "DatabaseCleaned", EventDatabaseCleaned.String())
}
