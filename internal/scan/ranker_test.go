package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dupescan/internal/models"
)

func TestRank_MarksBestPerAxis(t *testing.T) {
	items := map[string]*models.DuplicateItem{
		"/a": {Path: "/a", GroupID: "g1", FileSize: 100, Duration: 60, FPS: 30, BitrateKbps: 2000, AudioSampleRate: 48000, FrameSize: 1920 * 1080},
		"/b": {Path: "/b", GroupID: "g1", FileSize: 50, Duration: 61, FPS: 25, BitrateKbps: 2500, AudioSampleRate: 44100, FrameSize: 1280 * 720},
	}

	Rank(items)

	a, b := items["/a"], items["/b"]
	assert.False(t, a.BestSize)
	assert.True(t, b.BestSize) // smallest file wins the size axis
	assert.True(t, b.BestDuration)
	assert.False(t, a.BestDuration)
	assert.True(t, a.BestFPS)
	assert.True(t, b.BestBitrate)
	assert.True(t, a.BestAudioSampleRate)
	assert.True(t, a.BestFrameSize)
	assert.False(t, b.BestFrameSize)
}

func TestRank_TiesFlagEveryItem(t *testing.T) {
	items := map[string]*models.DuplicateItem{
		"/a": {Path: "/a", GroupID: "g1", FileSize: 100, Duration: 60, FPS: 30},
		"/b": {Path: "/b", GroupID: "g1", FileSize: 100, Duration: 60, FPS: 30},
	}

	Rank(items)

	for _, item := range items {
		assert.True(t, item.BestSize)
		assert.True(t, item.BestDuration)
		assert.True(t, item.BestFPS)
	}
}

func TestRank_GroupsRankedIndependently(t *testing.T) {
	items := map[string]*models.DuplicateItem{
		"/a": {Path: "/a", GroupID: "g1", FileSize: 10},
		"/b": {Path: "/b", GroupID: "g1", FileSize: 20},
		"/c": {Path: "/c", GroupID: "g2", FileSize: 30},
	}

	Rank(items)

	assert.True(t, items["/a"].BestSize)
	assert.False(t, items["/b"].BestSize)
	// Alone in its group, /c is trivially best.
	assert.True(t, items["/c"].BestSize)
}

func TestRank_ImagesSkipVideoAxes(t *testing.T) {
	items := map[string]*models.DuplicateItem{
		"/a.png": {Path: "/a.png", GroupID: "g1", IsImage: true, FileSize: 10, FrameSize: 500},
		"/b.png": {Path: "/b.png", GroupID: "g1", IsImage: true, FileSize: 20, FrameSize: 900},
	}

	Rank(items)

	assert.True(t, items["/a.png"].BestSize)
	assert.True(t, items["/b.png"].BestFrameSize)
	assert.False(t, items["/a.png"].BestDuration)
	assert.False(t, items["/b.png"].BestDuration)
	assert.False(t, items["/a.png"].BestFPS)
}
