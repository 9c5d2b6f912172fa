package scan

import "dupescan/internal/models"

// Rank marks, inside every duplicate group, the best item along each
// metric axis. Duration, fps, bitrate, audio sample rate and frame size
// prefer the maximum; size prefers the smallest file. Ties flag every
// tied item.
func Rank(items map[string]*models.DuplicateItem) {
	byGroup := make(map[string][]*models.DuplicateItem)
	for _, item := range items {
		byGroup[item.GroupID] = append(byGroup[item.GroupID], item)
	}

	for _, group := range byGroup {
		rankGroup(group)
	}
}

func rankGroup(group []*models.DuplicateItem) {
	if len(group) == 0 {
		return
	}

	minSize := group[0].FileSize
	var maxDuration, maxFPS float64
	var maxBitrate, maxSampleRate, maxFrameSize int
	for _, item := range group {
		if item.FileSize < minSize {
			minSize = item.FileSize
		}
		if item.FrameSize > maxFrameSize {
			maxFrameSize = item.FrameSize
		}
		if item.IsImage {
			continue
		}
		if item.Duration > maxDuration {
			maxDuration = item.Duration
		}
		if item.FPS > maxFPS {
			maxFPS = item.FPS
		}
		if item.BitrateKbps > maxBitrate {
			maxBitrate = item.BitrateKbps
		}
		if item.AudioSampleRate > maxSampleRate {
			maxSampleRate = item.AudioSampleRate
		}
	}

	for _, item := range group {
		item.BestSize = item.FileSize == minSize
		item.BestFrameSize = item.FrameSize == maxFrameSize
		if item.IsImage {
			continue
		}
		item.BestDuration = item.Duration == maxDuration
		item.BestFPS = item.FPS == maxFPS
		item.BestBitrate = item.BitrateKbps == maxBitrate
		item.BestAudioSampleRate = item.AudioSampleRate == maxSampleRate
	}
}
