package models

import "dupescan/internal/structures"

// PositionKey derives the fingerprint map key, in seconds, for one
// position setting applied to a file of the given duration. Builder and
// comparator both derive keys through this function, so a key stored
// during sampling is found again during comparison for the same record.
func PositionKey(ps structures.PositionSetting, duration float64) float64 {
	var p float64
	switch ps.Type {
	case structures.PositionPercentage:
		p = ps.Value / 100
	case structures.PositionOffsetFromStart:
		if duration != 0 {
			p = ps.Value / duration
		}
	case structures.PositionOffsetFromEnd:
		if duration != 0 {
			p = (duration - ps.Value) / duration
		}
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return duration * p
}

// PositionKeys derives the key for every setting against one duration.
func PositionKeys(positions []structures.PositionSetting, duration float64) []float64 {
	keys := make([]float64, len(positions))
	for i, ps := range positions {
		keys[i] = PositionKey(ps, duration)
	}
	return keys
}
