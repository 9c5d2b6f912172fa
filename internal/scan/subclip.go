package scan

import (
	"fmt"
	"sort"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/structures"
)

// SubClipMatcher locates videos whose full fingerprint sequence appears
// as a contiguous window inside a longer video's sequence.
type SubClipMatcher struct {
	conf   *structures.Config
	logger providers.Logger
}

func NewSubClipMatcher(conf *structures.Config, logger providers.Logger) *SubClipMatcher {
	return &SubClipMatcher{conf: conf, logger: logger}
}

type sequence struct {
	keys    []float64
	vectors [][]byte
}

// orderedSequence lists a record's fingerprints sorted by key.
func orderedSequence(r *models.FileRecord) sequence {
	keys := make([]float64, 0, len(r.Fingerprints))
	for k, v := range r.Fingerprints {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Float64s(keys)
	vectors := make([][]byte, len(keys))
	for i, k := range keys {
		vectors[i] = r.Fingerprints[k]
	}
	return sequence{keys: keys, vectors: vectors}
}

// FindAll scans every ordered (main, sub) pair of videos where main runs
// longer than sub.
func (m *SubClipMatcher) FindAll(records []*models.FileRecord, tokens *Tokens) []models.SubClipMatch {
	scan := &m.conf.Scan
	limit := 1 - scan.Percent/100

	var candidates []*models.FileRecord
	for _, r := range records {
		if r.IsImage || r.MediaInfo == nil || r.FingerprintCount() < len(scan.Positions) {
			continue
		}
		candidates = append(candidates, r)
	}

	sequences := make(map[string]sequence, len(candidates))
	for _, r := range candidates {
		sequences[r.Path] = orderedSequence(r)
	}

	var matches []models.SubClipMatch
	seen := make(map[string]struct{})

	for _, main := range candidates {
		if tokens.Canceled() {
			break
		}
		if !tokens.WaitIfPaused() {
			break
		}
		for _, sub := range candidates {
			if main == sub || main.Duration() <= sub.Duration() {
				continue
			}
			matches = m.matchPair(sequences[main.Path], sequences[sub.Path], main, sub, limit, seen, matches)
		}
	}
	return matches
}

func (m *SubClipMatcher) matchPair(tm, ts sequence, main, sub *models.FileRecord, limit float64, seen map[string]struct{}, matches []models.SubClipMatch) []models.SubClipMatch {
	scan := &m.conf.Scan
	s := len(ts.vectors)
	if s < 1 || len(tm.vectors) < s {
		return matches
	}

	for start := 0; start+s <= len(tm.vectors); start++ {
		if !m.windowMatches(tm.vectors[start:start+s], ts.vectors, limit, scan.IgnoreBlackPixels, scan.IgnoreWhitePixels) {
			continue
		}
		times := append([]float64(nil), tm.keys[start:start+s]...)
		key := emissionKey(main.Path, sub.Path, times)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matches = append(matches, models.SubClipMatch{
			MainPath:        main.Path,
			SubPath:         sub.Path,
			MatchStartTimes: times,
		})
	}
	return matches
}

// windowMatches requires every aligned position to stay under the limit.
func (m *SubClipMatcher) windowMatches(window, sub [][]byte, limit float64, ignoreBlack, ignoreWhite bool) bool {
	for i := range sub {
		d, ok := models.GrayDistance(window[i], sub[i], ignoreBlack, ignoreWhite)
		if !ok || d > limit {
			return false
		}
	}
	return true
}

func emissionKey(mainPath, subPath string, times []float64) string {
	return fmt.Sprintf("%s|%s|%v", mainPath, subPath, times)
}
