package scan

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/structures"
)

// Comparator runs the pairwise duplicate detection over a scan set and
// folds matches into groups. Group mutation happens under a single lock;
// the pair loop itself is fanned out across workers, each owning one
// outer index at a time.
type Comparator struct {
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	mu     sync.Mutex
	groups map[string]*models.DuplicateItem
}

func NewComparator(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Comparator {
	return &Comparator{conf: conf, logger: logger, metrics: metrics}
}

// EligibleRecords filters catalog records down to the comparison set.
func EligibleRecords(records []*models.FileRecord, positions []structures.PositionSetting) []*models.FileRecord {
	out := make([]*models.FileRecord, 0, len(records))
	for _, r := range records {
		if r.Invalid || r.MediaInfo == nil || r.Flags.Has(models.FlagThumbnailError) {
			continue
		}
		if !r.IsImage && r.FingerprintCount() < len(positions) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Run compares every unordered pair and returns the duplicate items
// keyed by path.
func (c *Comparator) Run(scanSet []*models.FileRecord, tokens *Tokens, tracker *Tracker) map[string]*models.DuplicateItem {
	c.groups = make(map[string]*models.DuplicateItem)

	limit := 1 - c.conf.Scan.Percent/100
	var cutoff time.Time
	if c.conf.Scan.EnableTimeLimitedScan {
		cutoff = time.Now().Add(-time.Duration(c.conf.Scan.TimeLimitSeconds) * time.Second)
	}

	hardlinks := c.hardlinkIndex(scanSet)

	workers := c.conf.Scan.MaxDegreeOfParallelism
	if workers < 1 {
		workers = 1
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if !tokens.WaitIfPaused() {
					return
				}
				i := int(next.Inc()) - 1
				if i >= len(scanSet) {
					return
				}
				c.compareAgainst(scanSet, i, limit, cutoff, hardlinks)
				c.metrics.AddPairsCompared(len(scanSet) - i - 1)
				tracker.Step(scanSet[i].Path)
			}
		}()
	}
	wg.Wait()

	c.metrics.SetDuplicateGroups(countGroups(c.groups))
	return c.groups
}

func (c *Comparator) compareAgainst(scanSet []*models.FileRecord, i int, limit float64, cutoff time.Time, hardlinks map[string]*roaring.Bitmap) {
	a := scanSet[i]
	for j := i + 1; j < len(scanSet); j++ {
		b := scanSet[j]

		if !cutoff.IsZero() && (a.DateModified.Before(cutoff) || b.DateModified.Before(cutoff)) {
			continue
		}
		if a.IsImage != b.IsImage {
			continue
		}
		if !a.IsImage && !durationsComparable(a.Duration(), b.Duration(), c.conf.Scan.PercentDurationDifference) {
			continue
		}

		distance, flipped, ok := c.pairDistance(a, b, limit)
		if !ok {
			continue
		}
		if c.conf.Scan.ExcludeHardlinks && sameHardlink(hardlinks, a, b, i, j) {
			continue
		}
		c.recordMatch(a, b, distance, flipped)
	}
}

// durationsComparable applies the duration-ratio prefilter: the ratio of
// the two durations must stay within percentDifference of 100%.
func durationsComparable(da, db, percentDifference float64) bool {
	if db == 0 {
		return false
	}
	r := da / db * 100
	return r >= 100-percentDifference && r <= 100+percentDifference
}

// pairDistance computes the similarity distance for a pair, optionally
// also against A's horizontally mirrored fingerprints. flipped reports
// that the mirrored comparison was a strictly better match.
func (c *Comparator) pairDistance(a, b *models.FileRecord, limit float64) (distance float64, flipped bool, ok bool) {
	scan := &c.conf.Scan

	distance, matched := c.distance(a, b, a.Fingerprints, limit)
	if scan.CompareHorizontallyFlipped {
		flippedDistance, flippedMatched := c.distance(a, b, models.FlipFingerprints(a.Fingerprints), limit)
		if flippedMatched && (!matched || flippedDistance < distance) {
			return flippedDistance, true, true
		}
	}
	return distance, false, matched
}

// distance computes the record-pair distance using the given fingerprint
// source for a. Images compare their single key-0 vector; videos compare
// every configured position and reject early when any single position
// exceeds the limit.
func (c *Comparator) distance(a, b *models.FileRecord, src map[float64][]byte, limit float64) (float64, bool) {
	scan := &c.conf.Scan

	if a.IsImage {
		va, oka := lookup(src, 0)
		vb, okb := b.Fingerprint(0)
		if !oka || !okb {
			return 0, false
		}
		d, ok := models.GrayDistance(va, vb, scan.IgnoreBlackPixels, scan.IgnoreWhitePixels)
		if !ok {
			return 0, false
		}
		return d, d <= limit
	}

	var sum float64
	valid := 0
	for _, ps := range scan.Positions {
		ka := models.PositionKey(ps, a.Duration())
		kb := models.PositionKey(ps, b.Duration())
		va, oka := lookup(src, ka)
		vb, okb := b.Fingerprint(kb)
		if !oka || !okb {
			return 0, false
		}
		d, ok := models.GrayDistance(va, vb, scan.IgnoreBlackPixels, scan.IgnoreWhitePixels)
		if !ok {
			return 0, false
		}
		if d > limit {
			// A single distant position disqualifies the pair outright;
			// averaging must not dilute it.
			return d, false
		}
		sum += d
		valid++
	}
	if valid == 0 {
		return 0, false
	}
	mean := sum / float64(valid)
	return mean, !math.IsNaN(mean) && mean <= limit
}

func lookup(src map[float64][]byte, key float64) ([]byte, bool) {
	v, ok := src[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// hardlinkIndex groups scan-set indices by (device, inode) so matched
// pairs can be dropped when both sides are the same on-disk file. Only
// files with a link count above one enter the index.
func (c *Comparator) hardlinkIndex(scanSet []*models.FileRecord) map[string]*roaring.Bitmap {
	if !c.conf.Scan.ExcludeHardlinks {
		return nil
	}
	index := make(map[string]*roaring.Bitmap)
	for i, r := range scanSet {
		key, ok := inodeKey(r.Path)
		if !ok {
			continue
		}
		bm, ok := index[key]
		if !ok {
			bm = roaring.New()
			index[key] = bm
		}
		bm.Add(uint32(i))
	}
	return index
}

// sameHardlink gates on the cheap equalities (size and duration) before
// consulting the inode index.
func sameHardlink(index map[string]*roaring.Bitmap, a, b *models.FileRecord, i, j int) bool {
	if len(index) == 0 {
		return false
	}
	if a.FileSize != b.FileSize || a.Duration() != b.Duration() {
		return false
	}
	for _, bm := range index {
		if bm.Contains(uint32(i)) {
			return bm.Contains(uint32(j))
		}
	}
	return false
}

func inodeString(dev, ino uint64) string {
	return fmt.Sprintf("%d:%d", dev, ino)
}

// recordMatch folds one matched pair into the group map. The FLIPPED flag
// lands only on the item newly added by this pair, and a merge rewrites
// group IDs without touching recorded distances.
func (c *Comparator) recordMatch(a, b *models.FileRecord, distance float64, flipped bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	itemA, okA := c.groups[a.Path]
	itemB, okB := c.groups[b.Path]

	switch {
	case okA && okB:
		if itemA.GroupID != itemB.GroupID {
			stale := itemB.GroupID
			for _, item := range c.groups {
				if item.GroupID == stale {
					item.GroupID = itemA.GroupID
				}
			}
		}
	case okA:
		c.groups[b.Path] = models.NewDuplicateItem(b, itemA.GroupID, distance, flipped)
	case okB:
		c.groups[a.Path] = models.NewDuplicateItem(a, itemB.GroupID, distance, flipped)
	default:
		groupID := uuid.NewString()
		c.groups[a.Path] = models.NewDuplicateItem(a, groupID, distance, false)
		c.groups[b.Path] = models.NewDuplicateItem(b, groupID, distance, flipped)
	}
}

func countGroups(items map[string]*models.DuplicateItem) int {
	seen := make(map[string]struct{})
	for _, item := range items {
		seen[item.GroupID] = struct{}{}
	}
	return len(seen)
}
