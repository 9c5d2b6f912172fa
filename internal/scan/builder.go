package scan

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"dupescan/internal/media"
	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/scan/interfaces"
	"dupescan/internal/structures"
)

// Builder samples fingerprints for every record in the scan list, fanned
// out over maxDegreeOfParallelism workers. It never returns per-file
// errors; failures become record flags and the record is marked invalid
// for this scan.
type Builder struct {
	conf    *structures.Config
	decoder interfaces.DecoderInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	containsRe    []*regexp.Regexp
	notContainsRe []*regexp.Regexp
}

func NewBuilder(conf *structures.Config, decoder interfaces.DecoderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *Builder {
	return &Builder{
		conf:          conf,
		decoder:       decoder,
		logger:        logger,
		metrics:       metrics,
		containsRe:    compileWildcards(conf.Scan.PathContains),
		notContainsRe: compileWildcards(conf.Scan.PathNotContains),
	}
}

// compileWildcards turns glob-ish patterns (* and ?) into unanchored
// regexps matched case-insensitively against the full path.
func compileWildcards(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		expr := regexp.QuoteMeta(strings.ToLower(p))
		expr = strings.ReplaceAll(expr, `\*`, `.*`)
		expr = strings.ReplaceAll(expr, `\?`, `.`)
		re, err := regexp.Compile(expr)
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}

func matchesAny(res []*regexp.Regexp, path string) bool {
	lower := strings.ToLower(path)
	for _, re := range res {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func (b *Builder) Run(records []*models.FileRecord, tokens *Tokens, tracker *Tracker) {
	workers := b.conf.Scan.MaxDegreeOfParallelism
	if workers < 1 {
		workers = 1
	}

	work := make(chan *models.FileRecord)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range work {
				// Keep draining after cancellation so the feeder never
				// blocks on the channel.
				if !tokens.WaitIfPaused() {
					continue
				}
				b.process(record)
				tracker.Step(record.Path)
			}
		}()
	}

	for _, record := range records {
		if tokens.Canceled() {
			break
		}
		work <- record
	}
	close(work)
	wg.Wait()
}

func (b *Builder) process(r *models.FileRecord) {
	if !b.validate(r) {
		r.Invalid = true
		return
	}

	if r.Flags.AnyError() {
		if !b.conf.Scan.AlwaysRetryFailedSampling {
			r.Invalid = true
			return
		}
		r.Flags.Clear(models.FlagMetadataError)
		r.Flags.Clear(models.FlagThumbnailError)
		r.ClearFingerprints()
	}

	if b.isComplete(r) {
		return
	}

	if r.IsImage {
		b.buildImage(r)
	} else {
		b.buildVideo(r)
	}
	if !r.Invalid {
		b.metrics.IncFingerprintsBuilt()
	}
}

// validate re-applies the inclusion rules so records carried over from
// older scans cannot sneak past a changed configuration.
func (b *Builder) validate(r *models.FileRecord) bool {
	if r.Flags.Has(models.FlagManuallyExcluded) || r.Flags.Has(models.FlagTooDark) {
		return false
	}
	if r.IsImage && !b.conf.Scan.IncludeImages {
		return false
	}
	if !r.IsImage && !models.IsVideoPath(r.Path) {
		return false
	}

	scan := &b.conf.Scan
	for _, black := range scan.Blacklist {
		if FolderMatches(black, r.Folder()) {
			return false
		}
	}
	if scan.FilterByFileSize {
		sizeMB := r.FileSize / (1024 * 1024)
		if sizeMB < int64(scan.MinSizeMB) {
			return false
		}
		if scan.MaxSizeMB > 0 && sizeMB > int64(scan.MaxSizeMB) {
			return false
		}
	}
	if scan.FilterByFilePathContains && len(b.containsRe) > 0 && !matchesAny(b.containsRe, r.Path) {
		return false
	}
	if scan.FilterByFilePathNotContains && matchesAny(b.notContainsRe, r.Path) {
		return false
	}

	if _, err := os.Lstat(r.Path); err != nil {
		// A vanished file stays comparable on its stored fingerprints
		// when the configuration says to keep it.
		return scan.IncludeNonExistingFiles && b.isComplete(r)
	}
	if scan.IgnoreReparsePoints {
		resolved, err := filepath.EvalSymlinks(r.Path)
		if err != nil || resolved != r.Path {
			return false
		}
	}
	return true
}

// isComplete reports whether the record already carries everything the
// current settings ask for.
func (b *Builder) isComplete(r *models.FileRecord) bool {
	if r.IsImage {
		_, ok := r.Fingerprint(0)
		return ok
	}
	if r.MediaInfo == nil || r.MediaInfo.Duration <= 0 {
		return false
	}
	for _, key := range models.PositionKeys(b.conf.Scan.Positions, r.MediaInfo.Duration) {
		if _, ok := r.Fingerprint(key); !ok {
			return false
		}
	}
	return true
}

func (b *Builder) buildImage(r *models.FileRecord) {
	gray, width, height, err := media.ImageFingerprint(r.Path)
	if err != nil {
		b.logger.Warnf(providers.TypeScan, "Image fingerprint failed for %s: %s", r.Path, err)
		r.Flags.Set(models.FlagThumbnailError)
		r.Invalid = true
		b.metrics.IncExtractionErrors("thumbnail")
		return
	}

	r.MediaInfo = &models.MediaInfo{Streams: []models.StreamInfo{{Width: width, Height: height}}}
	r.SetFingerprint(0, gray)

	if models.IsTooDark(gray) {
		b.logger.Debugf(providers.TypeScan, "Image too dark to compare: %s", r.Path)
		r.Flags.Set(models.FlagTooDark)
		r.Invalid = true
	}
}

func (b *Builder) buildVideo(r *models.FileRecord) {
	if r.MediaInfo == nil {
		info, err := b.decoder.Probe(r.Path)
		if err != nil {
			b.logger.Warnf(providers.TypeScan, "Probe failed for %s: %s", r.Path, err)
			r.Flags.Set(models.FlagMetadataError)
			r.Invalid = true
			b.metrics.IncExtractionErrors("metadata")
			return
		}
		r.MediaInfo = info
	}

	positions := b.conf.Scan.Positions
	if len(positions) == 0 {
		if len(r.Fingerprints) > 0 {
			r.ClearFingerprints()
		}
		return
	}
	if r.MediaInfo.Duration <= 0 {
		r.Flags.Set(models.FlagMetadataError)
		r.Invalid = true
		b.metrics.IncExtractionErrors("metadata")
		return
	}

	duration := r.MediaInfo.Duration
	var missingKeys []float64
	var missingRel []float64
	for _, key := range models.PositionKeys(positions, duration) {
		if _, ok := r.Fingerprint(key); ok {
			continue
		}
		missingKeys = append(missingKeys, key)
		missingRel = append(missingRel, key/duration)
	}
	if len(missingKeys) == 0 {
		return
	}

	thumbs, err := b.decoder.GrayThumbnails(r.Path, duration, missingRel)
	if err != nil {
		b.logger.Warnf(providers.TypeScan, "Thumbnail extraction failed for %s: %s", r.Path, err)
		r.Flags.Set(models.FlagThumbnailError)
		r.Invalid = true
		b.metrics.IncExtractionErrors("thumbnail")
		return
	}
	for i, gray := range thumbs {
		r.SetFingerprint(missingKeys[i], gray)
	}
}
