package scan

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/scan/interfaces"
	"dupescan/internal/structures"
)

// Engine is the control surface of the scan pipeline: it sequences the
// enumerate, build, compare and rank phases, owns the pause/cancel
// tokens, and reports lifecycle events to the registered sink.
type Engine struct {
	conf        *structures.Config
	catalog     *models.Catalog
	catalogFile *CatalogFile
	scheduler   *Scheduler
	decoder     interfaces.DecoderInterface
	cache       providers.CacheProviderInterface
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface

	tokens *Tokens

	mu      sync.Mutex
	sink    EventSink
	running bool
}

func NewEngine(
	conf *structures.Config,
	catalog *models.Catalog,
	catalogFile *CatalogFile,
	scheduler *Scheduler,
	decoder interfaces.DecoderInterface,
	cache providers.CacheProviderInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *Engine {
	return &Engine{
		conf:        conf,
		catalog:     catalog,
		catalogFile: catalogFile,
		scheduler:   scheduler,
		decoder:     decoder,
		cache:       cache,
		logger:      logger,
		metrics:     metrics,
		tokens:      NewTokens(),
		sink:        nopSink{},
	}
}

// SetEventSink registers the embedder's callback interface. Must be set
// before a scan starts.
func (e *Engine) SetEventSink(sink EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sink == nil {
		sink = nopSink{}
	}
	e.sink = sink
}

func (e *Engine) eventSink() EventSink {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink
}

func (e *Engine) Catalog() *models.Catalog { return e.catalog }

// Pause suspends all workers at their next unit boundary.
func (e *Engine) Pause() { e.tokens.Pause() }

// Resume releases paused workers.
func (e *Engine) Resume() { e.tokens.Resume() }

// Stop resumes first so paused workers can observe the cancellation,
// then signals it. It returns promptly; workers exit at their next
// boundary.
func (e *Engine) Stop() { e.tokens.Cancel() }

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return fmt.Errorf("scan already running")
	}
	e.running = true
	e.tokens.Reset()
	return nil
}

func (e *Engine) finish() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// StartSearch runs the full pipeline: load catalog, enumerate,
// fingerprint, persist, compare, rank. The returned items are the
// duplicate groups keyed by path; nil with no error means the scan was
// aborted.
func (e *Engine) StartSearch() (map[string]*models.DuplicateItem, error) {
	if err := e.decoder.Available(); err != nil {
		return nil, err
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.finish()

	sink := e.eventSink()

	if err := e.catalogFile.Load(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	e.catalog.ResetScanState()

	started := time.Now()
	enumerator := NewEnumerator(e.conf, e.catalog, e.logger, e.metrics)
	scanList := enumerator.Run(e.tokens)
	e.metrics.ObserveScanDuration("enumerate", time.Since(started))
	e.logger.Infof(providers.TypeScan, "Enumerated %d files under %d roots", len(scanList), len(e.conf.Scan.IncludeList))
	sink.Lifecycle(EventFilesEnumerated)

	if e.tokens.Canceled() {
		sink.Lifecycle(EventScanAborted)
		return nil, nil
	}

	started = time.Now()
	e.scheduler.Start()
	builder := NewBuilder(e.conf, e.decoder, e.logger, e.metrics)
	builder.Run(scanList, e.tokens, NewTracker(len(scanList), e.tokens, sink))
	e.scheduler.Stop()
	e.metrics.ObserveScanDuration("build", time.Since(started))

	if err := e.scheduler.Persist(); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	sink.Lifecycle(EventBuildingHashesDone)

	if e.tokens.Canceled() {
		sink.Lifecycle(EventScanAborted)
		return nil, nil
	}

	return e.compareAndRank(scanList, sink)
}

// StartCompare reruns comparison and ranking over the already-sampled
// catalog without enumerating or sampling files. The catalog snapshot is
// loaded from disk only when the in-memory catalog is empty.
func (e *Engine) StartCompare() (map[string]*models.DuplicateItem, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.finish()

	if e.catalog.Len() == 0 {
		if err := e.catalogFile.Load(); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		e.catalog.ResetScanState()
	}
	return e.compareAndRank(e.catalog.Records(), e.eventSink())
}

func (e *Engine) compareAndRank(scanList []*models.FileRecord, sink EventSink) (map[string]*models.DuplicateItem, error) {
	source := scanList
	if e.conf.Scan.ScanAgainstEntireDatabase {
		source = e.catalog.Records()
	}
	scanSet := EligibleRecords(source, e.conf.Scan.Positions)

	started := time.Now()
	comparator := NewComparator(e.conf, e.logger, e.metrics)
	items := comparator.Run(scanSet, e.tokens, NewTracker(len(scanSet), e.tokens, sink))
	e.metrics.ObserveScanDuration("compare", time.Since(started))

	if e.tokens.Canceled() {
		sink.Lifecycle(EventScanAborted)
		return nil, nil
	}

	Rank(items)
	e.logger.Infof(providers.TypeScan, "Found %d duplicates in %d groups over %d candidates",
		len(items), countGroups(items), len(scanSet))
	sink.Lifecycle(EventScanDone)
	return items, nil
}

// FindSubClips locates contained shorter clips across the catalog.
func (e *Engine) FindSubClips() ([]models.SubClipMatch, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.finish()

	if e.catalog.Len() == 0 {
		if err := e.catalogFile.Load(); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	matcher := NewSubClipMatcher(e.conf, e.logger)
	return matcher.FindAll(e.catalog.Records(), e.tokens), nil
}

// CleanDatabase evicts records for missing and blacklisted files and
// persists the shrunken catalog.
func (e *Engine) CleanDatabase() (int, error) {
	if e.catalog.Len() == 0 {
		if err := e.catalogFile.Load(); err != nil {
			return 0, fmt.Errorf("load catalog: %w", err)
		}
	}

	removed := e.catalog.Cleanup(e.conf.Scan.IncludeNonExistingFiles)
	for _, r := range e.catalog.Records() {
		for _, black := range e.conf.Scan.Blacklist {
			if FolderMatches(black, r.Folder()) {
				e.catalog.Remove(r.Path)
				removed++
				break
			}
		}
	}

	if err := e.scheduler.Persist(); err != nil {
		return removed, err
	}
	e.logger.Infof(providers.TypeApp, "Database cleaned, %d records evicted", removed)
	e.eventSink().Lifecycle(EventDatabaseCleaned)
	return removed, nil
}

// RetrieveThumbnails fetches a color preview frame for every duplicate
// item, memoized in the cache. Individual failures leave a nil buffer;
// the embedder renders its own placeholder.
func (e *Engine) RetrieveThumbnails(items map[string]*models.DuplicateItem) map[string][]byte {
	previews := make(map[string][]byte, len(items))
	for path, item := range items {
		seconds := item.Duration / 2
		key := previewKey(path, seconds)
		if buf, ok := e.cache.Get(key); ok {
			e.metrics.IncCacheHits()
			previews[path] = buf
			continue
		}
		e.metrics.IncCacheMisses()

		buf, err := e.decoder.ColorThumbnail(path, seconds)
		if err != nil {
			e.logger.Debugf(providers.TypeDecode, "Preview thumbnail failed for %s: %s", path, err)
			previews[path] = nil
			continue
		}
		e.cache.Set(key, buf)
		previews[path] = buf
	}
	e.eventSink().Lifecycle(EventThumbnailsRetrieved)
	return previews
}

func previewKey(path string, seconds float64) string {
	return path + "@" + strconv.FormatFloat(seconds, 'f', 3, 64)
}
