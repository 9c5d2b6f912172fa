package scan

import (
	"sync"
	"time"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/structures"
)

func testConfig(dbFolder string) *structures.Config {
	return &structures.Config{
		Scan: structures.ScanConfig{
			IncludeSubdirectories: true,
			IncludeImages:         true,
			Positions: []structures.PositionSetting{
				{Type: structures.PositionPercentage, Value: 25},
				{Type: structures.PositionPercentage, Value: 50},
				{Type: structures.PositionPercentage, Value: 75},
			},
			Percent:                   96,
			PercentDurationDifference: 20,
			MaxDegreeOfParallelism:    2,
		},
		Persistence: structures.Persistence{
			DatabaseFolder: dbFolder,
			SaveInterval:   time.Minute,
		},
	}
}

// Metrics stay disabled in tests so promauto never registers twice.
func noopMetrics() providers.MetricsProviderInterface {
	return providers.NewMetricsProvider(&structures.Config{})
}

type recordingSink struct {
	mu        sync.Mutex
	progress  []ProgressEvent
	lifecycle []LifecycleEvent
}

func (s *recordingSink) Progress(ev ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, ev)
}

func (s *recordingSink) Lifecycle(ev LifecycleEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifecycle = append(s.lifecycle, ev)
}

func (s *recordingSink) lifecycleEvents() []LifecycleEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LifecycleEvent(nil), s.lifecycle...)
}

func (s *recordingSink) progressEvents() []ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ProgressEvent(nil), s.progress...)
}

func uniformGray(value byte) []byte {
	v := make([]byte, models.GraySize)
	for i := range v {
		v[i] = value
	}
	return v
}

// videoRecord builds an eligible video record fingerprinted with one
// uniform vector per configured position.
func videoRecord(conf *structures.Config, path string, duration float64, shade byte) *models.FileRecord {
	r := models.NewFileRecord(path, 1000, time.Now(), time.Now())
	r.MediaInfo = &models.MediaInfo{Duration: duration, FPS: 25, BitrateKbps: 1200, AudioSampleRate: 44100,
		Streams: []models.StreamInfo{{Width: 1280, Height: 720}}}
	for _, key := range models.PositionKeys(conf.Scan.Positions, duration) {
		r.SetFingerprint(key, uniformGray(shade))
	}
	return r
}

func imageRecord(path string, gray []byte) *models.FileRecord {
	r := models.NewFileRecord(path, 500, time.Now(), time.Now())
	r.IsImage = true
	r.MediaInfo = &models.MediaInfo{Streams: []models.StreamInfo{{Width: 100, Height: 100}}}
	r.SetFingerprint(0, gray)
	return r
}
