package scan

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"dupescan/internal/providers"
	"dupescan/internal/structures"
)

// Scheduler persists the catalog on an interval while a long build phase
// runs, so a crash costs at most one interval of sampling work.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	catalogFile *CatalogFile
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func NewScheduler(config *structures.Config, logger providers.Logger, catalogFile *CatalogFile) *Scheduler {
	return &Scheduler{
		config:      config,
		logger:      logger,
		catalogFile: catalogFile,
	}
}

func (s *Scheduler) Start() {
	s.cron = gron.New()
	interval := s.config.Persistence.SaveInterval
	if interval < time.Second {
		interval = time.Minute
	}

	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.catalogFile.Save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting catalog: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted catalog to %s", s.catalogFile.Path())
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// Persist saves immediately, serialized against the interval job.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if err := s.catalogFile.Save(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting catalog: %s", err)
		return err
	}
	return nil
}
