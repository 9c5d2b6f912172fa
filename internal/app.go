package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/scan"
	"dupescan/internal/structures"
)

// App runs one scan from the command line: optional metrics listener,
// signal-driven cancellation, JSON report on stdout.
type App struct {
	conf      *structures.Config
	engine    *scan.Engine
	logger    providers.Logger
	webServer *http.Server
}

type scanReport struct {
	Duplicates interface{} `json:"duplicates"`
	SubClips   interface{} `json:"subClips,omitempty"`
}

// logSink forwards engine events into the scan log.
type logSink struct {
	logger providers.Logger
}

func (s *logSink) Progress(ev scan.ProgressEvent) {
	s.logger.Debugf(providers.TypeScan, "Progress %d/%d (%s) elapsed=%s remaining=%s",
		ev.Processed, ev.Total, ev.CurrentPath, ev.Elapsed.Round(time.Second), ev.Remaining.Round(time.Second))
}

func (s *logSink) Lifecycle(ev scan.LifecycleEvent) {
	s.logger.Infof(providers.TypeScan, "Phase: %s", ev)
}

func NewApp(engine *scan.Engine, conf *structures.Config, logger providers.Logger) (*App, error) {
	app := &App{conf: conf, engine: engine, logger: logger}
	engine.SetEventSink(&logSink{logger: logger})

	if conf.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		app.webServer = &http.Server{
			Addr:         conf.Metrics.Host + ":" + strconv.Itoa(conf.Metrics.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
	}
	return app, nil
}

// Run executes the requested scan and blocks until it finishes or a
// shutdown signal arrives.
func (a *App) Run(flags *structures.CliFlags) error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)

	if a.webServer != nil {
		go func() {
			a.logger.Infof(providers.TypeApp, "Serving metrics on %s", a.webServer.Addr)
			if err := a.webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Errorf(providers.TypeApp, "Metrics server error: %s", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-stop
		a.logger.Infof(providers.TypeApp, "Signal %s received, stopping scan", sig)
		a.engine.Stop()
	}()

	report, err := a.runScan(flags)
	if err != nil {
		return err
	}

	if a.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.webServer.Shutdown(ctx); err != nil {
			a.logger.Warnf(providers.TypeApp, "Metrics server shutdown: %s", err)
		}
	}

	if report == nil {
		a.logger.Infof(providers.TypeApp, "Scan aborted")
		return nil
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(out))
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

func (a *App) runScan(flags *structures.CliFlags) (*scanReport, error) {
	var items map[string]*models.DuplicateItem
	var err error
	if flags.CompareOnly {
		items, err = a.engine.StartCompare()
	} else {
		items, err = a.engine.StartSearch()
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		// Aborted mid-flight.
		return nil, nil
	}

	report := &scanReport{Duplicates: items}
	if flags.SubClips {
		subClips, err := a.engine.FindSubClips()
		if err != nil {
			return nil, err
		}
		report.SubClips = subClips
	}
	return report, nil
}
