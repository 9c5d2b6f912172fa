package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"dupescan/internal/structures"
)

// TypeEnum routes log lines to per-concern files.
type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeScan
	TypeDecode
)

func (t TypeEnum) fileName() string {
	switch t {
	case TypeScan:
		return "scan.log"
	case TypeDecode:
		return "decode.log"
	default:
		return "app.log"
	}
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type logProvider struct {
	loggers map[TypeEnum]*zerolog.Logger
	files   []*os.File
}

// NewLogProvider opens one log file per concern under the configured
// directory. In debug mode lines are echoed to the console as well.
func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	if err := os.MkdirAll(conf.Logger.Dir, 0755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}

	p := &logProvider{loggers: make(map[TypeEnum]*zerolog.Logger)}
	for _, t := range []TypeEnum{TypeApp, TypeScan, TypeDecode} {
		path := filepath.Join(conf.Logger.Dir, t.fileName())
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		p.files = append(p.files, file)

		var w zerolog.LevelWriter = zerolog.MultiLevelWriter(file)
		if conf.Debug {
			console := zerolog.ConsoleWriter{Out: os.Stderr}
			w = zerolog.MultiLevelWriter(file, console)
		}
		l := zerolog.New(w).Level(level).With().Timestamp().Logger()
		p.loggers[t] = &l
	}
	return p, nil
}

func (p *logProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	p.loggers[t].Error().Msgf(format, args...)
}

func (p *logProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	p.loggers[t].Warn().Msgf(format, args...)
}

func (p *logProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	p.loggers[t].Info().Msgf(format, args...)
}

func (p *logProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	p.loggers[t].Debug().Msgf(format, args...)
}

func (p *logProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	p.loggers[t].Fatal().Msgf(format, args...)
}

func (p *logProvider) Close() {
	for _, f := range p.files {
		f.Close()
	}
	p.files = nil
}
