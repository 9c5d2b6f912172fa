package providers

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"dupescan/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("logger.level", "DUPESCAN_LOG_LEVEL")
	v.BindEnv("persistence.databaseFolder", "DUPESCAN_DB_FOLDER")
	v.BindEnv("persistence.saveInterval", "DUPESCAN_SAVE_INTERVAL")
	v.BindEnv("scan.maxDegreeOfParallelism", "DUPESCAN_PARALLELISM")
	v.BindEnv("decoder.ffmpegPath", "DUPESCAN_FFMPEG")
	v.BindEnv("decoder.ffprobePath", "DUPESCAN_FFPROBE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "DupeScanDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func applyDefaults(conf *structures.Config) {
	if conf.Scan.MaxDegreeOfParallelism <= 0 {
		conf.Scan.MaxDegreeOfParallelism = runtime.NumCPU()
	}
	if conf.Scan.Percent == 0 {
		conf.Scan.Percent = 96
	}
	if conf.Scan.PercentDurationDifference == 0 {
		conf.Scan.PercentDurationDifference = 20
	}
	if len(conf.Scan.Positions) == 0 {
		conf.Scan.Positions = []structures.PositionSetting{
			{Type: structures.PositionPercentage, Value: 25},
			{Type: structures.PositionPercentage, Value: 50},
			{Type: structures.PositionPercentage, Value: 75},
		}
	}
	if conf.Decoder.FFmpegPath == "" {
		conf.Decoder.FFmpegPath = "ffmpeg"
	}
	if conf.Decoder.FFprobePath == "" {
		conf.Decoder.FFprobePath = "ffprobe"
	}
}
