package structures

import "time"

// PositionType selects how a sampling position is resolved against a
// file's duration.
type PositionType string

const (
	PositionPercentage      PositionType = "percentage"
	PositionOffsetFromStart PositionType = "offsetFromStart"
	PositionOffsetFromEnd   PositionType = "offsetFromEnd"
)

// PositionSetting describes one point of a file to sample a thumbnail at.
// Value is a percentage for PositionPercentage and seconds otherwise.
type PositionSetting struct {
	Type  PositionType `yaml:"type" validate:"required|in:percentage,offsetFromStart,offsetFromEnd"`
	Value float64      `yaml:"value" validate:"min:0"`
}

type ScanConfig struct {
	IncludeList           []string `yaml:"includeList" validate:"required"`
	Blacklist             []string `yaml:"blacklist"`
	IncludeSubdirectories bool     `yaml:"includeSubdirectories"`
	IncludeImages         bool     `yaml:"includeImages"`
	IgnoreReadOnlyFolders bool     `yaml:"ignoreReadOnlyFolders"`
	IgnoreReparsePoints   bool     `yaml:"ignoreReparsePoints"`

	ScanAgainstEntireDatabase bool `yaml:"scanAgainstEntireDatabase"`
	IncludeNonExistingFiles   bool `yaml:"includeNonExistingFiles"`

	FilterByFileSize bool `yaml:"filterByFileSize"`
	MinSizeMB        int  `yaml:"minSizeMB"`
	MaxSizeMB        int  `yaml:"maxSizeMB"`

	FilterByFilePathContains    bool     `yaml:"filterByFilePathContains"`
	PathContains                []string `yaml:"pathContains"`
	FilterByFilePathNotContains bool     `yaml:"filterByFilePathNotContains"`
	PathNotContains             []string `yaml:"pathNotContains"`

	Positions []PositionSetting `yaml:"positions"`

	Percent                    float64 `yaml:"percent" validate:"min:0|max:100"`
	PercentDurationDifference  float64 `yaml:"percentDurationDifference"`
	IgnoreBlackPixels          bool    `yaml:"ignoreBlackPixels"`
	IgnoreWhitePixels          bool    `yaml:"ignoreWhitePixels"`
	CompareHorizontallyFlipped bool    `yaml:"compareHorizontallyFlipped"`
	ExcludeHardlinks           bool    `yaml:"excludeHardlinks"`

	EnableTimeLimitedScan bool `yaml:"enableTimeLimitedScan"`
	TimeLimitSeconds      int  `yaml:"timeLimitSeconds"`

	AlwaysRetryFailedSampling bool `yaml:"alwaysRetryFailedSampling"`
	MaxDegreeOfParallelism    int  `yaml:"maxDegreeOfParallelism"`
}

type DecoderConfig struct {
	FFmpegPath               string   `yaml:"ffmpegPath"`
	FFprobePath              string   `yaml:"ffprobePath"`
	HardwareAccelerationMode string   `yaml:"hardwareAccelerationMode"`
	CustomFFArguments        []string `yaml:"customFFArguments"`
	UseNativeBinding         bool     `yaml:"useNativeBinding"`
	ExtendedFFToolsLogging   bool     `yaml:"extendedFFToolsLogging"`
}

type Persistence struct {
	DatabaseFolder string        `yaml:"databaseFolder" validate:"required|unixPath"`
	SaveInterval   time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Scan        ScanConfig    `yaml:"scan"`
	Decoder     DecoderConfig `yaml:"decoder"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath  string
	DebugMode   bool
	CompareOnly bool
	SubClips    bool
}
