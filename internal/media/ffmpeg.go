package media

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/scan/interfaces"
	"dupescan/internal/structures"
)

// FFTools drives ffprobe/ffmpeg child processes. Each call launches a
// fresh process, so concurrent workers can extract independently.
type FFTools struct {
	conf   structures.DecoderConfig
	logger providers.Logger
}

func NewFFTools(conf *structures.Config, logger providers.Logger) interfaces.DecoderInterface {
	if conf.Decoder.UseNativeBinding {
		logger.Warnf(providers.TypeDecode, "Native decoder binding is not supported, using process launch")
	}
	return &FFTools{conf: conf.Decoder, logger: logger}
}

func (t *FFTools) Available() error {
	if _, err := exec.LookPath(t.conf.FFprobePath); err != nil {
		return fmt.Errorf("ffprobe not found: %w", err)
	}
	if _, err := exec.LookPath(t.conf.FFmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

// ffprobe's JSON output carries numbers as strings.
type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	SampleRate   string `json:"sample_rate"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

func (t *FFTools) Probe(path string) (*models.MediaInfo, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", t.logLevel(),
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	cmd := exec.Command(t.conf.FFprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.logger.Debugf(providers.TypeDecode, "Probing %s", path)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	return parseProbeOutput(stdout.Bytes())
}

func parseProbeOutput(data []byte) (*models.MediaInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("ffprobe output: %w", err)
	}

	info := &models.MediaInfo{}
	info.Duration, _ = strconv.ParseFloat(out.Format.Duration, 64)
	if bps, err := strconv.Atoi(out.Format.BitRate); err == nil {
		info.BitrateKbps = bps / 1000
	}

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			info.Streams = append(info.Streams, models.StreamInfo{Width: s.Width, Height: s.Height})
			if info.FPS == 0 {
				info.FPS = parseFrameRate(s.AvgFrameRate)
				if info.FPS == 0 {
					info.FPS = parseFrameRate(s.RFrameRate)
				}
			}
		case "audio":
			if info.AudioSampleRate == 0 {
				info.AudioSampleRate, _ = strconv.Atoi(s.SampleRate)
			}
		}
	}

	if len(info.Streams) == 0 {
		return nil, fmt.Errorf("no video stream found")
	}
	return info, nil
}

// parseFrameRate resolves ffprobe's "num/den" rational notation.
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// GrayThumbnails extracts one raw 16x16 gray frame per relative
// position. Failure of any position fails the whole call.
func (t *FFTools) GrayThumbnails(path string, duration float64, positions []float64) ([][]byte, error) {
	out := make([][]byte, 0, len(positions))
	for _, pos := range positions {
		seconds := duration * pos
		gray, err := t.grayFrame(path, seconds)
		if err != nil {
			return nil, fmt.Errorf("thumbnail at %.3fs: %w", seconds, err)
		}
		out = append(out, gray)
	}
	return out, nil
}

func (t *FFTools) grayFrame(path string, seconds float64) ([]byte, error) {
	args := t.baseArgs(path, seconds)
	args = append(args,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d,format=gray", models.ThumbSide, models.ThumbSide),
		"-f", "rawvideo",
		"-",
	)

	data, err := t.runFFmpeg(args)
	if err != nil {
		return nil, err
	}
	if len(data) < models.GraySize {
		return nil, fmt.Errorf("short gray frame: %d bytes", len(data))
	}
	return data[:models.GraySize], nil
}

func (t *FFTools) ColorThumbnail(path string, seconds float64) ([]byte, error) {
	args := t.baseArgs(path, seconds)
	args = append(args,
		"-frames:v", "1",
		"-c:v", "mjpeg",
		"-f", "image2pipe",
		"-",
	)
	return t.runFFmpeg(args)
}

func (t *FFTools) baseArgs(path string, seconds float64) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", t.logLevel(),
	}
	if t.conf.HardwareAccelerationMode != "" && t.conf.HardwareAccelerationMode != "none" {
		args = append(args, "-hwaccel", t.conf.HardwareAccelerationMode)
	}
	args = append(args, "-ss", strconv.FormatFloat(seconds, 'f', 3, 64), "-i", path)
	args = append(args, t.conf.CustomFFArguments...)
	return args
}

func (t *FFTools) runFFmpeg(args []string) ([]byte, error) {
	cmd := exec.Command(t.conf.FFmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if t.conf.ExtendedFFToolsLogging {
		t.logger.Debugf(providers.TypeDecode, "ffmpeg %s", strings.Join(args, " "))
	}
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if t.conf.ExtendedFFToolsLogging && stderr.Len() > 0 {
		t.logger.Debugf(providers.TypeDecode, "ffmpeg stderr: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (t *FFTools) logLevel() string {
	if t.conf.ExtendedFFToolsLogging {
		return "verbose"
	}
	return "error"
}
