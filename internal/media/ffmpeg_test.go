package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupescan/internal/structures"
	"dupescan/internal/testutil"
)

const sampleProbeJSON = `{
  "streams": [
    {
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "r_frame_rate": "30000/1001",
      "avg_frame_rate": "30000/1001"
    },
    {
      "codec_type": "audio",
      "sample_rate": "48000"
    }
  ],
  "format": {
    "duration": "3725.413000",
    "bit_rate": "2585000"
  }
}`

func TestParseProbeOutput(t *testing.T) {
	info, err := parseProbeOutput([]byte(sampleProbeJSON))
	require.NoError(t, err)

	assert.InDelta(t, 3725.413, info.Duration, 0.001)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.Equal(t, 2585, info.BitrateKbps)
	assert.Equal(t, 48000, info.AudioSampleRate)
	require.Len(t, info.Streams, 1)
	assert.Equal(t, 1920*1080, info.FrameSize())
}

func TestParseProbeOutput_NoVideoStream(t *testing.T) {
	_, err := parseProbeOutput([]byte(`{"streams":[{"codec_type":"audio","sample_rate":"44100"}],"format":{"duration":"10"}}`))
	assert.Error(t, err)
}

func TestParseProbeOutput_Garbage(t *testing.T) {
	_, err := parseProbeOutput([]byte("not json"))
	assert.Error(t, err)
}

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 25.0, parseFrameRate("25/1"), 0.001)
	assert.InDelta(t, 23.976, parseFrameRate("24000/1001"), 0.001)
	assert.InDelta(t, 30.0, parseFrameRate("30"), 0.001)
	assert.Equal(t, 0.0, parseFrameRate("25/0"))
	assert.Equal(t, 0.0, parseFrameRate("garbage"))
}

func newFFTools(conf structures.DecoderConfig) *FFTools {
	full := &structures.Config{Decoder: conf}
	return NewFFTools(full, &testutil.MockLogger{}).(*FFTools)
}

func TestFFTools_BaseArgsIncludeSeekAndInput(t *testing.T) {
	tools := newFFTools(structures.DecoderConfig{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"})
	args := tools.baseArgs("/v/a.mp4", 12.5)

	assert.Contains(t, args, "-ss")
	assert.Contains(t, args, "12.500")
	assert.Contains(t, args, "-i")
	assert.Contains(t, args, "/v/a.mp4")
	assert.NotContains(t, args, "-hwaccel")
}

func TestFFTools_BaseArgsPassThroughHardwareAndCustom(t *testing.T) {
	tools := newFFTools(structures.DecoderConfig{
		FFmpegPath:               "ffmpeg",
		FFprobePath:              "ffprobe",
		HardwareAccelerationMode: "cuda",
		CustomFFArguments:        []string{"-threads", "2"},
	})
	args := tools.baseArgs("/v/a.mp4", 0)

	assert.Contains(t, args, "-hwaccel")
	assert.Contains(t, args, "cuda")
	assert.Contains(t, args, "-threads")
	assert.Contains(t, args, "2")
}

func TestFFTools_LogLevelFollowsExtendedLogging(t *testing.T) {
	quiet := newFFTools(structures.DecoderConfig{})
	verbose := newFFTools(structures.DecoderConfig{ExtendedFFToolsLogging: true})

	assert.Equal(t, "error", quiet.logLevel())
	assert.Equal(t, "verbose", verbose.logLevel())
}

func TestFFTools_AvailableFailsForMissingBinaries(t *testing.T) {
	tools := newFFTools(structures.DecoderConfig{
		FFmpegPath:  "definitely-not-a-real-ffmpeg-binary",
		FFprobePath: "definitely-not-a-real-ffprobe-binary",
	})
	assert.Error(t, tools.Available())
}
