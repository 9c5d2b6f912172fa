package models

import (
	"path/filepath"
	"strings"
	"time"
)

// RecordFlags is a bitset of per-record conditions that survive across
// scans.
type RecordFlags uint32

const (
	FlagManuallyExcluded RecordFlags = 1 << iota
	FlagTooDark
	FlagMetadataError
	FlagThumbnailError
)

func (f RecordFlags) Has(flag RecordFlags) bool { return f&flag != 0 }
func (f *RecordFlags) Set(flag RecordFlags)     { *f |= flag }
func (f *RecordFlags) Clear(flag RecordFlags)   { *f &^= flag }

// AnyError reports whether a sampling or probing failure is recorded.
func (f RecordFlags) AnyError() bool {
	return f.Has(FlagMetadataError) || f.Has(FlagThumbnailError)
}

// StreamInfo carries the frame geometry of one video stream.
type StreamInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MediaInfo is what the decoder probe reports for a video, or the
// geometry alone for an image.
type MediaInfo struct {
	Duration        float64      `json:"duration"`
	FPS             float64      `json:"fps"`
	BitrateKbps     int          `json:"bitrateKbps"`
	AudioSampleRate int          `json:"audioSampleRate"`
	Streams         []StreamInfo `json:"streams"`
}

// FrameSize returns width*height of the largest stream.
func (m *MediaInfo) FrameSize() int {
	best := 0
	for _, s := range m.Streams {
		if px := s.Width * s.Height; px > best {
			best = px
		}
	}
	return best
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".wmv": {}, ".avi": {}, ".mkv": {}, ".flv": {},
	".mov": {}, ".mpg": {}, ".mpeg": {}, ".m4v": {}, ".asf": {},
	".f4v": {}, ".webm": {}, ".divx": {}, ".m2t": {}, ".m2ts": {},
	".vob": {}, ".ts": {}, ".3gp": {}, ".rm": {}, ".rmvb": {}, ".ogv": {},
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {},
	".tiff": {}, ".tif": {}, ".webp": {},
}

func IsVideoPath(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func IsImagePath(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FileRecord is one catalog entry. Identity is the absolute path. The
// catalog container owns the set of records; during a scan phase each
// record's mutable fields (MediaInfo, Fingerprints, Flags, Invalid) are
// written by at most one worker.
type FileRecord struct {
	Path         string
	FileSize     int64
	DateCreated  time.Time
	DateModified time.Time
	IsImage      bool

	MediaInfo    *MediaInfo
	Fingerprints map[float64][]byte
	Flags        RecordFlags

	// Invalid marks a record excluded from the current scan. It is reset
	// when a new scan begins and never persisted.
	Invalid bool
}

// NewFileRecord builds a stat-only candidate record.
func NewFileRecord(path string, size int64, created, modified time.Time) *FileRecord {
	return &FileRecord{
		Path:         path,
		FileSize:     size,
		DateCreated:  created,
		DateModified: modified,
		IsImage:      IsImagePath(path),
		Fingerprints: make(map[float64][]byte),
	}
}

// Folder is the record's parent directory, derived from the path.
func (r *FileRecord) Folder() string { return filepath.Dir(r.Path) }

// Equal compares record identity, which is the path alone.
func (r *FileRecord) Equal(other *FileRecord) bool {
	return other != nil && r.Path == other.Path
}

// SameStat reports whether size and both dates match the candidate. A
// mismatch means the file changed on disk and stale fingerprints must go.
func (r *FileRecord) SameStat(c *FileRecord) bool {
	return r.FileSize == c.FileSize &&
		r.DateCreated.Equal(c.DateCreated) &&
		r.DateModified.Equal(c.DateModified)
}

// Fingerprint returns the stored vector at key, if present and non-nil.
func (r *FileRecord) Fingerprint(key float64) ([]byte, bool) {
	v, ok := r.Fingerprints[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *FileRecord) SetFingerprint(key float64, gray []byte) {
	if r.Fingerprints == nil {
		r.Fingerprints = make(map[float64][]byte)
	}
	r.Fingerprints[key] = gray
}

// FingerprintCount counts non-nil stored vectors.
func (r *FileRecord) FingerprintCount() int {
	n := 0
	for _, v := range r.Fingerprints {
		if v != nil {
			n++
		}
	}
	return n
}

// ClearFingerprints drops all sampled data, typically because the
// position settings changed or a retry was requested.
func (r *FileRecord) ClearFingerprints() {
	r.Fingerprints = make(map[float64][]byte)
}

// Duration returns the probed duration, or 0 when unknown.
func (r *FileRecord) Duration() float64 {
	if r.MediaInfo == nil {
		return 0
	}
	return r.MediaInfo.Duration
}
