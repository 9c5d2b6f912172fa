package models

// DuplicateItem is one member of a duplicate group. Distance and Flipped
// are those of the pair that introduced the item and are not recomputed
// when groups merge, so intra-group distances may be mutually
// inconsistent after a merge.
type DuplicateItem struct {
	Path    string `json:"path"`
	GroupID string `json:"groupId"`

	// Distance is the similarity distance of the introducing pair, in
	// [0, 1], lower is closer.
	Distance float64 `json:"distance"`
	// Flipped marks an item matched against the horizontally mirrored
	// fingerprints of its pair partner.
	Flipped bool `json:"flipped,omitempty"`

	IsImage         bool    `json:"isImage,omitempty"`
	FileSize        int64   `json:"fileSize"`
	Duration        float64 `json:"duration,omitempty"`
	FPS             float64 `json:"fps,omitempty"`
	BitrateKbps     int     `json:"bitrateKbps,omitempty"`
	AudioSampleRate int     `json:"audioSampleRate,omitempty"`
	FrameSize       int     `json:"frameSize,omitempty"`

	BestDuration        bool `json:"bestDuration,omitempty"`
	BestSize            bool `json:"bestSize,omitempty"`
	BestFPS             bool `json:"bestFps,omitempty"`
	BestBitrate         bool `json:"bestBitrate,omitempty"`
	BestAudioSampleRate bool `json:"bestAudioSampleRate,omitempty"`
	BestFrameSize       bool `json:"bestFrameSize,omitempty"`
}

// NewDuplicateItem snapshots a record's display metrics into a group
// member.
func NewDuplicateItem(r *FileRecord, groupID string, distance float64, flipped bool) *DuplicateItem {
	item := &DuplicateItem{
		Path:     r.Path,
		GroupID:  groupID,
		Distance: distance,
		Flipped:  flipped,
		IsImage:  r.IsImage,
		FileSize: r.FileSize,
	}
	if r.MediaInfo != nil {
		item.Duration = r.MediaInfo.Duration
		item.FPS = r.MediaInfo.FPS
		item.BitrateKbps = r.MediaInfo.BitrateKbps
		item.AudioSampleRate = r.MediaInfo.AudioSampleRate
		item.FrameSize = r.MediaInfo.FrameSize()
	}
	return item
}

// SubClipMatch records one alignment of a shorter video's full
// fingerprint sequence inside a longer one. MatchStartTimes are the
// position keys of the main video covered by the window.
type SubClipMatch struct {
	MainPath        string    `json:"mainPath"`
	SubPath         string    `json:"subPath"`
	MatchStartTimes []float64 `json:"matchStartTimes"`
}
