package interfaces

import "dupescan/internal/models"

// DecoderInterface is the contract with the external media decoding
// tool. Implementations are invoked concurrently from worker goroutines
// and must be reentrant.
type DecoderInterface interface {
	// Available reports whether the decoder binaries can be launched.
	// A failure here aborts the scan before it begins.
	Available() error

	// Probe returns the media metadata for a video file.
	Probe(path string) (*models.MediaInfo, error)

	// GrayThumbnails samples one 16x16 grayscale vector per relative
	// position (each in [0, 1]) of the file's duration. Any failed
	// position fails the whole call.
	GrayThumbnails(path string, duration float64, positions []float64) ([][]byte, error)

	// ColorThumbnail returns an encoded preview image at the given
	// timestamp, for display only.
	ColorThumbnail(path string, seconds float64) ([]byte, error)
}
