package media

import (
	"fmt"

	"github.com/disintegration/imaging"

	"dupescan/internal/models"
)

// ImageFingerprint loads an image, records its geometry and reduces it to
// the 16x16 grayscale vector used for comparison. Luminance uses the
// BT.601 weights, matching what the video decoder's gray output produces.
func ImageFingerprint(path string) (gray []byte, width, height int, err error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open image: %w", err)
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()

	thumb := imaging.Resize(img, models.ThumbSide, models.ThumbSide, imaging.Box)
	gray = make([]byte, 0, models.GraySize)
	for y := 0; y < models.ThumbSide; y++ {
		for x := 0; x < models.ThumbSide; x++ {
			r, g, b, _ := thumb.At(x, y).RGBA()
			lum := (299*r + 587*g + 114*b) / 1000
			gray = append(gray, byte(lum>>8))
		}
	}
	return gray, width, height, nil
}
