package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ExtractRegion copies the pixels inside r into a new image whose origin is
// (0,0). r is given in img's coordinate space and must lie inside its bounds.
func ExtractRegion(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", r)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return imaging.Crop(img, r), nil
}

// Scale resizes img by factor using Lanczos resampling. Factors <= 0 or equal
// to 1 return img unchanged. Each side is at least one pixel.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
