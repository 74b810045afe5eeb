// Package imageio centralizes image decoding so every component sees the
// same set of supported formats.
package imageio

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	// imaging registers JPEG and PNG itself; WebP needs an explicit
	// decoder.
	_ "golang.org/x/image/webp"
)

// Load decodes the image at path, honoring EXIF orientation.
func Load(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// LoadGray decodes the image at path and converts it to single-channel
// intensity on the 0-255 scale.
func LoadGray(path string) (*image.Gray, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

// ToGray converts an image to grayscale.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}
