// Package quality scores a single image's usability for face verification.
package quality

import (
	"image"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/imageio"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

// Score weights. Sharpness and brightness dominate because they most
// directly predict embedding reliability; resolution is a floor signal,
// not a differentiator once above a usable threshold.
const (
	BlurWeight       = 0.35
	BrightnessWeight = 0.25
	ContrastWeight   = 0.20
	ResolutionWeight = 0.20
)

const (
	minDimension     = 50
	brightnessTarget = 128.0
)

// Analyzer computes per-image quality assessments. It never returns an
// error: any internal failure yields an invalid ImageQuality with zero
// scores and a reason.
type Analyzer struct{}

// NewAnalyzer creates a quality analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores the image at path.
func (a *Analyzer) Analyze(path string) models.ImageQuality {
	gray, err := imageio.LoadGray(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Debug("Quality analysis failed to load image")
		return models.InvalidQuality(0, 0, loadFailureReason(path))
	}

	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < minDimension || height < minDimension {
		return models.InvalidQuality(width, height, "Image too small")
	}

	pixels := intensities(gray)
	mean := stat.Mean(pixels, nil)
	stddev := stat.StdDev(pixels, nil)
	blurVar := laplacianVariance(gray)

	blurScore := math.Min(100, blurVar/10)
	brightScore := math.Max(0, 100-math.Abs(mean-brightnessTarget)/1.28)
	contrastScore := math.Min(100, stddev*2)
	resolutionScore := math.Min(100, float64(width*height)/10000)

	composite := BlurWeight*blurScore +
		BrightnessWeight*brightScore +
		ContrastWeight*contrastScore +
		ResolutionWeight*resolutionScore

	return models.ImageQuality{
		BlurScore:       models.Round(blurScore, 1),
		BrightnessScore: models.Round(brightScore, 1),
		ContrastScore:   models.Round(contrastScore, 1),
		Width:           width,
		Height:          height,
		CompositeScore:  models.Round(composite, 1),
		Valid:           true,
	}
}

// loadFailureReason distinguishes a missing file from a corrupt one.
func loadFailureReason(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "File not found"
	}
	return "Unreadable image"
}

// intensities flattens the grayscale image to a float slice on 0-255.
func intensities(gray *image.Gray) []float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	pixels := make([]float64, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixels = append(pixels, float64(gray.GrayAt(x, y).Y))
		}
	}
	return pixels
}

// laplacianVariance is the sharpness proxy: the variance of the response of
// the [0,1,0; 1,-4,1; 0,1,0] kernel over the interior pixels.
func laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	data := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)

			data = append(data, -4*center+top+bottom+left+right)
		}
	}

	if len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}
