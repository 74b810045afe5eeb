package embedding

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"sync"

	goface "github.com/Kagami/go-face"
	"github.com/disintegration/imaging"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/geometry"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/imageio"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/retry"
)

// transcodeQuality is the JPEG quality used when re-encoding input for the
// recognizer.
const transcodeQuality = 95

// upperFaceShare is the fraction of image height kept when embedding the
// upper face only: eyes and forehead, excluding the mouth and chin area.
const upperFaceShare = 0.6

// DlibBackend wraps one dlib recognizer handle behind both external
// capabilities the engine consumes: embedding extraction and landmark
// estimation. The handle is loaded lazily on first use and reused for the
// lifetime of the backend; calls are serialized with a mutex because the
// underlying capability does not document thread-safety.
//
// The recognizer itself only decodes JPEG, while the validator accepts every
// format the decode layer understands, so inputs are decoded once here and
// re-encoded as JPEG on the way in.
type DlibBackend struct {
	modelsDir string
	initRetry retry.Policy

	mu  sync.Mutex
	rec *goface.Recognizer
}

// NewDlibBackend creates a backend over the dlib model files in modelsDir.
// No model is loaded until the first call.
func NewDlibBackend(modelsDir string) *DlibBackend {
	return &DlibBackend{
		modelsDir: modelsDir,
		initRetry: retry.InitPolicy(),
	}
}

// recognizer returns the shared handle, initializing it on first use.
// Callers must hold mu.
func (b *DlibBackend) recognizer(ctx context.Context) (*goface.Recognizer, error) {
	if b.rec != nil {
		return b.rec, nil
	}

	rec, err := retry.Do(ctx, b.initRetry, "dlib.init", func() (*goface.Recognizer, error) {
		return goface.NewRecognizer(b.modelsDir)
	})
	if err != nil {
		return nil, err
	}

	logger.WithField("models_dir", b.modelsDir).Info("Face recognition models loaded")
	b.rec = rec
	return b.rec, nil
}

// Embed extracts the identity embedding of the first detected face in the
// image at path. It returns nil with no error when no face is found or the
// file cannot be decoded; backend failures are returned as errors so the
// caller's retry policy can act on them.
func (b *DlibBackend) Embed(ctx context.Context, path string) (Vector, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.recognizer(ctx)
	if err != nil {
		return nil, err
	}

	img, err := b.decode(path)
	if err != nil || img == nil {
		return nil, err
	}

	faces, err := recognize(rec, img)
	if err != nil {
		return nil, err
	}
	return descriptorVector(faces), nil
}

// EmbedUpperFace extracts the identity embedding from the upper portion of
// the image only. Used by the occlusion engine for disguise and mask cases.
func (b *DlibBackend) EmbedUpperFace(ctx context.Context, path string) (Vector, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.recognizer(ctx)
	if err != nil {
		return nil, err
	}

	img, err := b.decode(path)
	if err != nil || img == nil {
		return nil, err
	}

	faces, err := recognize(rec, upperRegion(img))
	if err != nil {
		return nil, err
	}
	return descriptorVector(faces), nil
}

// Landmarks returns the shape points of the first detected face, in pixel
// coordinates, or nil when no face is found.
func (b *DlibBackend) Landmarks(ctx context.Context, path string) (*geometry.LandmarkSet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.recognizer(ctx)
	if err != nil {
		return nil, err
	}

	img, err := b.decode(path)
	if err != nil || img == nil {
		return nil, err
	}

	faces, err := recognize(rec, img)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 || len(faces[0].Shapes) == 0 {
		return nil, nil
	}

	points := make([]image.Point, len(faces[0].Shapes))
	copy(points, faces[0].Shapes)

	bounds := img.Bounds()
	return &geometry.LandmarkSet{Points: points, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// Close releases the model handle. The backend may be reused afterwards;
// the next call re-initializes.
func (b *DlibBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rec != nil {
		b.rec.Close()
		b.rec = nil
	}
	return nil
}

// decode reads the image at path through the shared decode layer. An
// undecodable file is a non-detection, not a failure, matching how the
// engine reports unreadable input.
func (b *DlibBackend) decode(path string) (image.Image, error) {
	img, err := imageio.Load(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Debug("Undecodable input treated as non-detection")
		return nil, nil
	}
	return img, nil
}

// recognize feeds a decoded image to the recognizer as JPEG. Input
// rejections degrade to an empty face list; any other recognizer error is
// surfaced to the caller.
func recognize(rec *goface.Recognizer, img image.Image) ([]goface.Face, error) {
	data, err := jpegPayload(img)
	if err != nil {
		return nil, err
	}

	faces, err := rec.Recognize(data)
	if err != nil {
		if loadFailure(err) {
			logger.WithError(err).Debug("Recognizer rejected transcoded image")
			return nil, nil
		}
		return nil, err
	}
	return faces, nil
}

// jpegPayload re-encodes a decoded image as JPEG bytes for the recognizer.
func jpegPayload(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: transcodeQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// loadFailure reports whether err is the recognizer rejecting its input
// rather than failing internally. Rejections are terminal for the image;
// everything else is worth a retry.
func loadFailure(err error) bool {
	var loadErr goface.ImageLoadError
	return errors.As(err, &loadErr)
}

// upperRegion crops the image to its upper portion.
func upperRegion(img image.Image) image.Image {
	bounds := img.Bounds()
	upper := image.Rect(
		bounds.Min.X,
		bounds.Min.Y,
		bounds.Max.X,
		bounds.Min.Y+int(upperFaceShare*float64(bounds.Dy())),
	)
	return imaging.Crop(img, upper)
}

// descriptorVector copies the first face's descriptor, or nil when no face
// was found.
func descriptorVector(faces []goface.Face) Vector {
	if len(faces) == 0 {
		return nil
	}

	descriptor := faces[0].Descriptor
	vector := make(Vector, len(descriptor))
	for i, v := range descriptor {
		vector[i] = v
	}
	return vector
}
