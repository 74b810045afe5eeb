package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	apperrors "github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/errors"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/observer"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/storage"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/verifier"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/validation"
)

// VerificationService defines the interface for URL-based face verification
type VerificationService interface {
	VerifyByURL(ctx context.Context, image1URL, image2URL string) (models.VerificationResult, error)
	ValidateImageURL(imageURL string) error
}

// verificationService fetches the two images, stages them on disk and runs
// a pooled engine against them.
type verificationService struct {
	fetcher      storage.ImageFetcher
	pool         *verifier.Pool
	urlValidator *validation.URLValidator
	publisher    observer.Subject
	tempDir      string
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	fetcher storage.ImageFetcher,
	pool *verifier.Pool,
	urlValidator *validation.URLValidator,
	publisher observer.Subject,
) VerificationService {
	return &verificationService{
		fetcher:      fetcher,
		pool:         pool,
		urlValidator: urlValidator,
		publisher:    publisher,
		tempDir:      os.TempDir(),
	}
}

// VerifyByURL downloads both images and compares them. An error return
// means the request never reached the decision stage; a completed comparison
// always comes back as a result, including ERROR verdicts.
func (s *verificationService) VerifyByURL(ctx context.Context, image1URL, image2URL string) (models.VerificationResult, error) {
	start := time.Now()

	if err := s.ValidateImageURL(image1URL); err != nil {
		return models.VerificationResult{}, apperrors.NewInputError("invalid image1 URL", err)
	}
	if err := s.ValidateImageURL(image2URL); err != nil {
		return models.VerificationResult{}, apperrors.NewInputError("invalid image2 URL", err)
	}

	s.notify(ctx, observer.VerificationEvent{
		EventType: observer.VerificationStarted,
		Timestamp: start,
		Image1URL: image1URL,
		Image2URL: image2URL,
	})

	path1, cleanup1, err := s.stage(ctx, image1URL)
	if err != nil {
		s.notifyFetchFailure(ctx, image1URL, image2URL, err)
		return models.VerificationResult{}, err
	}
	defer cleanup1()

	path2, cleanup2, err := s.stage(ctx, image2URL)
	if err != nil {
		s.notifyFetchFailure(ctx, image1URL, image2URL, err)
		return models.VerificationResult{}, err
	}
	defer cleanup2()

	engine, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.VerificationResult{}, apperrors.NewTransientError("no verification engine available", err)
	}
	defer s.pool.Release(engine)

	result := engine.Verify(ctx, path1, path2)

	event := observer.VerificationEvent{
		EventType:      observer.VerificationCompleted,
		Timestamp:      time.Now(),
		Image1URL:      image1URL,
		Image2URL:      image2URL,
		ProcessingTime: time.Since(start),
		Verdict:        string(result.Verdict),
		Success:        result.Verdict != models.VerdictError,
		Metadata: map[string]interface{}{
			"similarity": result.Similarity,
			"confidence": result.Confidence,
		},
	}
	if result.Verdict == models.VerdictError {
		event.EventType = observer.VerificationFailed
		event.ErrorMessage = result.Error
	}
	s.notify(ctx, event)

	return result, nil
}

// ValidateImageURL validates the image URL
func (s *verificationService) ValidateImageURL(imageURL string) error {
	return s.urlValidator.ValidateImageURL(imageURL)
}

// stage downloads the image and writes it to a temp file whose extension
// matches the URL, so format checks downstream see the right suffix.
func (s *verificationService) stage(ctx context.Context, imageURL string) (string, func(), error) {
	data, err := s.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return "", nil, apperrors.NewNetworkError(fmt.Sprintf("failed to fetch %s", imageURL), err)
	}

	s.notify(ctx, observer.VerificationEvent{
		EventType: observer.ImageFetched,
		Timestamp: time.Now(),
		Image1URL: imageURL,
		Success:   true,
	})

	file, err := os.CreateTemp(s.tempDir, "faceverify-*"+extensionFor(imageURL))
	if err != nil {
		return "", nil, apperrors.NewInternalError("failed to create temp file", err)
	}

	cleanup := func() {
		if removeErr := os.Remove(file.Name()); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.WithError(removeErr).Warn("Failed to remove temp image")
		}
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		cleanup()
		return "", nil, apperrors.NewInternalError("failed to write temp file", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, apperrors.NewInternalError("failed to close temp file", err)
	}

	return file.Name(), cleanup, nil
}

func (s *verificationService) notify(ctx context.Context, event observer.VerificationEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func (s *verificationService) notifyFetchFailure(ctx context.Context, image1URL, image2URL string, err error) {
	s.notify(ctx, observer.VerificationEvent{
		EventType:    observer.ImageFetchFailed,
		Timestamp:    time.Now(),
		Image1URL:    image1URL,
		Image2URL:    image2URL,
		ErrorMessage: err.Error(),
	})
}

// extensionFor pulls a usable image extension out of the URL path. Unknown
// or missing extensions fall back to .jpg, the dominant format in practice.
func extensionFor(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
