package container

import (
	"fmt"
	"net/http"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/config"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/embedding"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/factory"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/observer"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/service"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/storage"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/transport"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/verifier"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config              *config.Config
	imageFetcher        storage.ImageFetcher
	enginePool          *verifier.Pool
	metricsObserver     *observer.MetricsObserver
	verificationService service.VerificationService
	handler             http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	storageFactory := factory.NewStorageFactory()
	imageFetcher, err := storageFactory.CreateStorage(factory.StorageType(cfg.StorageBackend), factory.StorageConfig{
		FetchTimeout:     cfg.ImageFetchTimeout,
		MaxImageBytes:    cfg.MaxImageBytes,
		AzureAccountName: cfg.AzureAccountName,
		AzureAccountKey:  cfg.AzureAccountKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	// Each engine owns its own model handle; the dlib bindings are not safe
	// for unsynchronized concurrent use.
	enginePool, err := verifier.NewPool(cfg.EnginePoolSize, func() (*verifier.Engine, error) {
		backend := embedding.NewDlibBackend(cfg.ModelsDir)
		return verifier.NewEngine(verifier.DefaultConfig(), backend, backend), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build engine pool: %w", err)
	}

	metricsObserver := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metricsObserver)

	verificationService := service.NewVerificationService(
		imageFetcher,
		enginePool,
		validation.NewURLValidator(),
		publisher,
	)
	handler := transport.NewHandler(verificationService, cfg)

	return &Container{
		config:              cfg,
		imageFetcher:        imageFetcher,
		enginePool:          enginePool,
		metricsObserver:     metricsObserver,
		verificationService: verificationService,
		handler:             handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the collected verification metrics
func (c *Container) Metrics() map[string]interface{} {
	return c.metricsObserver.GetMetrics()
}

// Close releases the engine pool's model handles
func (c *Container) Close() {
	c.enginePool.Close()
}
