package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// VerificationEvent represents a verification lifecycle event
type VerificationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Image1URL      string                 `json:"image1_url"`
	Image2URL      string                 `json:"image2_url"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Verdict        string                 `json:"verdict,omitempty"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of verification event
type EventType string

const (
	// VerificationStarted when a comparison begins
	VerificationStarted EventType = "verification_started"
	// VerificationCompleted when a comparison finishes with a verdict
	VerificationCompleted EventType = "verification_completed"
	// VerificationFailed when a comparison ends in an error verdict
	VerificationFailed EventType = "verification_failed"
	// ImageFetched when an input image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when an input image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event VerificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event VerificationEvent)
}

// LoggingObserver logs verification events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles verification events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"image1_url":      event.Image1URL,
		"image2_url":      event.Image2URL,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.Verdict != "" {
		fields["verdict"] = event.Verdict
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case VerificationStarted:
		o.logger.WithFields(fields).Info("Face verification started")
	case VerificationCompleted:
		o.logger.WithFields(fields).Info("Face verification completed")
	case VerificationFailed:
		o.logger.WithFields(fields).Error("Face verification failed")
	case ImageFetched:
		o.logger.WithFields(fields).Debug("Image fetched successfully")
	case ImageFetchFailed:
		o.logger.WithFields(fields).Error("Image fetch failed")
	default:
		o.logger.WithFields(fields).Info("Verification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from verification events
type MetricsObserver struct {
	mu                     sync.RWMutex
	totalVerifications     int64
	completedVerifications int64
	failedVerifications    int64
	verdictCounts          map[string]int64
	totalProcessingTime    time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{verdictCounts: make(map[string]int64)}
}

// OnEvent handles verification events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case VerificationStarted:
		o.totalVerifications++
	case VerificationCompleted:
		o.completedVerifications++
		o.totalProcessingTime += event.ProcessingTime
		if event.Verdict != "" {
			o.verdictCounts[event.Verdict]++
		}
	case VerificationFailed:
		o.failedVerifications++
		if event.Verdict != "" {
			o.verdictCounts[event.Verdict]++
		}
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.completedVerifications > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.completedVerifications)
	}

	verdicts := make(map[string]int64, len(o.verdictCounts))
	for k, v := range o.verdictCounts {
		verdicts[k] = v
	}

	return map[string]interface{}{
		"total_verifications":     o.totalVerifications,
		"completed_verifications": o.completedVerifications,
		"failed_verifications":    o.failedVerifications,
		"verdict_counts":          verdicts,
		"total_processing_time":   o.totalProcessingTime,
		"avg_processing_time":     avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event VerificationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
