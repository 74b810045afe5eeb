package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

// RenderStrategy defines the interface for result output formats
type RenderStrategy interface {
	Render(w io.Writer, result models.VerificationResult) error
	GetStrategyName() string
}

// TextRenderStrategy writes a human-readable report
type TextRenderStrategy struct{}

// NewTextRenderStrategy creates a new text render strategy
func NewTextRenderStrategy() RenderStrategy {
	return &TextRenderStrategy{}
}

// Render writes the verdict and its supporting signals
func (s *TextRenderStrategy) Render(w io.Writer, result models.VerificationResult) error {
	if result.Verdict == models.VerdictError {
		_, err := fmt.Fprintf(w, "Verdict:    %s\nReason:     %s\nTime:       %.2fs\n",
			result.Verdict, result.Error, result.ExecutionTime)
		return err
	}

	_, err := fmt.Fprintf(w,
		"Verdict:    %s (%s)\nConfidence: %.1f\nSimilarity: %.3f\nGeometry:   %.1f\nQuality:    image1=%.1f image2=%.1f\nTime:       %.2fs\n",
		result.Verdict,
		result.Verdict.Classification(),
		result.Confidence,
		result.Similarity,
		result.GeometrySimilarity,
		result.Image1Quality.CompositeScore,
		result.Image2Quality.CompositeScore,
		result.ExecutionTime,
	)
	return err
}

// GetStrategyName returns the strategy name
func (s *TextRenderStrategy) GetStrategyName() string {
	return "text_render"
}

// JSONRenderStrategy writes the exported result as indented JSON
type JSONRenderStrategy struct{}

// NewJSONRenderStrategy creates a new JSON render strategy
func NewJSONRenderStrategy() RenderStrategy {
	return &JSONRenderStrategy{}
}

// Render writes the machine-readable export
func (s *JSONRenderStrategy) Render(w io.Writer, result models.VerificationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result.Export())
}

// GetStrategyName returns the strategy name
func (s *JSONRenderStrategy) GetStrategyName() string {
	return "json_render"
}

// QuietRenderStrategy writes the verdict alone, for scripting
type QuietRenderStrategy struct{}

// NewQuietRenderStrategy creates a new quiet render strategy
func NewQuietRenderStrategy() RenderStrategy {
	return &QuietRenderStrategy{}
}

// Render writes only the verdict
func (s *QuietRenderStrategy) Render(w io.Writer, result models.VerificationResult) error {
	_, err := fmt.Fprintln(w, result.Verdict)
	return err
}

// GetStrategyName returns the strategy name
func (s *QuietRenderStrategy) GetStrategyName() string {
	return "quiet_render"
}

// RenderContext manages the active render strategy
type RenderContext struct {
	strategy RenderStrategy
}

// NewRenderContext creates a new render context
func NewRenderContext(strategy RenderStrategy) *RenderContext {
	return &RenderContext{
		strategy: strategy,
	}
}

// SetStrategy changes the render strategy
func (c *RenderContext) SetStrategy(strategy RenderStrategy) {
	c.strategy = strategy
}

// ExecuteRender writes the result using the current strategy
func (c *RenderContext) ExecuteRender(w io.Writer, result models.VerificationResult) error {
	return c.strategy.Render(w, result)
}

// GetCurrentStrategy returns the current strategy name
func (c *RenderContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
