package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

func sampleResult() models.VerificationResult {
	return models.VerificationResult{
		Verdict:            models.VerdictSameHigh,
		Confidence:         88.0,
		Similarity:         0.6,
		GeometrySimilarity: 40.0,
		QualityAverage:     80.0,
		ExecutionTime:      0.42,
		Image1Quality:      models.ImageQuality{CompositeScore: 82.5, Valid: true},
		Image2Quality:      models.ImageQuality{CompositeScore: 77.5, Valid: true},
	}
}

func TestTextRender(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextRenderStrategy().Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"SAME_HIGH", "88.0", "0.600", "image1=82.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTextRender_ErrorVerdict(t *testing.T) {
	result := models.VerificationResult{
		Verdict:       models.VerdictError,
		Error:         "Face not detected",
		ExecutionTime: 0.1,
	}

	var buf bytes.Buffer
	if err := NewTextRenderStrategy().Render(&buf, result); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Face not detected") {
		t.Errorf("Expected failure reason in output, got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Confidence") {
		t.Error("Error output should not carry confidence")
	}
}

func TestJSONRender(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderStrategy().Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded["verdict"] != "SAME_HIGH" {
		t.Errorf("Expected verdict SAME_HIGH, got %v", decoded["verdict"])
	}
	if decoded["similarity"] != 0.6 {
		t.Errorf("Expected similarity 0.6, got %v", decoded["similarity"])
	}
}

func TestQuietRender(t *testing.T) {
	var buf bytes.Buffer
	if err := NewQuietRenderStrategy().Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.String() != "SAME_HIGH\n" {
		t.Errorf("Expected bare verdict line, got %q", buf.String())
	}
}

func TestRenderContext_SwitchStrategy(t *testing.T) {
	ctx := NewRenderContext(NewTextRenderStrategy())
	if ctx.GetCurrentStrategy() != "text_render" {
		t.Errorf("Expected text_render, got %s", ctx.GetCurrentStrategy())
	}

	ctx.SetStrategy(NewQuietRenderStrategy())
	if ctx.GetCurrentStrategy() != "quiet_render" {
		t.Errorf("Expected quiet_render, got %s", ctx.GetCurrentStrategy())
	}

	var buf bytes.Buffer
	if err := ctx.ExecuteRender(&buf, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.String() != "SAME_HIGH\n" {
		t.Errorf("Expected bare verdict line, got %q", buf.String())
	}
}
