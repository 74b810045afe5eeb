package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/embedding"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/occlusion"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/render"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/verifier"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

const (
	exitSupportSame = 0
	exitError       = 1
	exitOther       = 2
	exitInterrupt   = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		jsonOut   = flag.Bool("json", false, "emit the combined result as JSON")
		modelsDir = flag.String("models", envOrDefault("MODELS_DIR", "models"), "directory holding the dlib model files")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <image1> <image2>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend := embedding.NewDlibBackend(*modelsDir)
	engine := verifier.NewEngine(verifier.DefaultConfig(), backend, backend)
	defer engine.Close()

	core := engine.Verify(ctx, flag.Arg(0), flag.Arg(1))

	result, err := occlusion.NewEngine(backend).Analyze(ctx, core, flag.Arg(0), flag.Arg(1))
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"image1": flag.Arg(0),
			"image2": flag.Arg(1),
		}).Error("Upper-face analysis failed")
		return exitError
	}

	renderForensic := render.ForensicTextRender
	if *jsonOut {
		renderForensic = render.ForensicJSONRender
	}
	if renderErr := renderForensic(os.Stdout, result); renderErr != nil {
		fmt.Fprintf(os.Stderr, "failed to write result: %v\n", renderErr)
		return exitError
	}

	if ctx.Err() != nil {
		return exitInterrupt
	}

	switch {
	case core.Verdict == models.VerdictError:
		return exitError
	case result.Label == occlusion.LabelStrongSupportSame:
		return exitSupportSame
	default:
		return exitOther
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
