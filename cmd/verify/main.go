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
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/render"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/verifier"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

const (
	exitSame      = 0
	exitError     = 1
	exitNotSame   = 2
	exitInterrupt = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		jsonOut   = flag.Bool("json", false, "emit the result as JSON")
		quiet     = flag.Bool("quiet", false, "print only the verdict")
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

	if *quiet {
		logger.SetLevel(logrus.ErrorLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend := embedding.NewDlibBackend(*modelsDir)
	engine := verifier.NewEngine(verifier.DefaultConfig(), backend, backend)
	defer engine.Close()

	result := engine.Verify(ctx, flag.Arg(0), flag.Arg(1))

	renderer := render.NewRenderContext(render.NewTextRenderStrategy())
	if *jsonOut {
		renderer.SetStrategy(render.NewJSONRenderStrategy())
	} else if *quiet {
		renderer.SetStrategy(render.NewQuietRenderStrategy())
	}
	if err := renderer.ExecuteRender(os.Stdout, result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write result: %v\n", err)
		return exitError
	}

	if ctx.Err() != nil {
		return exitInterrupt
	}

	switch {
	case result.Verdict == models.VerdictError:
		return exitError
	case result.Verdict.IsSame():
		return exitSame
	default:
		return exitNotSame
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
