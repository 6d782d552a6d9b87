package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/text-scanner-mcp/internal/config"
	"github.com/ironsheep/text-scanner-mcp/internal/ocr"
	"github.com/ironsheep/text-scanner-mcp/internal/server"
	"github.com/ironsheep/text-scanner-mcp/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "text-scanner-mcp - MCP server for region-of-interest OCR")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: text-scanner-mcp [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	fmt.Fprintln(out, "  --config <file>  YAML configuration file")
	fmt.Fprintln(out, "  --version, -v    Print version information")
	fmt.Fprintln(out, "  --help, -h       Print this help message")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables:")
	fmt.Fprintf(out, "  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Fprintf(out, "  %s=<dir>      Tesseract language data directory\n", config.EnvTessdataPrefix)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Camera sources (camera.source, scanner_start_camera):")
	fmt.Fprintln(out, "  screen            Primary screen (default)")
	fmt.Fprintln(out, "  screen:x,y,w,h    Fixed screen rectangle")
	fmt.Fprintln(out, "  dir:<path>        Image files of a directory, in name order")
	fmt.Fprintln(out, "  device:<n>        Video device n; only in binaries built with -tags gocv,")
	fmt.Fprintln(out, "                    other builds report it as a camera error")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This server communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(out, "Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.BoolVar(&showVersion, "v", false, "print version information")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("text-scanner-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Tesseract:  %s\n", ocr.NewTesseract("", nil).Version())
		return
	}
	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "text-scanner-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "environment")
	}

	log := newLogger(cfg)
	engine := ocr.NewTesseract(cfg.OCR.TessdataPrefix, log)
	log.WithField("version", Version).
		WithField("commit", GitCommit).
		WithField("built", BuildTime).
		WithField("tesseract", engine.Version()).
		Debug("text scanner starting")

	sess, err := session.New(cfg, engine, log)
	if err != nil {
		return err
	}
	srv := server.New(sess, Version, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	serveCtx, endSession := context.WithCancel(ctx)
	g.Go(func() error {
		return sess.Run(serveCtx)
	})
	g.Go(func() error {
		// stdin closing ends the session too.
		defer endSession()
		return srv.Run(ctx, os.Stdin, os.Stdout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Debug("text scanner stopped")
	return nil
}
