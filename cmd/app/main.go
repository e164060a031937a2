// scansplit - splits a flatbed scan into its individual photographs
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"scansplit/internal/config"
	"scansplit/internal/core"
	imageio "scansplit/internal/io"
)

const (
	AppName    = "scansplit"
	AppVersion = "1.0.0"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "Path to a TOML config file with detection defaults")
	sensitivity := flag.Float64("sensitivity", -1, "Binarization sensitivity in [0,1] (overrides config)")
	minSize := flag.Float64("min-size", -1, "Minimum photo area as a fraction of the working bitmap (overrides config)")
	maxSize := flag.Float64("max-size", -1, "Maximum photo area as a fraction of the working bitmap (overrides config)")
	maxCount := flag.Int("max-count", -1, "Maximum number of photos to return per scan (overrides config)")
	trim := flag.Float64("trim", -1, "Inward crop margin fraction (overrides config)")
	rotate := flag.Int("rotate", 0, "Rotation in 90-degree steps applied to every crop before saving")
	dryRun := flag.Bool("dry-run", false, "Detect photos but do not write any crops")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting scansplit")

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] scan_files...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts, err := buildOptions(*configPath, *sensitivity, *minSize, *maxSize, *maxCount, *trim)
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detector := core.NewDetector(opts, logger)
	loader := imageio.NewImageLoader(logger)
	writer := imageio.NewCropWriter(logger)

	failures := 0
	for idx, path := range flag.Args() {
		entry := logger.WithFields(logrus.Fields{
			"file":     path,
			"progress": fmt.Sprintf("%d/%d", idx+1, flag.NArg()),
		})
		if err := processScan(ctx, detector, loader, writer, path, *rotate, *dryRun, entry); err != nil {
			if errors.Is(err, context.Canceled) {
				entry.Warn("Cancelled, stopping")
				os.Exit(130)
			}
			entry.WithError(err).Error("Scan failed")
			failures++
		}
	}

	logger.Info("Shutting down gracefully")
	if failures > 0 {
		os.Exit(1)
	}
}

func processScan(ctx context.Context, detector *core.Detector, loader *imageio.ImageLoader,
	writer *imageio.CropWriter, path string, rotate int, dryRun bool, entry *logrus.Entry,
) error {
	img, _, err := loader.Load(path)
	if err != nil {
		return err
	}

	photos, err := detector.Detect(ctx, img)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		entry.Info("No photos found")
		return nil
	}

	if rotate != 0 {
		for i := range photos {
			rotated, err := core.Rotate(photos[i], rotate*90)
			if err != nil {
				return err
			}
			photos[i] = rotated
		}
	}

	if dryRun {
		entry.WithField("photos", len(photos)).Info("Dry run, skipping save")
		return nil
	}

	written, err := writer.SavePhotos(photos, path)
	if err != nil {
		return err
	}
	entry.WithField("written", len(written)).Info("Scan processed")
	return nil
}

// buildOptions layers CLI overrides on top of the (optional) config file.
// Negative flag values mean "not set".
func buildOptions(configPath string, sensitivity, minSize, maxSize float64, maxCount int, trim float64) (core.Options, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return core.Options{}, err
		}
		cfg = loaded
	}

	opts := cfg.Options()
	if sensitivity >= 0 {
		opts.Sensitivity = sensitivity
	}
	if minSize >= 0 {
		opts.MinRelativeSize = minSize
	}
	if maxSize >= 0 {
		opts.MaxRelativeSize = maxSize
	}
	if maxCount >= 0 {
		opts.MaxCount = maxCount
	}
	if trim >= 0 {
		opts.TrimFactor = trim
	}
	return opts, opts.Validate()
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
