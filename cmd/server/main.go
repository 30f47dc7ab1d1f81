package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cms-admin/internal/application"
	"github.com/eugenenazirov/cms-admin/internal/config"
	"github.com/eugenenazirov/cms-admin/internal/loader"
	"github.com/eugenenazirov/cms-admin/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("cms-admin", "CMS admin server - serves an admin UI driven by a declarative CMS config")

	serveCmd := kingpinApp.Command("serve", "Load the CMS config and start the HTTP server").Default()
	configFile := serveCmd.Flag("config", "Path to YAML configuration file").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	cmsConfig := serveCmd.Flag("cms-config", "Path or http(s) URL of the CMS config document").String()
	logLevel := serveCmd.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	validateCmd := kingpinApp.Command("validate", "Load and parse a CMS config document, then exit")
	validateSource := validateCmd.Arg("source", "Path or http(s) URL of the CMS config document").Required().String()
	validateTimeout := validateCmd.Flag("timeout", "Timeout for fetching remote documents").Default("10s").Duration()

	switch kingpin.MustParse(kingpinApp.Parse(os.Args[1:])) {
	case validateCmd.FullCommand():
		os.Exit(runValidate(*validateSource, *validateTimeout))
	case serveCmd.FullCommand():
		overrides := &config.CLIOverrides{
			ConfigFile: *configFile,
		}
		if *port != "" {
			overrides.Port = port
		}
		if *cmsConfig != "" {
			overrides.CMSConfigSource = cmsConfig
		}
		if *logLevel != "" {
			overrides.LogLevel = logLevel
		}
		if *rateLimitRPSFlag >= 0 {
			overrides.RateLimitRPS = rateLimitRPSFlag
		}
		if *rateLimitBurstFlag >= 0 {
			overrides.RateLimitBurst = rateLimitBurstFlag
		}
		runServe(overrides)
	}
}

func runServe(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func runValidate(rawSource string, timeout time.Duration) int {
	logger, err := logging.New("info")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	return validate(context.Background(), rawSource, loader.New(loader.WithTimeout(timeout)), logger)
}

// validate returns the process exit code for a validation run.
func validate(ctx context.Context, rawSource string, l *loader.Loader, logger *zap.Logger) int {
	src, err := loader.ParseSource(rawSource)
	if err != nil {
		logger.Error("invalid source", zap.String("source", rawSource), zap.Error(err))
		return 1
	}

	cfg, err := l.LoadConfig(ctx, src)
	if err != nil {
		logger.Error("cms config is invalid", zap.String("source", src.String()), zap.Error(err))
		return 1
	}

	logger.Info("cms config is valid",
		zap.String("source", src.String()),
		zap.Int("site_items", len(cfg.Site)),
		zap.Strings("records", cfg.RecordNames()),
	)
	return 0
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
