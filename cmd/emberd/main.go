package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"emberchain/config"
	"emberchain/core"
	"emberchain/core/events"
	"emberchain/core/types"
	"emberchain/gateway/middleware"
	"emberchain/gateway/routes"
	"emberchain/observability"
	"emberchain/observability/logging"
	"emberchain/observability/otel"
	"emberchain/storage"
)

const (
	envName         = "EMBER_ENV"
	envOtelEnable   = "EMBER_OTEL"
	envOtelEndpoint = "EMBER_OTEL_ENDPOINT"
)

// observedEmitter counts every engine event and surfaces it on the debug log.
type observedEmitter struct {
	logger *slog.Logger
}

func (e observedEmitter) Emit(evt events.Event) {
	observability.Events().RecordEvent(evt.EventType())
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	payload := carrier.Event()
	if payload == nil {
		return
	}
	args := make([]any, 0, 2+2*len(payload.Attributes))
	args = append(args, "type", payload.Type)
	for key, value := range payload.Attributes {
		args = append(args, key, value)
	}
	e.logger.Debug("engine event", args...)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envName))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup("emberd", env, cfg.LogLevel, cfg.LogPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if enabled(os.Getenv(envOtelEnable)) {
		shutdown, err := otel.Init(ctx, otel.Config{
			ServiceName: "emberd",
			Environment: env,
			Endpoint:    strings.TrimSpace(os.Getenv(envOtelEndpoint)),
			Insecure:    true,
			Metrics:     true,
			Traces:      true,
		})
		if err != nil {
			logger.Error("failed to initialise telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", slog.Any("error", err))
			}
		}()
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	emitter := observedEmitter{logger: logger}
	node, err := core.NewNode(db, cfg.Global, emitter, logger)
	if err != nil {
		logger.Error("failed to construct node", slog.Any("error", err))
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimit{
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
		Burst:             cfg.Gateway.Burst,
	})
	obs := middleware.NewObservability("emberd", logger, true)
	router := routes.New(routes.Config{
		Backend:       node,
		RateLimiter:   limiter,
		Observability: obs,
		CORS:          middleware.CORSConfig{},
	})

	server := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Gateway.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Gateway.WriteTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "address", cfg.ListenAddress)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gateway failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("gateway shutdown failed", slog.Any("error", err))
	}
}

func enabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
