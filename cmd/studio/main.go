package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/muttaqilab/studio/config"
	"github.com/muttaqilab/studio/internal/bootstrap"
	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/intel"
	"github.com/muttaqilab/studio/internal/state"
	"github.com/muttaqilab/studio/internal/web"
)

func main() {
	addr := pflag.String("addr", "", "listen address (default :$PORT)")
	envFile := pflag.String("env", ".env", "path to an optional env file")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.App.LogLevel)}))
	slog.SetDefault(logger)
	bootstrap.SetGinMode(cfg.App.Environment)

	if *addr == "" {
		*addr = ":" + cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	remote, ping, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store unavailable, serving local defaults", "backend", cfg.Store.Backend, "error", err)
		remote, ping = nil, nil
	}

	provider, err := bootstrap.OpenAuth(ctx, cfg, logger)
	if err != nil {
		logger.Error("auth provider unavailable", "error", err)
		provider = nil
	}

	site, err := content.Defaults(time.Now())
	if err != nil {
		logger.Error("failed to load site defaults", "error", err)
		os.Exit(1)
	}

	st := state.New(state.Options{Remote: remote, Auth: provider, Site: site, Logger: logger})
	if err := st.Start(context.Background()); err != nil {
		logger.Error("state store did not start, remote marked down", "error", err)
	}

	var analyzer intel.Analyzer
	if cfg.Gemini.APIKey != "" {
		gc, err := intel.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
		if err != nil {
			logger.Error("gemini client unavailable, intelligence scans will fail", "error", err)
		} else {
			analyzer = gc
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, intelligence scans will fail")
	}
	runner := intel.NewRunner(analyzer, cfg.Gemini.StepDelay, logger)

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		Backend:        cfg.Store.Backend,
		Ping:           ping,
		AuthConfigured: provider != nil,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
		Logger:         logger,
		Web: web.Deps{
			State:         st,
			Intel:         runner,
			Diagnostics:   cfg.Diagnostics(),
			SecureCookies: cfg.App.Environment == "production",
		},
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := bootstrap.NewServer(*addr, router)

	go func() {
		logger.Info("listening", "addr", *addr, "env", cfg.App.Environment, "backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("server shutdown", "error", err)
	}

	runner.Shutdown()
	st.Close()
	if remote != nil {
		if err := remote.Close(); err != nil {
			logger.Error("store close", "error", err)
		}
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
