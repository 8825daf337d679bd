package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/breezy/breezy/internal/api"
	"github.com/breezy/breezy/internal/api/middleware"
	"github.com/breezy/breezy/internal/auth"
	"github.com/breezy/breezy/internal/config"
	"github.com/breezy/breezy/internal/session"
	"github.com/breezy/breezy/internal/telemetry"
	"github.com/breezy/breezy/internal/worker"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API",
		Long:  "Start the HTTP API, the background session refresh loop and, when configured, the Pub/Sub worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	log := newLogger(cfg)
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.App.Env).
		Msg("starting Breezy API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		OTLPEndpoint:   cfg.OTel.ExporterOTLPEndpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTel.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTel.ExporterOTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize provider metrics: %w", err)
	}

	wx, err := newWeather(cfg, log, providerMetrics)
	if err != nil {
		return err
	}

	synth, err := newSynthesizer(cfg, cfg.Synth.Seed)
	if err != nil {
		return err
	}

	sessions := session.NewService(session.ServiceConfig{
		Repository:    session.NewInMemoryRepository(cfg.Session.IdleTTL),
		Weather:       wx.service,
		Synthesizer:   synth,
		Logger:        log,
		DefaultQuery:  cfg.Session.DefaultQuery,
		LocateTimeout: cfg.Session.LocateTimeout,
	})
	log.Info().
		Str("default_query", cfg.Session.DefaultQuery).
		Dur("idle_ttl", cfg.Session.IdleTTL).
		Msg("session service initialized")

	tokens := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		Expiry:     cfg.JWT.Expiry,
	})
	if cfg.JWT.SigningKey == config.DevSigningKey {
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			Concurrency: cfg.Refresh.Concurrency,
			Timeout:     cfg.Refresh.Timeout,
			SweepIdle:   true,
			ProbeQuery:  cfg.Session.DefaultQuery,
		},
		Logger:   log,
		Sessions: sessions,
		Probe:    wx.service,
	})
	go refreshJob.Start(ctx, cfg.Refresh.Interval)

	if cfg.PubSub.Enabled() {
		subscriber, err := worker.NewSubscriber(ctx, worker.SubscriberConfig{
			ProjectID:    cfg.PubSub.ProjectID,
			Subscription: cfg.PubSub.Subscription,
			Dispatcher:   worker.NewDispatcher(refreshJob, log),
			Logger:       log,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize pubsub: %w", err)
		}
		defer func() {
			if closeErr := subscriber.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub client")
			}
		}()
		go func() {
			if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub subscriber stopped")
			}
		}()
	}

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Sessions:    sessions,
		Tokens:      tokens,
		Registry:    wx.registry,
		Cache:       wx.service,
		Refresh:     refreshJob,
		RequireTLS:  cfg.App.RequireTLS,
		CORSOrigins: cfg.App.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
