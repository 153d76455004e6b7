package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cinedigest/cinedigest/internal/adapters/httpapi"
	"github.com/cinedigest/cinedigest/internal/adapters/memorybus"
	"github.com/cinedigest/cinedigest/internal/app"
	"github.com/cinedigest/cinedigest/internal/buildinfo"
	"github.com/cinedigest/cinedigest/internal/config"
)

func main() {
	configPath := flag.String("config", "settings.toml", "Chemin du fichier de configuration TOML")
	addr := flag.String("addr", "", "Adresse d'écoute (prioritaire sur la config)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "cinedigest-server").Logger()
	log.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	logger.Info().Interface("build", buildinfo.Current()).Msg("starting")

	bus := memorybus.New()

	listings := app.NewListingsClient(logger.With().Str("component", "listings").Logger()).
		WithBaseURL(cfg.Listings.BaseURL).
		WithCinemas(cfg.Listings.Cinemas).
		WithConcurrency(cfg.Listings.Concurrency)
	imdb := app.NewIMDBService().WithBaseURL(cfg.IMDB.BaseURL)
	resolver := app.NewResolver(logger.With().Str("component", "imdb").Logger(), imdb).
		WithConcurrency(cfg.IMDB.Concurrency)
	renderer, err := app.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	// En mode serveur le digest part par mail seulement si Mailgun est
	// configuré; sinon on sert uniquement /digest.
	var mailer *app.Mailer
	if cfg.Mailgun.APIKey != "" {
		mailer, err = app.NewMailer(cfg.Mailgun.Domain, cfg.Mailgun.APIKey, cfg.Mailgun.From, cfg.Mailgun.Recipients)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid mailgun config")
		}
		mailer.WithBaseURL(cfg.Mailgun.BaseURL)
	}

	pipeline := app.NewPipeline(logger, listings, resolver, renderer, mailer, bus, app.PipelineOptions{
		Days:     cfg.Listings.Days,
		Approved: cfg.Languages.Approved,
		Windows:  cfg.Windows().For,
		Enrich:   cfg.IMDB.Enrich,
	})

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if interval := cfg.Server.Interval(); interval > 0 {
		scheduler := app.NewRunScheduler(logger.With().Str("component", "scheduler").Logger(), pipeline, interval)
		go scheduler.Run(shutdownCtx)
		logger.Info().Dur("interval", interval).Msg("run scheduler started")
	}

	srv := httpapi.NewServer(logger, pipeline, bus)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", listenAddr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
