package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/cinedigest/cinedigest/internal/app"
	"github.com/cinedigest/cinedigest/internal/buildinfo"
	"github.com/cinedigest/cinedigest/internal/config"
)

func main() {
	configPath := flag.String("config", "settings.toml", "Chemin du fichier de configuration TOML")
	outPath := flag.String("out", "", "Écrit le digest HTML dans ce fichier")
	send := flag.Bool("send", false, "Envoie le digest via Mailgun")
	initConfig := flag.Bool("init", false, "Écrit un fichier de configuration d'exemple et sort")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "cinedigest").Logger()

	if *initConfig {
		if _, err := os.Stat(*configPath); err == nil {
			fmt.Fprintln(os.Stderr, "Refus d'écraser:", *configPath)
			os.Exit(2)
		}
		if err := os.WriteFile(*configPath, []byte(config.Sample()), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "Erreur:", err)
			os.Exit(1)
		}
		fmt.Println("Configuration d'exemple écrite:", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Info().Interface("build", buildinfo.Current()).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := buildPipeline(logger, cfg, *send)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("run failed")
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(result.HTML), 0o644); err != nil {
			logger.Fatal().Err(err).Msg("failed to write digest")
		}
		logger.Info().Str("path", *outPath).Msg("digest written")
	}
	if !*send && *outPath == "" {
		fmt.Println(result.HTML)
	}
}

func buildPipeline(logger zerolog.Logger, cfg *config.Config, send bool) (*app.Pipeline, error) {
	listings := app.NewListingsClient(logger.With().Str("component", "listings").Logger()).
		WithBaseURL(cfg.Listings.BaseURL).
		WithCinemas(cfg.Listings.Cinemas).
		WithConcurrency(cfg.Listings.Concurrency)

	imdb := app.NewIMDBService().WithBaseURL(cfg.IMDB.BaseURL)
	resolver := app.NewResolver(logger.With().Str("component", "imdb").Logger(), imdb).
		WithConcurrency(cfg.IMDB.Concurrency)

	renderer, err := app.NewRenderer()
	if err != nil {
		return nil, err
	}

	var mailer *app.Mailer
	if send {
		mailer, err = app.NewMailer(cfg.Mailgun.Domain, cfg.Mailgun.APIKey, cfg.Mailgun.From, cfg.Mailgun.Recipients)
		if err != nil {
			return nil, err
		}
		mailer.WithBaseURL(cfg.Mailgun.BaseURL)
	}

	return app.NewPipeline(logger, listings, resolver, renderer, mailer, nil, app.PipelineOptions{
		Days:     cfg.Listings.Days,
		Approved: cfg.Languages.Approved,
		Windows:  cfg.Windows().For,
		Enrich:   cfg.IMDB.Enrich,
	}), nil
}
