package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/bot"
	"github.com/Stockpesce/deezer-bot/internal/deezer"
	"github.com/Stockpesce/deezer-bot/internal/metrics"
	"github.com/Stockpesce/deezer-bot/internal/searchcache"
	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
}

func run(log zerolog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log = log.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runMigrations(db); err != nil {
		return err
	}
	log.Info().Msg("database ready")

	var cache *searchcache.Cache
	if cfg.RedisAddr != "" {
		cache, err = searchcache.New(ctx, cfg.RedisAddr, cfg.SearchTTL, log)
		if err != nil {
			return err
		}
		defer cache.Close()
		log.Info().Str("addr", cfg.RedisAddr).Msg("search cache enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	api := telegram.NewClient(cfg.BotToken, "")
	b := bot.New(bot.Deps{
		API:     api,
		Updates: api,
		Store:   store.New(db),
		Search:  deezer.NewClient(""),
		Downloader: deezer.NewDownloader(deezer.DownloaderConfig{
			ARLCookie: cfg.ARLCookie,
		}),
		SearchCache:   cache,
		Metrics:       metrics.New(registry),
		Logger:        log,
		BufferChannel: cfg.BufferChannel,
	})

	if err := api.SetMyCommands(ctx, bot.Commands()); err != nil {
		return err
	}

	go func() {
		if err := metrics.Serve(ctx, cfg.OpsAddr, registry); err != nil {
			log.Error().Err(err).Msg("ops server stopped")
		}
	}()

	log.Info().Msg("listening for updates")
	err = b.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("shutting down")
		return nil
	}
	return err
}
