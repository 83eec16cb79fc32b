package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	adapthttp "nutrigo/internal/adapter/http"
	"nutrigo/internal/adapter/localauth"
	"nutrigo/internal/adapter/memory"
	"nutrigo/internal/adapter/oidc"
	"nutrigo/internal/adapter/postgres"
	redisadapter "nutrigo/internal/adapter/redis"
	"nutrigo/internal/adapter/sqlite"
	"nutrigo/internal/app"
	"nutrigo/internal/config"
	"nutrigo/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := newLogger(cfg.App)
	ctx := context.Background()

	loc := time.Local
	if cfg.App.Timezone != "" {
		loc, err = time.LoadLocation(cfg.App.Timezone)
		if err != nil {
			log.Fatal().Err(err).Str("tz", cfg.App.Timezone).Msg("invalid timezone")
		}
	}

	var cache domain.Cache
	switch strings.ToLower(cfg.Cache.Backend) {
	case config.CacheRedis:
		rc, err := redisadapter.Open(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis open failed")
		}
		defer func() { _ = rc.Close() }()
		cache = rc
	default:
		sc, err := sqlite.Open(cfg.Cache.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("sqlite open failed")
		}
		cache = sc
	}

	var profiles domain.ProfileStore
	if cfg.DB.DSN != "" {
		db, err := postgres.Open(cfg.DB.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open failed")
		}
		defer func() { _ = db.Close() }()
		profiles = db
	} else {
		log.Warn().Msg("no database configured, keeping profiles in memory")
		profiles = memory.NewProfileStore()
	}

	var (
		auth  domain.AuthSource
		local *localauth.Source
		sso   *oidc.AuthSource
	)
	if strings.ToLower(cfg.App.Auth) == config.AuthOIDC {
		sso, err = oidc.New(ctx, oidc.Config{
			IssuerURL:    cfg.OIDC.IssuerURL,
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("oidc setup failed")
		}
		auth = sso
	} else {
		local = localauth.New(cache, log)
		auth = local
	}

	sessions := app.NewSessionManager(auth, profiles, cache, log)
	if err := sessions.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("session manager start failed")
	}
	defer sessions.Stop()

	hist := app.NewHistoryStore(cache, log)
	rollup := app.NewRollupScheduler(hist, loc, log)
	defer rollup.Stop()

	srv := adapthttp.New(
		sessions,
		rollup,
		app.NewCalorieService(hist, loc),
		app.NewWaterService(hist, loc),
		app.NewWeightService(hist),
		app.NewSeriesService(hist),
		cfg.App.WebDir,
		log,
	)
	if local != nil {
		srv.WithLocalAuth(local)
	}
	if sso != nil {
		srv.WithSSO(sso)
	}

	log.Info().Str("addr", cfg.App.Addr).Msg("listening")
	if err := http.ListenAndServe(cfg.App.Addr, srv.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(app config.AppConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(app.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = zerolog.ConsoleWriter{Out: os.Stderr}
	if strings.ToLower(app.LogFormat) == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
