package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "trackr/internal/adapter/http"
	"trackr/internal/adapter/memory"
	"trackr/internal/adapter/postgres"
	"trackr/internal/app"
	"trackr/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type repos interface {
	domain.WeightRepository
	domain.UserRepository
}

func main() {
	setupLogging(env("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := env("ADDR", ":8080")

	var (
		db       repos
		sessions domain.SessionRepository
	)
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		pg, err := postgres.Open(connStr)
		if err != nil {
			log.Fatal().Err(err).Msg("db open")
		}
		defer func() { _ = pg.Close() }()
		db, sessions = pg, postgres.NewSessionRepo(pg)
	} else {
		log.Warn().Msg("DATABASE_URL not set; using in-memory storage")
		mem := memory.New()
		db, sessions = mem, mem.NewSessionRepo()
	}

	weightSvc := app.NewWeightService(db)
	authSvc := app.NewAuthService(db, sessions)

	if u, p := os.Getenv("TRACKR_SETUP_USER"), os.Getenv("TRACKR_SETUP_PASSWORD"); u != "" && p != "" {
		switch err := authSvc.CreateInitialUser(ctx, u, p); {
		case err == nil:
			log.Info().Str("user", u).Msg("created initial user")
		case errors.Is(err, app.ErrUsersExist):
		default:
			log.Fatal().Err(err).Msg("create initial user")
		}
	}

	opts := []adapthttp.Option{adapthttp.WithLogger(log.Logger)}
	if issuer := os.Getenv("OIDC_ISSUER"); issuer != "" {
		provider, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			log.Fatal().Err(err).Str("issuer", issuer).Msg("oidc provider")
		}
		verifier := provider.Verifier(&oidc.Config{ClientID: os.Getenv("OIDC_CLIENT_ID")})
		opts = append(opts, adapthttp.WithOIDC(verifier))
		log.Info().Str("issuer", issuer).Msg("accepting OIDC bearer tokens")
	}

	go sweepSessions(ctx, authSvc, time.Hour)

	srv := &http.Server{
		Addr:              addr,
		Handler:           adapthttp.New(weightSvc, authSvc, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
}

func sweepSessions(ctx context.Context, auth *app.AuthService, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := auth.SweepExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("sweep expired sessions")
				continue
			}
			log.Debug().Int64("removed", n).Msg("swept expired sessions")
		}
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
