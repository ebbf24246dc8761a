package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"schedulerapi/internal/api"
	"schedulerapi/internal/auth"
	"schedulerapi/internal/config"
	"schedulerapi/internal/logging"
	"schedulerapi/internal/mail"
	"schedulerapi/internal/store"
	"schedulerapi/internal/sweep"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// logger is not configured yet
		logging.Setup("info", "console", os.Stderr)
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("open db")
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	jobs := store.NewJobStore(db)
	projects := store.NewProjectStore(db)
	notes := store.NewNotificationStore(db)
	users := store.NewUserStore(db)

	transport, closeTransport, err := newTransport(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Mail.Driver).Msg("mail transport")
	}
	defer closeTransport()
	mailer := mail.NewDispatcher(users, transport)

	tokens, err := auth.NewService(auth.Config{
		Secret:    cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.Issuer,
		Audience:  cfg.Auth.Audience,
		TokenTTL:  cfg.Auth.TokenTTL,
		ClockSkew: cfg.Auth.ClockSkew,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("auth")
	}

	sweeper, err := sweep.New(sweep.Config{
		Schedule:   cfg.Sweep.Schedule,
		DueWindow:  cfg.Sweep.DueWindow,
		JobTimeout: cfg.Sweep.JobTimeout,
	}, jobs, notes, mailer)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep")
	}
	sweepDone := make(chan struct{})
	if cfg.Sweep.Enabled {
		go func() {
			defer close(sweepDone)
			sweeper.Run(ctx)
		}()
	} else {
		close(sweepDone)
		log.Info().Msg("reminder sweep disabled")
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewServer(api.Deps{
			Jobs:          jobs,
			Projects:      projects,
			Notifications: notes,
			Users:         users,
			Tokens:        tokens,
			Mailer:        mailer,
			Logger:        log.Logger,
			SweepState:    func() string { return sweeper.State().String() },
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("db", cfg.Database.Driver).Str("mail", cfg.Mail.Driver).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")

	sweeper.Stop()
	cancel()
	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelTimeout()
	if err := srv.Shutdown(ctxTimeout); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	select {
	case <-sweepDone:
	case <-ctxTimeout.Done():
		log.Warn().Msg("sweep did not stop before shutdown timeout")
	}
}

func newTransport(cfg config.MailConfig) (mail.Transport, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case "http":
		return mail.NewHTTPTransport(cfg.HTTP.URL, cfg.HTTP.Timeout), noop, nil
	case "amqp":
		return mail.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
	default:
		return mail.LogTransport{}, noop, nil
	}
}
