package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	attesthandler "lifeledger/internal/attestation/handler"
	attestservice "lifeledger/internal/attestation/service"
	govhandler "lifeledger/internal/governance/handler"
	govservice "lifeledger/internal/governance/service"
	"lifeledger/internal/journal"
	"lifeledger/internal/ledger"
	"lifeledger/internal/notify"
	"lifeledger/internal/platform/config"
	"lifeledger/internal/platform/httpserver"
	"lifeledger/internal/platform/logger"
	"lifeledger/internal/platform/metrics"
	"lifeledger/internal/platform/middleware"
	platformredis "lifeledger/internal/platform/redis"
	"lifeledger/internal/ratelimit"
	httptransport "lifeledger/internal/transport/http"
)

// main wires dependencies and runs the server lifecycle. Business logic lives
// in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ledgerClient, err := ledger.New(ledger.Config{
		Endpoint:       cfg.LedgerEndpoint,
		SigningKey:     cfg.LedgerSigningKey,
		ConfirmTimeout: cfg.ConfirmTimeout,
		ReadTimeout:    cfg.LedgerReadTimeout,
	})
	if err != nil {
		log.Error("ledger client init failed", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()

	attestations, err := attestservice.New(ledgerClient, attestservice.WithMetrics(m))
	if err != nil {
		log.Error("attestation service init failed", "error", err.Error())
		os.Exit(1)
	}
	proposals, err := govservice.New(ledgerClient, govservice.WithMetrics(m))
	if err != nil {
		log.Error("governance service init failed", "error", err.Error())
		os.Exit(1)
	}

	journalStore, closeDB, err := newJournalStore(cfg.DatabaseURL)
	if err != nil {
		log.Error("journal store init failed", "error", err.Error())
		os.Exit(1)
	}
	defer closeDB()
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, receipt journal is in-memory only")
	}

	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err.Error())
		os.Exit(1)
	}

	publisher, err := notify.New(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		log.Error("kafka publisher init failed", "error", err.Error())
		os.Exit(1)
	}

	validator := middleware.NewJWTValidator(cfg.JWTSigningKey)

	attestOpts := []attesthandler.Option{attesthandler.WithJournal(journalStore)}
	govOpts := []govhandler.Option{govhandler.WithJournal(journalStore)}
	if rdb != nil {
		defer rdb.Close()
		limiter := ratelimit.New(rdb.Client, cfg.SubmitPerMinute, time.Minute, log)
		attestOpts = append(attestOpts, attesthandler.WithSubmitLimit(limiter.Middleware))
		govOpts = append(govOpts, govhandler.WithSubmitLimit(limiter.Middleware))
	}
	if publisher != nil {
		defer publisher.Close()
		attestOpts = append(attestOpts, attesthandler.WithNotifier(publisher))
		govOpts = append(govOpts, govhandler.WithNotifier(publisher))
	}

	router := httptransport.NewRouter(
		attesthandler.New(attestations, log, validator, attestOpts...),
		govhandler.New(proposals, log, validator, govOpts...),
	)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting lifeledger gateway", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// newJournalStore picks postgres when a database is configured, otherwise an
// in-memory store. The second return value closes the database handle.
func newJournalStore(databaseURL string) (journal.Store, func(), error) {
	if databaseURL == "" {
		return journal.NewInMemoryStore(), func() {}, nil
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return journal.NewPostgresStore(db), func() { db.Close() }, nil
}
