package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"amparo/internal/chat"
	"amparo/internal/children"
	"amparo/internal/identity"
	"amparo/internal/logbook"
	"amparo/internal/notify"
	"amparo/internal/platform/config"
	"amparo/internal/platform/database"
	"amparo/internal/platform/httpserver"
	"amparo/internal/platform/logger"
	"amparo/internal/platform/metrics"
	"amparo/internal/platform/redis"
	"amparo/internal/sponsorship"
	httptransport "amparo/internal/transport/http"
	"amparo/internal/users"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	m := metrics.New()

	var health []httptransport.HealthChecker

	// Stores: postgres when a database is configured, in-memory otherwise so
	// the service runs stand-alone in development.
	var (
		userStore   users.Store
		childStore  children.Store
		ledgerStore sponsorship.Store
		ledgerTx    sponsorship.StoreTx
		chatStore   chat.Store
		logStore    logbook.Store
		chatLedger  chat.Ledger
		logLedger   logbook.Ledger
	)
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL, log)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(cfg.MigrationsPath); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		health = append(health, func(ctx context.Context) error { return db.PingContext(ctx) })

		userStore = users.NewPostgres(db.DB)
		childStore = children.NewPostgres(db.DB)
		pgLedger := sponsorship.NewPostgres(db.DB)
		ledgerStore = pgLedger
		chatLedger = pgLedger
		logLedger = pgLedger
		ledgerTx = newLedgerPostgresTx(db.DB)
		chatStore = chat.NewPostgres(db.DB)
		logStore = logbook.NewPostgres(db.DB)
	} else {
		log.Warn("no database configured, using in-memory stores")
		userStore = users.NewInMemoryStore()
		childStore = children.NewInMemoryStore()
		memLedger := sponsorship.NewInMemoryStore()
		ledgerStore = memLedger
		chatLedger = memLedger
		logLedger = memLedger
		ledgerTx = sponsorship.NewInMemoryTx()
		chatStore = chat.NewInMemoryStore()
		logStore = logbook.NewInMemoryStore()
	}

	// Notification outbox: redis-backed when configured, in-process otherwise.
	var sink notify.Sink = notify.NewInMemorySink()
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sink = notify.NewRedisSink(redisClient)
		health = append(health, redisClient.Health)
	}

	publisher := notify.NewPublisher(userStore, sink, log, m)

	ledger := sponsorship.NewService(ledgerStore, childStore, userStore, ledgerTx, publisher, m, log)
	chatSvc := chat.NewService(chatStore, chatLedger, publisher, m, log)
	logSvc := logbook.NewService(logStore, logLedger, publisher, log)
	childSvc := children.NewService(childStore)

	router := httptransport.NewRouter(httptransport.Deps{
		Sponsorships: ledger,
		Chat:         chatSvc,
		Logbook:      logSvc,
		Children:     childSvc,
		Validator:    identity.NewVerifier(cfg.JWTSigningKey),
		Logger:       log,
		Health:       health,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting amparo", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
