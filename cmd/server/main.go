// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tome/db"
	"tome/internal/audit"
	"tome/internal/auth"
	"tome/internal/document"
	"tome/internal/indexer"
	"tome/internal/jwtoken"
	"tome/internal/objstore"
	"tome/internal/platform/config"
	"tome/internal/platform/httpserver"
	"tome/internal/platform/kafka"
	"tome/internal/platform/logger"
	"tome/internal/platform/metrics"
	"tome/internal/platform/postgres"
	platformredis "tome/internal/platform/redis"
	"tome/internal/rls"
	"tome/internal/search"
	"tome/internal/sharelink"
	httptransport "tome/internal/transport/http"
	"tome/internal/workspace"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Migrations run under the admin DSN: they create the tome_app role and
	// the row-level security policies the runtime role is subject to.
	if err := db.Migrate(cfg.AdminDatabaseURL, log); err != nil {
		return err
	}

	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Close() }()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	store, err := objstore.New(ctx, cfg.S3, cfg.SignedURLTTL)
	if err != nil {
		return err
	}

	m := metrics.New()
	auditStore := audit.NewPostgresStore(pool)
	scoper := rls.New(pool, log, rls.WithBypassRecorder(auditStore))

	jwtSvc := jwtoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	var revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	var lockouts auth.Lockout = auth.NewInMemoryLockout()
	if redisClient != nil {
		revocations = auth.NewBreakerRevocationList(auth.NewRedisRevocationList(redisClient.Client), log)
		lockouts = auth.NewRedisLockout(redisClient.Client)
	}

	authSvc := auth.NewService(scoper, auth.NewPostgresStore(pool), revocations, jwtSvc, auditStore, log, cfg.AccessTokenTTL,
		auth.WithLockout(lockouts))

	wsStore := workspace.NewPostgresStore(pool)
	wsSvc := workspace.NewService(scoper, wsStore, log)

	docStore := document.NewPostgresStore(pool)
	indexWorker := indexer.NewWorker(scoper, docStore, log)

	var presigner document.Presigner
	if store != nil {
		presigner = store
	}
	docSvc := document.NewService(scoper, docStore, presigner, indexWorker, m, log)
	searchSvc := search.NewService(scoper, docStore, log)

	linkSvc := sharelink.NewService(scoper, sharelink.NewPostgresStore(pool), wsStore, docStore, auditStore, m, log, cfg.ShareLinkTTL)

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:           auth.NewHandler(authSvc, log),
		Workspaces:     workspace.NewHandler(wsSvc, log),
		Documents:      document.NewHandler(docSvc, log),
		Search:         search.NewHandler(searchSvc, log),
		ShareLinks:     sharelink.NewHandler(linkSvc, log),
		TokenValidator: jwtoken.NewMiddlewareAdapter(jwtSvc),
		Revocation:     revocations,
		Metrics:        m,
		Logger:         log,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting tome server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if producer != nil {
		outboxWorker := audit.NewWorker(pool, producer, cfg.Kafka.AuditTopic, log)
		g.Go(func() error {
			if err := outboxWorker.Run(gCtx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		if err := indexWorker.Run(gCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}
