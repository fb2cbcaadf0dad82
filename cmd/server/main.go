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

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	accounthandler "coreteller/internal/account/handler"
	accountmetrics "coreteller/internal/account/metrics"
	accountservice "coreteller/internal/account/service"
	accountstore "coreteller/internal/account/store"
	accountstoreaccount "coreteller/internal/account/store/account"
	accountstorecustomer "coreteller/internal/account/store/customer"
	accountstoreplan "coreteller/internal/account/store/plan"
	fdhandler "coreteller/internal/fd/handler"
	fdmetrics "coreteller/internal/fd/metrics"
	fdservice "coreteller/internal/fd/service"
	fdstore "coreteller/internal/fd/store"
	fdstoreplan "coreteller/internal/fd/store/fdplan"
	fdstoredeposit "coreteller/internal/fd/store/fixeddeposit"
	"coreteller/internal/jwttoken"
	"coreteller/internal/platform/config"
	"coreteller/internal/platform/httpserver"
	"coreteller/internal/platform/logger"
	platformmetrics "coreteller/internal/platform/metrics"
	"coreteller/internal/platform/middleware"
	platformredis "coreteller/internal/platform/redis"
	"coreteller/pkg/platform/audit"
	auditkafka "coreteller/pkg/platform/audit/kafka"
	auditmemory "coreteller/pkg/platform/audit/store/memory"
	auditpostgres "coreteller/pkg/platform/audit/store/postgres"
	auditworker "coreteller/pkg/platform/audit/worker"
)

// main wires the stores, services, and HTTP surface. Business rules live in
// the internal service packages; this file only decides which backing
// implementations run.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		customerStore accountservice.CustomerStore
		planStore     accountservice.PlanStore
		accountStore  accountservice.AccountStore
		fdPlanStore   fdservice.FdPlanStore
		depositStore  fdservice.FixedDepositStore
		auditStore    audit.Store
		storeTx       accountservice.StoreTx
	)

	if cfg.PostgresURL != "" {
		db, err := sql.Open("pgx", cfg.PostgresURL)
		if err != nil {
			log.Error("open postgres", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "err", err)
			os.Exit(1)
		}

		customerStore = accountstorecustomer.NewPostgres(db)
		accountStore = accountstoreaccount.NewPostgres(db)
		fdPlanStore = fdstoreplan.NewPostgres(db)
		depositStore = fdstoredeposit.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		storeTx = newPostgresTx(db)

		planPg := accountstoreplan.NewPostgres(db)
		planStore = planPg
		redisClient, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("connect redis", "err", err)
			os.Exit(1)
		}
		if redisClient != nil {
			defer redisClient.Close()
			planStore = accountstoreplan.NewCached(planPg, redisClient, cfg.PlanCacheTTL)
			log.Info("plan catalog cache enabled")
		}
	} else {
		customers := accountstorecustomer.NewInMemory()
		plans := accountstoreplan.NewInMemory()
		plans.Seed(accountstore.DefaultSavingsPlans()...)
		accounts := accountstoreaccount.NewInMemory()
		fdPlans := fdstoreplan.NewInMemory()
		fdPlans.Seed(fdstore.DefaultFdPlans()...)

		customerStore = customers
		planStore = plans
		accountStore = accounts
		fdPlanStore = fdPlans
		depositStore = fdstoredeposit.NewInMemory()
		auditStore = auditmemory.New()
		storeTx = accountservice.NewInMemoryStoreTx()
		log.Info("running with in-memory stores")
	}

	auditPub := audit.NewPublisher(log)
	var sink auditworker.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("connect kafka", "err", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("compliance audit sink enabled", "topic", cfg.Kafka.AuditTopic)
	}
	worker := auditworker.New(auditStore, sink, auditPub.Events(), log)

	accountSvc := accountservice.New(customerStore, planStore, accountStore,
		accountservice.WithTx(storeTx),
		accountservice.WithAudit(auditPub),
		accountservice.WithMetrics(accountmetrics.New()),
		accountservice.WithLogger(log),
	)
	fdSvc := fdservice.New(customerStore, planStore, accountStore, fdPlanStore, depositStore,
		fdservice.WithTx(storeTx),
		fdservice.WithAudit(auditPub),
		fdservice.WithMetrics(fdmetrics.New()),
		fdservice.WithLogger(log),
	)

	tokens := jwttoken.NewManager(cfg.JWTSigningKey)
	httpMetrics := platformmetrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(httpMetrics))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/agent", func(r chi.Router) {
		r.Use(middleware.RequireAgentAuth(tokens, log))
		accounthandler.New(accountSvc, log).Register(r)
		fdhandler.New(fdSvc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting coreteller", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := worker.Run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}
