package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"billgraph/internal/dispatch"
	"billgraph/internal/ingest"
	"billgraph/internal/ingest/aggregate"
	"billgraph/internal/ingest/assemble"
	"billgraph/internal/ingest/crawl"
	"billgraph/internal/ingest/fetch"
	"billgraph/internal/ingest/metrics"
	"billgraph/internal/ingest/resolve"
	"billgraph/internal/ingest/store"
	"billgraph/internal/platform/config"
	"billgraph/internal/platform/httpserver"
	"billgraph/internal/platform/logger"
	platformredis "billgraph/internal/platform/redis"
	"billgraph/internal/scheduler"
	httptransport "billgraph/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var st store.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
		st = pg
	} else {
		st = store.NewInMemory()
	}

	var (
		dispatcher dispatch.Dispatcher
		queue      dispatch.Queue
		kafka      *dispatch.Kafka
	)
	switch cfg.QueueBackend {
	case "redis":
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		if client == nil {
			log.Error("redis queue backend requires BILLGRAPH_REDIS_URL")
			os.Exit(1)
		}
		defer client.Close()
		rq := dispatch.NewRedis(client.Client, dispatch.DefaultRedisKey)
		dispatcher, queue = rq, rq
	case "kafka":
		k, err := dispatch.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer k.Close()
		if err := k.EnsureTopic(ctx, 1); err != nil {
			log.Error("ensure kafka topic", "error", err)
			os.Exit(1)
		}
		dispatcher, kafka = k, k
	default:
		mq := dispatch.NewMemory(cfg.QueueSize)
		dispatcher, queue = mq, mq
	}

	tables, err := resolve.LoadTables()
	if err != nil {
		log.Error("load lookup tables", "error", err)
		os.Exit(1)
	}

	fetcher := fetch.NewClient(cfg.FetchTimeout)
	resolver := resolve.New(st, tables, log)
	crawler := crawl.New(st, dispatcher, cfg.ArchiveHost, cfg.MaxDepth, log, m)
	aggregator := aggregate.New(st, log)
	assembler := assemble.New(st, resolver, crawler, aggregator, log, m)
	pipeline := ingest.NewPipeline(fetcher, st, assembler, crawler, log, m)

	if kafka != nil {
		go func() {
			if err := kafka.Run(ctx, pipeline); err != nil && ctx.Err() == nil {
				log.Error("kafka consumer stopped", "error", err)
			}
		}()
	} else {
		pool := dispatch.NewPool(queue, pipeline, cfg.Workers, log, m)
		go func() {
			if err := pool.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("worker pool stopped", "error", err)
			}
		}()
	}

	if cfg.IndexURL != "" {
		sched := scheduler.New(fetcher, dispatcher, cfg.IndexURL, log, m)
		if err := sched.Start(cfg.RefreshSpec); err != nil {
			log.Error("start refresh scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	handler := httptransport.NewHandler(dispatcher, st, log)
	router := httptransport.NewRouter(handler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting billgraph", "addr", cfg.Addr, "queue", cfg.QueueBackend)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
