package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/md-rashed-zaman/consultdesk/libs/config"
	"github.com/md-rashed-zaman/consultdesk/libs/db"
	"github.com/md-rashed-zaman/consultdesk/libs/httpx"
	"github.com/md-rashed-zaman/consultdesk/libs/kafkax"
	"github.com/md-rashed-zaman/consultdesk/libs/metrics"
	"github.com/md-rashed-zaman/consultdesk/libs/notify"
	otelx "github.com/md-rashed-zaman/consultdesk/libs/otel"
	"github.com/md-rashed-zaman/consultdesk/libs/runtime"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/consultdesk/services/alert-service/internal/alerts"
	"github.com/md-rashed-zaman/consultdesk/services/alert-service/internal/consumer"
	"github.com/md-rashed-zaman/consultdesk/services/alert-service/internal/inbox"
	"github.com/md-rashed-zaman/consultdesk/services/alert-service/internal/worker"
)

func main() {
	if err := config.LoadFile(config.String("CONFIG_FILE", "")); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "alert-service")
	port, err := config.Port("PORT", "8086")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var (
		store     alerts.Store
		inboxRepo consumer.Inbox
		checks    []runtime.ReadyCheck
	)
	if dbURL := config.String("DATABASE_URL", ""); dbURL != "" {
		pool, err := db.Open(ctx, dbURL, db.Options{MaxConns: int32(config.Int("DB_MAX_CONNS", 5))})
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		if config.Bool("DB_AUTO_MIGRATE", true) {
			if err := alerts.Migrate(ctx, pool); err != nil {
				logger.Error("migrate failed", "err", err)
				panic(err)
			}
		}
		store, inboxRepo = alerts.NewRepository(pool), inbox.NewRepository(pool)
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	} else {
		logger.Warn("DATABASE_URL not set, alerts are kept in memory")
		store, inboxRepo = alerts.NewMemory(), inbox.NewMemory()
	}

	processor := alerts.NewProcessor(store, logger)
	registry := metrics.NewRegistry(service)
	registry.MustRegister(processor.Collector())

	brokers := config.String("KAFKA_BROKERS", "")
	if brokers != "" {
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", service),
			Topic:   config.String("KAFKA_CONSUME_TOPIC", notify.TopicAnomalyDetected),
		}, func(ctx context.Context, msg kafka.Message) error {
			err := processor.Handle(ctx, alerts.SourceKafka, kafkax.ExtractEventMeta(msg).EventID, msg.Value)
			if errors.Is(err, alerts.ErrInvalidAlert) {
				logger.Error("invalid alert payload", "err", err)
				return nil
			}
			return err
		})
		go eventConsumer.Run(ctx)
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		w := worker.New(asynq.RedisClientOpt{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		}, worker.Config{
			Queue:       config.String("ALERT_QUEUE", "alerts"),
			Concurrency: config.Int("ALERT_WORKER_CONCURRENCY", 4),
		}, processor, logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("alert worker failed", "err", err)
			}
		}()
	}

	router := mux.NewRouter()
	runtime.RegisterProbes(router, checks...)
	router.Handle("/metrics", registry.Handler()).Methods(http.MethodGet)

	handler := httpx.Chain(router,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "alerts")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.ServeHTTP(ctx, srv, logger, 10*time.Second)
}
