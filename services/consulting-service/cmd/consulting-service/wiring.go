package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/md-rashed-zaman/consultdesk/libs/config"
	"github.com/md-rashed-zaman/consultdesk/libs/db"
	"github.com/md-rashed-zaman/consultdesk/libs/kafkax"
	"github.com/md-rashed-zaman/consultdesk/libs/notify"
	"github.com/md-rashed-zaman/consultdesk/libs/runtime"
	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/analytics"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/booking"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/outbox"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/seed"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/storage"
)

// store is everything the booking and analytics services read and write.
// Both storage.Memory and storage.Postgres satisfy it.
type store interface {
	booking.ConsultantRepository
	booking.CatalogRepository
	booking.BookingRepository
	analytics.BookingSource
	analytics.TicketSource
}

type backend struct {
	store  store
	checks []runtime.ReadyCheck
	close  func()
}

func openStorage(ctx context.Context, logger *slog.Logger) (*backend, error) {
	driver := strings.ToLower(config.String("STORAGE_DRIVER", "memory"))
	switch driver {
	case "memory":
		mem := storage.NewMemory()
		if path := config.String("SEED_FILE", ""); path != "" {
			fx, err := seed.LoadFile(path)
			if err != nil {
				return nil, err
			}
			fx.Apply(mem)
			logger.Info("seed fixture loaded", "path", path, "consultants", len(fx.Consultants), "bookings", len(fx.Bookings))
		}
		return &backend{store: mem, close: func() {}}, nil

	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return nil, err
		}
		pool, err := db.Open(ctx, dbURL, db.Options{
			MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
			MinConns: int32(config.Int("DB_MIN_CONNS", 1)),
		})
		if err != nil {
			return nil, fmt.Errorf("db connection failed: %w", err)
		}
		if config.Bool("DB_AUTO_MIGRATE", true) {
			if err := storage.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		outboxRepo := outbox.NewRepository()
		pg := storage.NewPostgres(pool, outboxRepo)

		if path := config.String("SEED_FILE", ""); path != "" {
			fx, err := seed.LoadFile(path)
			if err != nil {
				pool.Close()
				return nil, err
			}
			if err := fx.ApplyCatalog(ctx, pg); err != nil {
				pool.Close()
				return nil, err
			}
		}

		relay := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
			Brokers:   config.String("KAFKA_BROKERS", ""),
			PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
			BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
		})
		go relay.Run(ctx)

		return &backend{
			store:  pg,
			checks: []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}},
			close:  pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

type notifier struct {
	publisher notify.Publisher
	check     runtime.ReadyCheck
	close     func() error
}

func openNotifier(logger *slog.Logger) (*notifier, error) {
	driver := strings.ToLower(config.String("NOTIFY_DRIVER", "log"))
	switch driver {
	case "log":
		return &notifier{publisher: notify.NewLogPublisher(logger), close: func() error { return nil }}, nil

	case "kafka":
		raw := config.String("KAFKA_BROKERS", "")
		brokers := kafkax.SplitBrokers(raw)
		if len(brokers) == 0 {
			return nil, fmt.Errorf("NOTIFY_DRIVER=kafka needs KAFKA_BROKERS")
		}
		p := notify.NewKafkaPublisher(brokers, config.String("ANOMALY_TOPIC", notify.TopicAnomalyDetected))
		return &notifier{
			publisher: p,
			check:     runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(raw)},
			close:     p.Close,
		}, nil

	case "asynq":
		addr := config.String("REDIS_ADDR", "")
		if addr == "" {
			return nil, fmt.Errorf("NOTIFY_DRIVER=asynq needs REDIS_ADDR")
		}
		p := notify.NewAsynqPublisher(asynq.RedisClientOpt{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		}, config.String("ALERT_QUEUE", "alerts"))
		return &notifier{publisher: p, close: p.Close}, nil

	default:
		return nil, fmt.Errorf("unknown NOTIFY_DRIVER %q", driver)
	}
}

// openRedis returns nil when REDIS_ADDR is unset.
func openRedis() *redis.Client {
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
}

func redisReadyCheck(rdb *redis.Client) runtime.ReadyCheck {
	if rdb == nil {
		return runtime.ReadyCheck{Name: "redis"}
	}
	return runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}
