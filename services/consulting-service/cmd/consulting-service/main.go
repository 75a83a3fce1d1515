package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/md-rashed-zaman/consultdesk/libs/config"
	"github.com/md-rashed-zaman/consultdesk/libs/grpcx"
	"github.com/md-rashed-zaman/consultdesk/libs/httpx"
	"github.com/md-rashed-zaman/consultdesk/libs/metrics"
	otelx "github.com/md-rashed-zaman/consultdesk/libs/otel"
	"github.com/md-rashed-zaman/consultdesk/libs/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/analytics"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/booking"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/cache"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/handlers"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/telemetry"
)

func main() {
	if err := config.LoadFile(config.String("CONFIG_FILE", "")); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "consulting-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9090")
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

	backend, err := openStorage(ctx, logger)
	if err != nil {
		logger.Error("storage setup failed", "err", err)
		panic(err)
	}
	defer backend.close()

	notifier, err := openNotifier(logger)
	if err != nil {
		logger.Error("notifier setup failed", "err", err)
		panic(err)
	}
	defer func() { _ = notifier.close() }()

	rdb := openRedis()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	registry := metrics.NewRegistry(service)
	collectors := telemetry.New()
	registry.MustRegister(collectors.Collectors()...)

	bookingSvc := booking.NewService(backend.store, backend.store, backend.store, logger,
		booking.WithRecorder(collectors),
		booking.WithWorkingWindow(workingWindow(), config.Int("SLOT_STEP_MINUTES", 30)),
	)

	dispatcher := analytics.NewDispatcher(analytics.NewDispatchState(), notifier.publisher, logger,
		config.Seconds("NOTIFY_TIMEOUT_SECONDS", 5*time.Second))
	analyticsOpts := []analytics.Option{analytics.WithRecorder(collectors)}
	if rdb != nil {
		if c := cache.NewSnapshotCache(rdb, config.String("SNAPSHOT_CACHE_KEY", cache.DefaultSnapshotKey),
			config.Seconds("SNAPSHOT_CACHE_TTL_SECONDS", 0)); c != nil {
			analyticsOpts = append(analyticsOpts, analytics.WithCache(c))
		}
	}
	analyticsSvc := analytics.NewService(backend.store, backend.store, dispatcher, logger, analyticsOpts...)

	router := mux.NewRouter()
	checks := append([]runtime.ReadyCheck{notifier.check, redisReadyCheck(rdb)}, backend.checks...)
	runtime.RegisterProbes(router, checks...)
	router.Handle("/metrics", registry.Handler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(registry.Middleware())
	handlers.Register(api,
		handlers.NewBookingHandler(bookingSvc, logger),
		handlers.NewAnalyticsHandler(analyticsSvc),
	)

	middlewares := []httpx.Middleware{
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(config.List("CORS_ALLOWED_ORIGINS"))),
		httpx.WithBodyLimit(int64(config.Int("HTTP_BODY_LIMIT_BYTES", 1<<20))),
	}
	perMinute := config.Int("RATE_LIMIT_PER_MINUTE", 0)
	switch {
	case perMinute > 0 && rdb != nil:
		middlewares = append(middlewares,
			httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, service+":rl").Middleware(logger, true))
	case perMinute > 0:
		middlewares = append(middlewares, httpx.NewRateLimiter(perMinute, time.Minute).Middleware())
	}
	handler := httpx.Chain(router, middlewares...)
	handler = otelhttp.NewHandler(handler, "consulting")

	grpcSrv := grpcx.NewServer()
	grpcSrv.SetServing(service, true)
	go func() {
		if err := grpcSrv.Serve(ctx, ":"+grpcPort, logger); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.ServeHTTP(ctx, srv, logger, 10*time.Second)

	// Let in-flight anomaly notifications finish before the publisher closes.
	dispatcher.Wait()
}

func workingWindow() scheduling.Slot {
	start, ok := scheduling.ValidClock(config.String("WORKDAY_START", "09:00"))
	if !ok {
		start = 9 * 60
	}
	end, ok := scheduling.ValidClock(config.String("WORKDAY_END", "17:00"))
	if !ok {
		end = 17 * 60
	}
	return scheduling.Slot{Start: start, End: end}
}
