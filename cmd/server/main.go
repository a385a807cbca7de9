package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/ticketsync/common/id"
	"basegraph.app/ticketsync/common/logger"
	"basegraph.app/ticketsync/common/otel"
	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/dispatch"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/http/middleware"
	httprouter "basegraph.app/ticketsync/internal/http/router"
	"basegraph.app/ticketsync/internal/mapper"
	"basegraph.app/ticketsync/internal/queue"
	"basegraph.app/ticketsync/internal/service"
	"basegraph.app/ticketsync/internal/store"
	"basegraph.app/ticketsync/internal/strategy"
)

const resultStreamMaxLen = 10000

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	sentryEnabled, err := logger.SetupSentry(cfg.Sentry, cfg.OTel.ServiceVersion)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize sentry", "error", err)
		os.Exit(1)
	}
	if sentryEnabled {
		defer logger.FlushSentry(2 * time.Second)
	}

	slog.InfoContext(ctx, "ticketsync starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	deliveries := store.NewNopDeliveryStore()
	var producer queue.Producer
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Redelivery detection and the result stream degrade; webhooks are still processed.
			slog.WarnContext(ctx, "redis unreachable at startup", "error", err)
		} else {
			slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.ResultStream)
		}

		deliveries = store.NewRedisDeliveryStore(redisClient, cfg.Redis.DeliveryTTL)
		producer = queue.NewRedisProducer(redisClient, cfg.Redis.ResultStream, resultStreamMaxLen, slog.Default())
		defer producer.Close()
	} else {
		slog.InfoContext(ctx, "redis disabled, redelivery detection off")
	}

	conns, configured, err := service.NewConnections(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create clients", "error", err)
		os.Exit(1)
	}
	if !configured.JiraConnected {
		slog.WarnContext(ctx, "jira not configured, transitions will fail")
	}
	slog.InfoContext(ctx, "clients configured",
		"jira", configured.JiraConnected,
		"github", configured.GitHubConnected,
		"gitlab", configured.GitLabConnected,
	)

	dispatcher := dispatch.New(strategy.NewRegistry(), dispatch.WithDefectReporter(
		func(ctx context.Context, env event.Envelope, kind event.Kind, err error) {
			logger.CaptureDefect(ctx, err, map[string]any{
				"event_label": env.Label(),
				"event_kind":  kind.String(),
			})
		},
	))

	services := service.NewServices(service.ServicesParams{
		Dispatcher:  dispatcher,
		Connections: conns,
		Transitions: cfg.Transitions,
		Deliveries:  deliveries,
		Producer:    producer,
		Configured:  configured,
		Logger:      slog.Default(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Mappers: mapper.NewMapperRegistry(),
	})

	return router
}

const banner = `
 _   _      _        _                          
| |_(_) ___| | _____| |_ ___ _   _ _ __   ___ 
| __| |/ __| |/ / _ \ __/ __| | | | '_ \ / __|
| |_| | (__|   <  __/ |_\__ \ |_| | | | | (__ 
 \__|_|\___|_|\_\___|\__|___/\__, |_| |_|\___|
                             |___/            
`
