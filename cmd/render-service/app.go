package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"pushrender/internal/classify"
	"pushrender/internal/config"
	"pushrender/internal/constants"
	"pushrender/internal/deeplink"
	"pushrender/internal/imagefetch"
	"pushrender/internal/ingest"
	"pushrender/internal/logger"
	"pushrender/internal/payload"
	"pushrender/internal/prefs"
	"pushrender/internal/render"
	"pushrender/internal/sink"
	"pushrender/pkg/bootstrap"
	"pushrender/pkg/circuitbreaker"
	"pushrender/pkg/health"
	"pushrender/pkg/metrics"
	"pushrender/pkg/middleware"
	"pushrender/pkg/ratelimit"
	"pushrender/pkg/tracing"
)

const serviceName = "render-service"

type App struct {
	*bootstrap.Base
	redisClient    *redis.Client
	service        *render.Service
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(serviceName)
	}
	return &App{
		Base: bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitBroker(serviceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	a.initRedis()

	if err := a.initService(ctx); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterRenderMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterIngestMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initHTTPServer()

	return nil
}

func (a *App) initRedis() {
	if a.Config.Prefs.Source != "redis" {
		return
	}

	a.redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", a.Config.Redis.Host, a.Config.Redis.Port),
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
}

func (a *App) initService(ctx context.Context) error {
	notificationSink, err := sink.New(a.Config, a.Producer, a.Logger)
	if err != nil {
		return err
	}

	fetcher := imagefetch.NewHTTPFetcher(a.Config.ImageFetch, a.Logger)
	if a.Config.CircuitBreaker.Enabled {
		cbConfig := circuitbreaker.DefaultConfig("image-fetch")
		if a.Config.CircuitBreaker.MaxRequests > 0 {
			cbConfig.MaxRequests = a.Config.CircuitBreaker.MaxRequests
		}
		if a.Config.CircuitBreaker.Interval > 0 {
			cbConfig.Interval = a.Config.CircuitBreaker.Interval
		}
		if a.Config.CircuitBreaker.Timeout > 0 {
			cbConfig.Timeout = a.Config.CircuitBreaker.Timeout
		}
		fetcher = fetcher.WithBreaker(circuitbreaker.NewWrapper(cbConfig))
	}

	var sound prefs.SoundPreference
	if a.redisClient != nil {
		sound = prefs.NewRedisStore(a.redisClient, a.Config.Prefs.SoundEnabled, a.Logger)
	} else {
		sound = prefs.NewStatic(a.Config.Prefs.SoundEnabled)
	}

	classifier := classify.NewClassifier(classify.NewIDAllocator(), a.Logger)
	parser := payload.NewParser(a.Logger)

	a.service = render.NewService(
		a.Config.Render,
		classifier,
		parser,
		fetcher,
		notificationSink,
		sound,
		deeplink.NewURIResolver(),
		a.Logger,
	)
	return nil
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))

	if a.Config.Ingest.RateLimit.Enabled {
		rlConfig := ratelimit.DefaultConfig()
		if a.Config.Ingest.RateLimit.RPS > 0 {
			rlConfig.RPS = a.Config.Ingest.RateLimit.RPS
		}
		if a.Config.Ingest.RateLimit.Burst > 0 {
			rlConfig.Burst = a.Config.Ingest.RateLimit.Burst
		}
		router.Use(ratelimit.RateLimitMiddleware(rlConfig))
	}

	handler := ingest.NewHandler(a.service, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
			}
		}

		if a.redisClient != nil {
			if err := a.redisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("redis close error: %w", err))
			}
		}

		return errs
	})
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	inputTopic := a.Config.Broker.Kafka.InputTopic
	if inputTopic == "" {
		inputTopic = constants.DefaultInputTopic
	}
	g.Go(func() error {
		return a.Consumer.Consume(gCtx, inputTopic, a.service.Process)
	})

	return g.Wait()
}
