package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/di"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/metrics"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/repository"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/service"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/config"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/database"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/logger"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/middleware"
	pkgredis "github.com/cheeksnpeeps/amenity-scheduler/pkg/redis"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting amenity scheduler",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// Tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Tracing init failed, continuing without traces", zap.Error(err))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn("Metrics init failed", zap.Error(err))
	}

	// Database
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected",
		zap.Int32("min_conns", cfg.Database.MinConns),
		zap.Int32("max_conns", cfg.Database.MaxConns),
	)

	// Redis
	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	})
	if err != nil {
		appLog.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected", zap.Int("pool_size", cfg.Redis.PoolSize))

	// Kafka event publisher; the scheduler stays up when brokers are down
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected", zap.String("topic", cfg.Kafka.Topic))
	}
	defer eventPublisher.Close()

	// Repositories
	amenityRepo := repository.NewPostgresAmenityRepository(db.Pool(), cfg.Scheduler.StoreTimeout)
	store := repository.NewPostgresReservationStore(db.Pool(), cfg.Scheduler.StoreTimeout)
	slotCache := repository.NewRedisSlotCache(redisClient.Client(), cfg.Scheduler.SlotCacheTTL)

	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		AmenityRepo:    amenityRepo,
		Store:          store,
		SlotCache:      slotCache,
		EventPublisher: eventPublisher,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	router.Use(middleware.RequestLogger("/health", "/ready", "/metrics"))

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)
	router.GET("/metrics", func(c *gin.Context) {
		stats := db.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db_pool": gin.H{
				"total_conns":    stats.TotalConns(),
				"idle_conns":     stats.IdleConns(),
				"acquired_conns": stats.AcquiredConns(),
				"max_conns":      stats.MaxConns(),
			},
		})
	})

	idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient.Client())
	idempotencyConfig.TTL = cfg.Scheduler.IdempotencyTTL

	v1 := router.Group("/api/v1")
	v1.Use(middleware.UserIdentity(false))
	{
		amenities := v1.Group("/amenities")
		{
			amenities.POST("/:id/bookings",
				middleware.UserIdentity(true),
				middleware.IdempotencyMiddleware(idempotencyConfig),
				container.BookingHandler.BookAmenity,
			)
			amenities.GET("/:id/availability", container.BookingHandler.CheckAvailability)
			amenities.GET("/:id/slots", container.CalendarHandler.GetSlots)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("/:id/cancel",
				middleware.UserIdentity(true),
				middleware.IdempotencyMiddleware(idempotencyConfig),
				container.BookingHandler.CancelBooking,
			)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
			bookings.GET("", container.CalendarHandler.GetBookings)
		}

		v1.GET("/calendar", container.CalendarHandler.GetCalendar)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info("Amenity scheduler listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
