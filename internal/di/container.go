package di

import (
	"github.com/cheeksnpeeps/amenity-scheduler/internal/handler"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/repository"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/scheduler"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/service"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/database"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/redis"
)

// Container holds all dependencies for the scheduler service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	AmenityRepo repository.AmenityRepository
	Store       repository.ReservationStore
	SlotCache   service.SlotCache

	// Core
	Validator *scheduler.Validator

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	BookingService  service.BookingService
	CalendarService service.CalendarService

	// Handlers
	HealthHandler   *handler.HealthHandler
	BookingHandler  *handler.BookingHandler
	CalendarHandler *handler.CalendarHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	AmenityRepo    repository.AmenityRepository
	Store          repository.ReservationStore
	SlotCache      service.SlotCache
	EventPublisher service.EventPublisher
	ServiceConfig  *service.BookingServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		AmenityRepo:    cfg.AmenityRepo,
		Store:          cfg.Store,
		SlotCache:      cfg.SlotCache,
		EventPublisher: cfg.EventPublisher,
	}

	// Core rule chain
	c.Validator = scheduler.NewValidator(c.Store)

	// Services
	c.BookingService = service.NewBookingService(
		c.AmenityRepo,
		c.Store,
		c.Validator,
		c.EventPublisher,
		c.SlotCache,
		cfg.ServiceConfig,
	)
	c.CalendarService = service.NewCalendarService(
		c.AmenityRepo,
		c.Store,
		c.SlotCache,
	)

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.CalendarHandler = handler.NewCalendarHandler(c.CalendarService)

	return c
}
