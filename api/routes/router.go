// api/routes/router.go
package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/evenfouryou/Event-Four-You-2026-sub000/docs"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/cancellation"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/fiscal"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/notifications"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/payments"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/clock"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/tickets"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/cache"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	clock  clock.Clock

	cacheService cache.Service
	publisher    notifications.Publisher
	refundJobs   *cancellation.JobProcessor
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		clock:        clock.NewSystem(),
		cacheService: cache.NewService(db.Redis),
		publisher:    notifications.NoopPublisher{},
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.setupPublisher()

	auth := middleware.JWTAuthWithConfig(r.config)
	pg := r.db.PostgreSQL
	tx := r.db.Transactor()

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())

	// Ticketed events
	eventRepo := events.NewRepository(pg)
	eventService := events.NewService(eventRepo)
	eventService.SetCacheService(r.cacheService)
	events.SetupEventRoutes(api, events.NewController(eventService), auth)

	// Sector & seat registry
	seatService := seats.NewService(seats.NewRepository(pg), tx, r.clock)
	seatService.SetCacheService(r.cacheService)
	if r.config.PubNub.Enabled {
		seatService.SetBroadcaster(notifications.NewAvailabilityBroadcaster(r.config.PubNub))
		logger.GetDefault().Info("📡 Live availability broadcasting enabled",
			slog.String("channel_prefix", r.config.PubNub.ChannelPrefix))
	}
	seats.SetupSeatRoutes(api, seats.NewController(seatService), auth)

	// Fiscal collaborators
	sealer, err := fiscal.NewSealer(r.config.Fiscal.SealKey)
	if err != nil {
		return fmt.Errorf("fiscal sealer: %w", err)
	}
	location, err := fiscal.LoadLocation(r.config.Fiscal.Timezone)
	if err != nil {
		return fmt.Errorf("fiscal timezone: %w", err)
	}
	var device fiscal.DeviceMonitor = fiscal.StaticDeviceMonitor(true)
	if r.config.Fiscal.DeviceRequired {
		device = fiscal.NewRedisDeviceMonitor(r.db.Redis, r.config.Fiscal.DeviceReadyKey, r.config.Fiscal.DeviceCheckTimeout)
	}

	gateway, err := payments.NewGateway(r.config.Payment)
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}

	// Ticket lifecycle
	ticketRepo := tickets.NewRepository(pg)
	ticketService := tickets.NewService(tickets.Dependencies{
		Repo:      ticketRepo,
		Events:    eventRepo,
		Registry:  seatService,
		Numberer:  fiscal.NewNumberer(pg),
		Sealer:    sealer,
		Device:    device,
		Location:  location,
		Tx:        tx,
		Gateway:   gateway,
		Publisher: r.publisher,
		Clock:     r.clock,
	})

	// Cancellation & refund coordinator
	locker := cancellation.NewRedisRefundLocker(r.db.Redis, r.config.Refund.LockTTL)
	cancellationService := cancellation.NewService(cancellation.NewRepository(pg), ticketRepo, tx,
		gateway, locker, r.publisher, r.clock)
	cancellationService.SetCacheService(r.cacheService)
	tickets.SetRefunder(ticketService, cancellationService, cancellationService)

	tickets.SetupTicketRoutes(api, tickets.NewController(ticketService), auth)
	cancellation.SetupCancellationRoutes(api, cancellation.NewController(cancellationService), auth)

	if r.config.Refund.RetryEnabled {
		r.refundJobs = cancellation.NewJobProcessor(cancellationService, cancellation.JobConfigFrom(r.config.Refund))
	}

	logger.GetDefault().Info("✅ Routes configured",
		slog.String("payment_provider", gateway.Name()),
		slog.Bool("fiscal_device_required", r.config.Fiscal.DeviceRequired),
		slog.Bool("refund_retry", r.refundJobs != nil),
	)
	return nil
}

// StartBackground launches background workers. They stop when ctx is done.
func (r *Router) StartBackground(ctx context.Context) {
	if r.refundJobs != nil {
		r.refundJobs.Start(ctx)
	}
}

// Close stops background workers and flushes the event publisher
func (r *Router) Close() {
	if r.refundJobs != nil {
		r.refundJobs.Stop()
	}
	if err := r.publisher.Close(); err != nil {
		logger.GetDefault().Error("Failed to close lifecycle publisher", slog.Any("error", err))
	}
}

func (r *Router) setupPublisher() {
	if !r.config.Kafka.Enabled {
		logger.GetDefault().Info("Kafka disabled: ticket lifecycle events will not be published")
		return
	}
	publisher, err := notifications.NewKafkaPublisher(notifications.ProducerConfigFrom(r.config.Kafka))
	if err != nil {
		logger.GetDefault().Error("Failed to initialize Kafka publisher, continuing without lifecycle events",
			slog.Any("error", err))
		return
	}
	r.publisher = publisher
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketing-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketing-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
