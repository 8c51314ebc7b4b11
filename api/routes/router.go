// api/routes/router.go
package routes

import (
	"eventx/internal/cancellation"
	"eventx/internal/checkin"
	"eventx/internal/events"
	"eventx/internal/inventory"
	"eventx/internal/notifications"
	"eventx/internal/purchases"
	"eventx/internal/shared/config"
	"eventx/internal/shared/database"
	"eventx/internal/tickets"
	"eventx/pkg/cache"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.Producer

	// Shared services, wired once and injected across domains
	cacheService  cache.Service
	eventRepo     events.Repository
	eventService  events.Service
	ticketRepo    tickets.Repository
	ticketService tickets.Service
	allocator     inventory.Allocator
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Shared dependencies first: the domains below all hang off these
	r.setupSharedServices()

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupEventRoutes(api)
		r.setupTicketRoutes(api)
		r.setupPurchaseRoutes(api)
		r.setupCheckInRoutes(api)
		r.setupCancellationRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "eventx-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "eventx-backend",
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
			"status":       "operational",
			"api_version":  r.config.APIVersion,
			"store_driver": r.config.StoreDriver,
			"timestamp":    time.Now(),
		})
	})
}

// setupSharedServices wires the repositories, the allocator and the
// cross-domain injections every route group depends on. Store driver
// selection happens here: postgres repos against the shared gorm handle,
// or the in-memory repos for local runs and tests.
func (r *Router) setupSharedServices() {
	if r.config.UsesMemoryStore() {
		r.eventRepo = events.NewMemoryRepository()
		r.ticketRepo = tickets.NewMemoryRepository()
	} else {
		r.eventRepo = events.NewRepository(r.db.GetPostgreSQL())
		r.ticketRepo = tickets.NewRepository(r.db.GetPostgreSQL())
	}

	r.eventService = events.NewService(r.eventRepo)
	r.eventService.SetTicketTallier(r.ticketRepo)

	// Inventory: the store is always authoritative; Redis counters in
	// front of it turn sold-out rejections into a single round trip.
	r.allocator = inventory.NewStoreAllocator(r.eventRepo)
	if r.db.Redis != nil {
		counters := inventory.NewAtomicCounterOps(r.db.Redis)
		r.allocator = inventory.NewGatedAllocator(r.allocator, counters)
	}
	r.eventService.SetCounterForgetter(r.allocator)

	r.ticketService = tickets.NewService(r.ticketRepo, r.eventService, r.allocator, r.producer, r.config.Resale)

	if r.db.Redis != nil {
		r.cacheService = cache.NewService(r.db.Redis)
		r.eventService.SetCacheService(r.cacheService)
		r.ticketService.SetCacheService(r.cacheService)
	}
}

// setupEventRoutes configures event catalogue routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventController := events.NewController(r.eventService)
	events.SetupEventRoutes(rg, eventController)
}

// setupTicketRoutes configures ticket lifecycle and resale routes
func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketController := tickets.NewController(r.ticketService)
	tickets.SetupTicketRoutes(rg, ticketController)
}

// setupPurchaseRoutes configures purchase routes
func (r *Router) setupPurchaseRoutes(rg *gin.RouterGroup) {
	purchaseService := purchases.NewService(r.eventService, r.ticketService, r.allocator, r.producer)
	purchaseController := purchases.NewController(purchaseService)
	purchases.SetupPurchaseRoutes(rg, purchaseController)
}

// setupCheckInRoutes configures gate check-in routes
func (r *Router) setupCheckInRoutes(rg *gin.RouterGroup) {
	checkinService := checkin.NewService(r.ticketRepo, r.eventService, r.producer)
	checkinController := checkin.NewController(checkinService)
	checkin.SetupCheckInRoutes(rg, checkinController)
}

// setupCancellationRoutes configures event cancellation and refund routes
func (r *Router) setupCancellationRoutes(rg *gin.RouterGroup) {
	var cancellationRepo cancellation.Repository
	if r.config.UsesMemoryStore() {
		cancellationRepo = cancellation.NewMemoryRepository()
	} else {
		cancellationRepo = cancellation.NewRepository(r.db.GetPostgreSQL())
	}

	cancellationService := cancellation.NewService(cancellationRepo, r.eventService, r.ticketService, r.ticketRepo, r.producer)
	cancellationController := cancellation.NewController(cancellationService)
	cancellation.SetupCancellationRoutes(rg, cancellationController)
}
