package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shala/internal/cache"
	"shala/internal/config"
	"shala/internal/database"
	"shala/internal/external"
	"shala/internal/handlers"
	"shala/internal/logger"
	"shala/internal/messaging"
	"shala/internal/middleware"
	"shala/internal/repository"
	"shala/internal/search"
	"shala/internal/service"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	var valkeyClient *cache.ValkeyClient
	if cfg.CacheEnabled {
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			logger.Get().Warn("Valkey unavailable, continuing without cache", "error", err)
			valkeyClient = nil
		}
	}

	// The search index is advisory. Listing falls back to SQL when it is
	// disabled or unreachable.
	var indexer service.ClassIndexer
	if cfg.SearchEnabled {
		esClient, err := search.NewElasticsearchClient(cfg.Search)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, continuing without search", "error", err)
		} else {
			indexer = esClient
		}
	}

	storageClient := external.NewStorageClient(cfg.Storage)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, indexer)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes(storageClient)

	return server
}

func (s *Server) setupRoutes(storage *external.StorageClient) {
	h := handlers.NewHandlers(s.services, s.valkey, storage)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		classes := api.Group("/classes")
		{
			classes.GET("", h.ListClasses)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.POST("/:id/cancel", h.CancelBooking)
		}

		packages := api.Group("/packages")
		{
			packages.GET("", h.ListPackages)
			packages.POST("/:id/purchase", h.PurchasePackage)
		}

		me := api.Group("/me")
		{
			me.GET("/packages", h.ListMyPackages)
		}

		uploads := api.Group("/uploads")
		{
			uploads.POST("/payment-slip", h.SlipUploadURL)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/classes", h.CreateClass)
			admin.POST("/classes/:id/cancel", h.CancelClass)
			admin.POST("/payments", h.RecordPayment)
			admin.POST("/payments/:id/approve", h.ApprovePayment)
			admin.POST("/payments/:id/reject", h.RejectPayment)
			admin.GET("/settings", h.GetSettings)
			admin.PATCH("/settings", h.UpdateSettings)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shala-api",
		"version": "1.0.0",
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
