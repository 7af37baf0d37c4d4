package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tickhubhq/tickhub-backend/internal/handlers"
	"github.com/tickhubhq/tickhub-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	SyncHandler         *handlers.SyncHandler
	LinkingHandler      *handlers.LinkingHandler
	RecordsHandler      *handlers.RecordsHandler
	MappingsHandler     *handlers.MappingsHandler
	SyncLogsHandler     *handlers.SyncLogsHandler
	ColumnsHandler      *handlers.ColumnsHandler
	IntegrationsHandler *handlers.IntegrationsHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("tickhub-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Sync
	api.POST("/sync/run", cfg.SyncHandler.RunOrganization)
	api.POST("/sync/:integrationId/run", cfg.SyncHandler.RunIntegration)
	api.GET("/sync/logs", cfg.SyncLogsHandler.List)

	// Linking
	api.POST("/linking/run", cfg.LinkingHandler.Run)

	// Records
	api.GET("/records", cfg.RecordsHandler.List)

	// Mappings
	api.GET("/mappings", cfg.MappingsHandler.List)
	api.POST("/mappings", cfg.MappingsHandler.Create)
	api.DELETE("/mappings/:mappingId", cfg.MappingsHandler.Delete)

	// Custom columns
	api.GET("/columns", cfg.ColumnsHandler.List)
	api.POST("/columns", cfg.ColumnsHandler.Create)

	// Integrations
	api.GET("/integrations", cfg.IntegrationsHandler.List)
	api.POST("/integrations", cfg.IntegrationsHandler.Create)

	return router
}
