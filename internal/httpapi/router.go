package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shopping-consolidator/internal/logger"
)

// RouterConfig carries the dependencies of the HTTP API.
type RouterConfig struct {
	Service        ListService
	Log            *logger.Logger
	AllowedOrigins []string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}))

	h := &Handler{svc: cfg.Service, log: log.With("service", "HTTPAPI")}

	router.GET("/health", HealthCheck)
	api := router.Group("/api/shopping-lists")
	{
		api.POST("/consolidate", h.Consolidate)
		api.POST("", h.Create)
		api.GET("/:id", h.Get)
		api.DELETE("/:id", h.Delete)
	}

	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
