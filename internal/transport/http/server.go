package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/vbrandao/batepapo-server/internal/config"
	"github.com/vbrandao/batepapo-server/internal/service/messages"
	"github.com/vbrandao/batepapo-server/internal/service/presence"
)

// NewServer builds the HTTP server with all chat routes.
func NewServer(registry *presence.Registry, msgService *messages.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger), IdentityMiddleware())

	participantHandlers := NewParticipantHandlers(registry, logger)
	messageHandlers := NewMessageHandlers(msgService, logger)

	engine.GET("/health", healthHandler)

	engine.POST("/participants", participantHandlers.Register)
	engine.GET("/participants", participantHandlers.List)
	engine.POST("/status", participantHandlers.Status)

	engine.POST("/messages", messageHandlers.Send)
	engine.GET("/messages", messageHandlers.List)
	engine.PUT("/messages/:id", messageHandlers.Edit)
	engine.DELETE("/messages/:id", messageHandlers.Delete)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           cors.AllowAll().Handler(engine),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
