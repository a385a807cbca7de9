package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/ticketsync/internal/http/handler"
	"basegraph.app/ticketsync/internal/http/handler/webhook"
	"basegraph.app/ticketsync/internal/mapper"
	"basegraph.app/ticketsync/internal/service"
)

type RouterConfig struct {
	// Mappers defaults to the GitHub and GitLab mappers.
	Mappers *mapper.MapperRegistry
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	mappers := cfg.Mappers
	if mappers == nil {
		mappers = mapper.NewMapperRegistry()
	}

	healthHandler := handler.NewHealthHandler(services.Health())
	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		eventHandler := webhook.NewEventHandler(services.Events(), mappers)
		EventRouter(v1.Group("/events"), eventHandler)
	}
}
