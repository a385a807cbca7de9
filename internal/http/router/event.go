package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/ticketsync/internal/http/handler/webhook"
)

func EventRouter(router *gin.RouterGroup, handler *webhook.EventHandler) {
	router.POST("", handler.HandleEvent)
	router.POST("/:provider", handler.HandleEvent)
}
