package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/ticketsync/internal/http/dto"
	"basegraph.app/ticketsync/internal/service"
)

type HealthHandler struct {
	health service.HealthService
}

func NewHealthHandler(health service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := h.health.Check(c.Request.Context())
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:          "healthy",
		JiraConnected:   status.JiraConnected,
		GitHubConnected: status.GitHubConnected,
		GitLabConnected: status.GitLabConnected,
		RedisConnected:  status.RedisConnected,
	})
}
