package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sensevoice-asr/internal/api/v1/dto"
)

// Health handles GET /health. It never consults the backend.
//
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{OK: true})
}
