package routes

import (
	"github.com/gin-gonic/gin"

	"sensevoice-asr/internal/api/v1/handlers"
	"sensevoice-asr/internal/api/v1/services"
)

// ServiceContainer holds everything the routes need.
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	MaxUploadBytes       int64
}

// RegisterRoutes registers the API routes on router.
func RegisterRoutes(router gin.IRouter, container *ServiceContainer) {
	asrHandler := handlers.NewASRHandler(container.TranscriptionService, container.MaxUploadBytes)

	router.POST("/asr", asrHandler.Transcribe)
	router.GET("/health", handlers.Health)
}
