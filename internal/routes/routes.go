package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datagen/internal/handlers"
)

func RegisterRoutes(
	router *gin.Engine,
	schemaHandler *handlers.SchemaHandler,
	generationHandler *handlers.GenerationHandler,
	exportHandler *handlers.ExportHandler,
	generationLimit gin.HandlerFunc,
) {
	api := router.Group("/api/v1")

	schemaRoutes := NewSchemaRoutes(schemaHandler)
	schemaRoutes.RegisterRoutes(api)

	generationRoutes := NewGenerationRoutes(generationHandler, generationLimit)
	generationRoutes.RegisterRoutes(api)

	exportRoutes := NewExportRoutes(exportHandler)
	exportRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
