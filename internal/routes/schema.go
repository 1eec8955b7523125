package routes

import (
	"github.com/gin-gonic/gin"

	"datagen/internal/handlers"
)

type SchemaRoutes struct {
	handler *handlers.SchemaHandler
}

func NewSchemaRoutes(handler *handlers.SchemaHandler) *SchemaRoutes {
	return &SchemaRoutes{handler: handler}
}

func (r *SchemaRoutes) RegisterRoutes(router *gin.RouterGroup) {
	schema := router.Group("/schema")
	{
		schema.GET("/template", r.handler.Template)
		schema.POST("/validate", r.handler.Validate)
		schema.POST("/diagram", r.handler.Diagram)
	}
}
