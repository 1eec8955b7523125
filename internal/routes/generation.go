package routes

import (
	"github.com/gin-gonic/gin"

	"datagen/internal/handlers"
)

type GenerationRoutes struct {
	handler *handlers.GenerationHandler
	limit   gin.HandlerFunc
}

// NewGenerationRoutes registers the generation endpoints. limit guards the
// endpoint that calls the inference service and may be nil.
func NewGenerationRoutes(handler *handlers.GenerationHandler, limit gin.HandlerFunc) *GenerationRoutes {
	return &GenerationRoutes{handler: handler, limit: limit}
}

func (r *GenerationRoutes) RegisterRoutes(router *gin.RouterGroup) {
	generations := router.Group("/generations")
	{
		create := []gin.HandlerFunc{r.handler.CreateGeneration}
		if r.limit != nil {
			create = append([]gin.HandlerFunc{r.limit}, create...)
		}
		generations.POST("", create...)
		generations.GET("", r.handler.ListGenerations)
		generations.GET("/:id", r.handler.GetGeneration)
	}
}
