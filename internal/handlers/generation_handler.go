package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datagen/internal/responses"
	"datagen/internal/schema"
	"datagen/internal/services"
	"datagen/internal/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type GenerationHandler struct {
	generationService *services.GenerationService
}

func NewGenerationHandler(generationService *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
	}
}

// CreateGeneration handles POST /api/v1/generations
func (h *GenerationHandler) CreateGeneration(c *gin.Context) {
	var req schema.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	outcome, err := h.generationService.Generate(c.Request.Context(), req.Tables)
	if err != nil {
		failWith(c, err, "Failed to generate data")
		return
	}

	responses.Success(c, http.StatusCreated, outcome, "Data generated successfully")
}

// ListGenerations handles GET /api/v1/generations
func (h *GenerationHandler) ListGenerations(c *gin.Context) {
	limit, err := utils.ParseLimit(c.Query("limit"), defaultListLimit, maxListLimit)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "limit must be a positive integer")
		return
	}

	generations, err := h.generationService.List(c.Request.Context(), limit)
	if err != nil {
		failWith(c, err, "Failed to list generations")
		return
	}

	responses.Success(c, http.StatusOK, generations, "Generations retrieved successfully")
}

// GetGeneration handles GET /api/v1/generations/:id
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid generation ID format")
		return
	}

	detail, err := h.generationService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err, "Failed to get generation")
		return
	}

	responses.Success(c, http.StatusOK, detail, "Generation retrieved successfully")
}
