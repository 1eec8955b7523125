package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datagen/internal/models"
	"datagen/internal/responses"
	"datagen/internal/schema"
	"datagen/internal/services"
)

type SchemaHandler struct {
	schemaService *services.SchemaService
}

func NewSchemaHandler(schemaService *services.SchemaService) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
	}
}

// Template handles GET /api/v1/schema/template
func (h *SchemaHandler) Template(c *gin.Context) {
	responses.Success(c, http.StatusOK, gin.H{
		"table":     models.DefaultTable(),
		"column":    models.DefaultColumn(),
		"dataTypes": models.DataTypes,
	}, "Schema template")
}

// Validate handles POST /api/v1/schema/validate
func (h *SchemaHandler) Validate(c *gin.Context) {
	var req schema.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	report := h.schemaService.Check(req.Tables)
	if !report.Valid {
		responses.Invalid(c, http.StatusUnprocessableEntity, report, report.Errors, report.Messages, schemaRejected)
		return
	}

	responses.Success(c, http.StatusOK, report, "Schema is valid")
}

// Diagram handles POST /api/v1/schema/diagram
func (h *SchemaHandler) Diagram(c *gin.Context) {
	var req schema.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"mermaid": h.schemaService.Diagram(req.Tables),
	}, "Schema diagram generated successfully")
}
