package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"datagen/internal/export"
	"datagen/internal/responses"
	"datagen/internal/services"
)

const schemaRejected = "Schema is invalid"

// failWith maps service errors to status codes. Unknown errors are logged and
// reported as 500 with message.
func failWith(c *gin.Context, err error, message string) {
	var schemaErr *services.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		responses.Invalid(c, http.StatusUnprocessableEntity, nil, schemaErr.Errors, schemaErr.Messages, schemaRejected)
	case errors.Is(err, services.ErrGenerationNotFound):
		responses.Fail(c, http.StatusNotFound, err, "Generation not found")
	case errors.Is(err, services.ErrTableNotFound):
		responses.Fail(c, http.StatusNotFound, err, "Table not found in generation")
	case errors.Is(err, export.ErrNoRows):
		responses.Fail(c, http.StatusNotFound, err, "Table has no generated rows")
	case errors.Is(err, services.ErrResultExpired):
		responses.Fail(c, http.StatusGone, err, "Generated data is no longer available")
	case errors.Is(err, services.ErrInferenceFailed):
		responses.Fail(c, http.StatusBadGateway, err, "Data generation failed")
	case errors.Is(err, services.ErrBlobDisabled):
		responses.Fail(c, http.StatusServiceUnavailable, err, "Blob storage is not configured")
	case errors.Is(err, services.ErrEmptyUpload):
		responses.Fail(c, http.StatusBadRequest, err, "Request body is empty")
	default:
		log.Printf("ERROR in %s %s: %v", c.Request.Method, c.FullPath(), err)
		responses.Fail(c, http.StatusInternalServerError, err, message)
	}
}
