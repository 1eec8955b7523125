package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"datagen/internal/export"
	"datagen/internal/responses"
	"datagen/internal/services"
	"datagen/internal/utils"
)

const maxUploadBytes = 10 << 20

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

type uploadTableRequest struct {
	Filename string `json:"filename"`
}

// DownloadCSV handles GET /api/v1/generations/:id/tables/:table/csv
func (h *ExportHandler) DownloadCSV(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid generation ID format")
		return
	}
	table := c.Param("table")

	content, err := h.exportService.TableCSV(c.Request.Context(), id, table)
	if err != nil {
		failWith(c, err, "Failed to export table")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(table, "export")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}

// UploadTable handles POST /api/v1/generations/:id/tables/:table/upload
func (h *ExportHandler) UploadTable(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid generation ID format")
		return
	}

	// The body is optional.
	var req uploadTableRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
			return
		}
	}

	result, err := h.exportService.UploadTable(c.Request.Context(), id, c.Param("table"), req.Filename)
	if err != nil {
		failWith(c, err, "Failed to upload table")
		return
	}

	responses.Success(c, http.StatusCreated, result, "CSV uploaded successfully")
}

// UploadCSV handles POST /api/v1/upload-csv
func (h *ExportHandler) UploadCSV(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.Fail(c, http.StatusRequestEntityTooLarge, err, "CSV body is too large")
			return
		}
		responses.Fail(c, http.StatusBadRequest, err, "Failed to read request body")
		return
	}

	result, err := h.exportService.UploadRaw(c.Request.Context(), c.GetHeader("X-Filename"), body)
	if err != nil {
		failWith(c, err, "Failed to upload CSV")
		return
	}

	responses.Success(c, http.StatusCreated, result, "CSV uploaded successfully")
}
