package routes

import (
	"github.com/gin-gonic/gin"

	"datagen/internal/handlers"
)

type ExportRoutes struct {
	handler *handlers.ExportHandler
}

func NewExportRoutes(handler *handlers.ExportHandler) *ExportRoutes {
	return &ExportRoutes{handler: handler}
}

func (r *ExportRoutes) RegisterRoutes(router *gin.RouterGroup) {
	tables := router.Group("/generations/:id/tables/:table")
	{
		tables.GET("/csv", r.handler.DownloadCSV)
		tables.POST("/upload", r.handler.UploadTable)
	}

	router.POST("/upload-csv", r.handler.UploadCSV)
}
