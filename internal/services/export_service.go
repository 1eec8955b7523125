package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"datagen/internal/export"
	"datagen/internal/inference"
	"datagen/internal/metrics"
	"datagen/internal/schema"
)

var (
	ErrTableNotFound = errors.New("table not found in generation")
	ErrBlobDisabled  = errors.New("blob storage is not configured")
	ErrEmptyUpload   = errors.New("upload body is empty")
)

const csvContentType = "text/csv"

type ResultSource interface {
	Result(ctx context.Context, id uuid.UUID) (schema.GenerationRequest, inference.Result, error)
}

type BlobUploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	Container() string
}

type UploadResult struct {
	Container string `json:"container"`
	Name      string `json:"name"`
	Size      int    `json:"size"`
}

type ExportService struct {
	source  ResultSource
	blobs   BlobUploader
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExportService wires the export paths. blobs may be nil, in which case the
// upload operations return ErrBlobDisabled.
func NewExportService(source ResultSource, blobs BlobUploader, m *metrics.Metrics) *ExportService {
	return &ExportService{
		source:  source,
		blobs:   blobs,
		metrics: m,
		now:     time.Now,
	}
}

// TableCSV renders the cached rows of one table. Columns follow the order the
// table was defined in.
func (s *ExportService) TableCSV(ctx context.Context, id uuid.UUID, table string) (string, error) {
	req, result, err := s.source.Result(ctx, id)
	if err != nil {
		return "", err
	}

	def, defined := req.Table(table)
	rows, generated := result[table]
	if !defined && !generated {
		return "", ErrTableNotFound
	}

	columns := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		columns = append(columns, f.ColName)
	}

	return export.GenerateCSV(rows, columns)
}

// UploadTable stores the CSV of one generated table in blob storage under
// filename, or "<table>.csv" when filename is empty.
func (s *ExportService) UploadTable(ctx context.Context, id uuid.UUID, table, filename string) (*UploadResult, error) {
	if s.blobs == nil {
		return nil, ErrBlobDisabled
	}

	content, err := s.TableCSV(ctx, id, table)
	if err != nil {
		return nil, err
	}

	return s.upload(ctx, export.Filename(filename, table), []byte(content))
}

// UploadRaw stores a CSV body as is. Without a filename the current unix
// time in milliseconds is used.
func (s *ExportService) UploadRaw(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if s.blobs == nil {
		return nil, ErrBlobDisabled
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	fallback := strconv.FormatInt(s.now().UnixMilli(), 10)
	return s.upload(ctx, export.Filename(filename, fallback), data)
}

func (s *ExportService) upload(ctx context.Context, name string, data []byte) (*UploadResult, error) {
	if err := s.blobs.Upload(ctx, name, data, csvContentType); err != nil {
		s.metrics.RecordBlobUpload("error")
		return nil, fmt.Errorf("failed to upload %s: %w", name, err)
	}
	s.metrics.RecordBlobUpload("success")

	return &UploadResult{
		Container: s.blobs.Container(),
		Name:      name,
		Size:      len(data),
	}, nil
}
