package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationPending   GenerationStatus = "pending"
	GenerationSucceeded GenerationStatus = "succeeded"
	GenerationFailed    GenerationStatus = "failed"
)

type Generation struct {
	ID          uuid.UUID        `json:"id"`
	Request     json.RawMessage  `json:"request"`
	Status      GenerationStatus `json:"status"`
	Error       *string          `json:"error,omitempty"`
	TableCount  int              `json:"table_count"`
	RowCount    int              `json:"row_count"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (g *Generation) Prepare() {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = GenerationPending
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
}
