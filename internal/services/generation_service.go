package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"datagen/internal/inference"
	"datagen/internal/metrics"
	"datagen/internal/models"
	"datagen/internal/schema"
)

var (
	ErrGenerationNotFound = errors.New("generation not found")
	ErrResultExpired      = errors.New("generated data has expired or was never stored")
	ErrInferenceFailed    = errors.New("inference request failed")
)

type GenerationStore interface {
	Create(ctx context.Context, generation *models.Generation) error
	Complete(ctx context.Context, id uuid.UUID, status models.GenerationStatus, rowCount int, errMsg string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Generation, error)
	List(ctx context.Context, limit int) ([]models.Generation, error)
}

type ResultCache interface {
	StoreResult(ctx context.Context, id uuid.UUID, payload []byte, ttl time.Duration) error
	LoadResult(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type Generator interface {
	Generate(ctx context.Context, req schema.GenerationRequest) (inference.Result, error)
}

// GenerationOutcome is what a successful generation returns to the caller.
type GenerationOutcome struct {
	Generation *models.Generation `json:"generation"`
	Order      []string           `json:"order"`
	Data       inference.Result   `json:"data"`
}

// GenerationDetail is a stored generation with its cached rows, if any.
type GenerationDetail struct {
	Generation *models.Generation `json:"generation"`
	Data       inference.Result   `json:"data,omitempty"`
	Expired    bool               `json:"expired"`
}

type GenerationService struct {
	schemas   *SchemaService
	store     GenerationStore
	cache     ResultCache
	generator Generator
	metrics   *metrics.Metrics
	ttl       time.Duration
}

func NewGenerationService(
	schemas *SchemaService,
	store GenerationStore,
	cache ResultCache,
	generator Generator,
	m *metrics.Metrics,
	ttl time.Duration,
) *GenerationService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &GenerationService{
		schemas:   schemas,
		store:     store,
		cache:     cache,
		generator: generator,
		metrics:   m,
		ttl:       ttl,
	}
}

// Generate checks the schema, submits it to the inference service and records
// the run. Nothing is recorded when the schema is rejected.
func (s *GenerationService) Generate(ctx context.Context, tables []models.Table) (*GenerationOutcome, error) {
	report := s.schemas.Check(tables)
	if err := report.Err(); err != nil {
		return nil, err
	}

	req := schema.BuildRequest(tables)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	generation := &models.Generation{
		Request:    body,
		Status:     models.GenerationPending,
		TableCount: len(req.Tables),
	}
	if err := s.store.Create(ctx, generation); err != nil {
		return nil, fmt.Errorf("failed to record generation: %w", err)
	}

	start := time.Now()
	result, err := s.generator.Generate(ctx, req)
	elapsed := time.Since(start)

	// The record is closed even if the caller has gone away.
	done := context.WithoutCancel(ctx)

	if err != nil {
		s.metrics.ObserveInference("error", elapsed, 0)
		s.complete(done, generation, models.GenerationFailed, 0, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}

	rowCount := result.RowCount()
	s.metrics.ObserveInference("success", elapsed, rowCount)

	payload, err := json.Marshal(result)
	if err != nil {
		s.complete(done, generation, models.GenerationFailed, rowCount, err.Error())
		return nil, fmt.Errorf("failed to encode generated rows: %w", err)
	}
	if err := s.cache.StoreResult(done, generation.ID, payload, s.ttl); err != nil {
		log.Printf("Failed to cache rows for generation %s: %v", generation.ID, err)
	}

	s.complete(done, generation, models.GenerationSucceeded, rowCount, "")

	return &GenerationOutcome{
		Generation: generation,
		Order:      report.Order,
		Data:       result,
	}, nil
}

func (s *GenerationService) complete(ctx context.Context, generation *models.Generation, status models.GenerationStatus, rowCount int, errMsg string) {
	now := time.Now()
	generation.Status = status
	generation.RowCount = rowCount
	generation.CompletedAt = &now
	if errMsg != "" {
		generation.Error = &errMsg
	}

	if err := s.store.Complete(ctx, generation.ID, status, rowCount, errMsg); err != nil {
		log.Printf("Failed to complete generation %s: %v", generation.ID, err)
	}
}

func (s *GenerationService) Get(ctx context.Context, id uuid.UUID) (*GenerationDetail, error) {
	generation, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load generation: %w", err)
	}
	if generation == nil {
		return nil, ErrGenerationNotFound
	}

	detail := &GenerationDetail{Generation: generation}
	if generation.Status != models.GenerationSucceeded {
		return detail, nil
	}

	data, err := s.loadRows(ctx, id)
	if errors.Is(err, ErrResultExpired) {
		detail.Expired = true
		return detail, nil
	}
	if err != nil {
		return nil, err
	}
	detail.Data = data
	return detail, nil
}

func (s *GenerationService) List(ctx context.Context, limit int) ([]models.Generation, error) {
	generations, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return generations, nil
}

// Result returns the request a generation was made from together with its
// cached rows.
func (s *GenerationService) Result(ctx context.Context, id uuid.UUID) (schema.GenerationRequest, inference.Result, error) {
	var req schema.GenerationRequest

	generation, err := s.store.GetByID(ctx, id)
	if err != nil {
		return req, nil, fmt.Errorf("failed to load generation: %w", err)
	}
	if generation == nil {
		return req, nil, ErrGenerationNotFound
	}
	if err := json.Unmarshal(generation.Request, &req); err != nil {
		return req, nil, fmt.Errorf("failed to decode stored request: %w", err)
	}

	data, err := s.loadRows(ctx, id)
	if err != nil {
		return req, nil, err
	}
	return req, data, nil
}

func (s *GenerationService) loadRows(ctx context.Context, id uuid.UUID) (inference.Result, error) {
	payload, err := s.cache.LoadResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load generated rows: %w", err)
	}
	if payload == nil {
		return nil, ErrResultExpired
	}
	return inference.DecodeResult(payload)
}
