package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"datagen/internal/models"
)

type GenerationRepository struct {
	pool *pgxpool.Pool
}

func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepository {
	return &GenerationRepository{pool: pool}
}

const generationColumns = `id, request, status, error, table_count, row_count, created_at, completed_at`

func (r *GenerationRepository) Create(ctx context.Context, generation *models.Generation) error {
	generation.Prepare()

	query := `
		INSERT INTO generation_history (id, request, status, error, table_count, row_count, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		generation.ID,
		[]byte(generation.Request),
		string(generation.Status),
		generation.Error,
		generation.TableCount,
		generation.RowCount,
		generation.CreatedAt,
		generation.CompletedAt,
	)

	return err
}

// Complete records the outcome of a generation. errMsg is stored only when
// non-empty.
func (r *GenerationRepository) Complete(ctx context.Context, id uuid.UUID, status models.GenerationStatus, rowCount int, errMsg string) error {
	var errValue *string
	if errMsg != "" {
		errValue = &errMsg
	}

	query := `
		UPDATE generation_history
		SET status = $2, row_count = $3, error = $4, completed_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, string(status), rowCount, errValue, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *GenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generation_history WHERE id = $1`

	generation, err := scanGeneration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return generation, nil
}

func (r *GenerationRepository) List(ctx context.Context, limit int) ([]models.Generation, error) {
	if limit <= 0 {
		limit = 50 // Default limit
	}

	query := `SELECT ` + generationColumns + ` FROM generation_history
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	generations := []models.Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, *g)
	}

	return generations, rows.Err()
}

func scanGeneration(row pgx.Row) (*models.Generation, error) {
	var g models.Generation
	var request []byte
	var status string

	err := row.Scan(
		&g.ID,
		&request,
		&status,
		&g.Error,
		&g.TableCount,
		&g.RowCount,
		&g.CreatedAt,
		&g.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Request = request
	g.Status = models.GenerationStatus(status)
	return &g, nil
}
