package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"datagen/internal/inference"
	"datagen/internal/models"
	"datagen/internal/schema"
)

func strPtr(s string) *string { return &s }

func column(name string, dt models.DataType) models.Column {
	return models.Column{ColName: name, DataType: dt}
}

func fkColumn(name, ref, rel string) models.Column {
	c := column(name, models.DataTypeForeignKey)
	c.ForeignKey = strPtr(ref)
	c.Relationship = strPtr(rel)
	return c
}

func table(name string, fields ...models.Column) models.Table {
	return models.Table{Name: name, Fields: fields, Count: 3}
}

// shopSchema is Customers <- Orders, both valid.
func shopSchema() []models.Table {
	return []models.Table{
		table("Orders", models.IDColumn(), fkColumn("CustomerID", "Customers.ID", "many-to-one")),
		table("Customers", models.IDColumn(), column("Name", models.DataTypeString)),
	}
}

// cyclicSchema is structurally valid but Customers and Invoices reference
// each other.
func cyclicSchema() []models.Table {
	return []models.Table{
		table("Customers", models.IDColumn(), fkColumn("LastInvoice", "Invoices.ID", "one-to-one")),
		table("Invoices", models.IDColumn(), fkColumn("CustomerID", "Customers.ID", "many-to-one")),
	}
}

type fakeStore struct {
	mu          sync.Mutex
	generations map[uuid.UUID]*models.Generation
	createErr   error
	completions []models.GenerationStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{generations: make(map[uuid.UUID]*models.Generation)}
}

func (f *fakeStore) Create(_ context.Context, g *models.Generation) error {
	if f.createErr != nil {
		return f.createErr
	}
	g.Prepare()
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *g
	f.generations[g.ID] = &stored
	return nil
}

func (f *fakeStore) Complete(_ context.Context, id uuid.UUID, status models.GenerationStatus, rowCount int, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.generations[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	g.Status = status
	g.RowCount = rowCount
	g.CompletedAt = &now
	if errMsg != "" {
		g.Error = &errMsg
	}
	f.completions = append(f.completions, status)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.generations[id]
	if !ok {
		return nil, nil
	}
	out := *g
	return &out, nil
}

func (f *fakeStore) List(_ context.Context, limit int) ([]models.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Generation
	for _, g := range f.generations {
		out = append(out, *g)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]byte
	ttls    map[uuid.UUID]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[uuid.UUID][]byte),
		ttls:    make(map[uuid.UUID]time.Duration),
	}
}

func (f *fakeCache) StoreResult(_ context.Context, id uuid.UUID, payload []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[id] = payload
	f.ttls[id] = ttl
	return nil
}

func (f *fakeCache) LoadResult(_ context.Context, id uuid.UUID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[id], nil
}

func (f *fakeCache) evict(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
}

type fakeGenerator struct {
	result inference.Result
	err    error
	calls  []schema.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req schema.GenerationRequest) (inference.Result, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

var errUpstream = errors.New("upstream unavailable")

type fakeBlobs struct {
	uploads     map[string][]byte
	contentType string
	err         error
}

func (f *fakeBlobs) Upload(_ context.Context, name string, data []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[name] = data
	f.contentType = contentType
	return nil
}

func (f *fakeBlobs) Container() string { return "exports" }
