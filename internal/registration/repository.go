package registration

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Merco74/ScoutPlateform/common/metrics"
	"github.com/Merco74/ScoutPlateform/internal/db"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const tableName = "registrations"

// Migrate creates the registrations table and its category index.
func Migrate(ctx context.Context, database *bun.DB) error {
	return db.RunMigrations(ctx, database,
		[]interface{}{(*Record)(nil)},
		db.Index{
			Name:    "registrations_category_surname_idx",
			Model:   (*Record)(nil),
			Columns: []string{"category", "surname"},
		},
	)
}

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	UpdateDocuments(ctx context.Context, id uuid.UUID, docs Documents) error
	ListByCategory(ctx context.Context, category Category) ([]Record, error)
	GetByID(ctx context.Context, category Category, id uuid.UUID) (*Record, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, rec *Record) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(rec).Returning("created_at").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", tableName, time.Since(start), err)

	return err
}

func (r *repository) UpdateDocuments(ctx context.Context, id uuid.UUID, docs Documents) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("authorization_pdf_url = ?", docs.AuthorizationURL).
		Set("sanitary_pdf_url = ?", docs.SanitaryURL).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", tableName, time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListByCategory(ctx context.Context, category Category) ([]Record, error) {
	start := time.Now()
	records := make([]Record, 0)
	err := r.db.NewSelect().
		Model(&records).
		Where("category = ?", category).
		Order("surname ASC", "given_name ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	return records, err
}

func (r *repository) GetByID(ctx context.Context, category Category, id uuid.UUID) (*Record, error) {
	start := time.Now()
	rec := new(Record)
	err := r.db.NewSelect().
		Model(rec).
		Where("id = ?", id).
		Where("category = ?", category).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}
