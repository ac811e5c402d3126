package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lifeline/internal/inventory/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// PostgresStore persists the inventory ledger. blood_samples carries a unique
// constraint on blood_type so duplicate creation surfaces as ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, sample *models.Sample) error {
	query := `
		INSERT INTO blood_samples (id, blood_type, units, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(sample.ID), sample.BloodType.String(), sample.Units, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create blood sample: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, sampleID id.SampleID) (*models.Sample, error) {
	query := `
		SELECT id, blood_type, units, created_at, updated_at
		FROM blood_samples WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(sampleID)))
}

func (s *PostgresStore) FindByType(ctx context.Context, bloodType id.BloodType) (*models.Sample, error) {
	query := `
		SELECT id, blood_type, units, created_at, updated_at
		FROM blood_samples WHERE blood_type = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, bloodType.String()))
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Sample, error) {
	query := `
		SELECT id, blood_type, units, created_at, updated_at
		FROM blood_samples ORDER BY blood_type
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blood samples: %w", err)
	}
	defer rows.Close()

	var samples []*models.Sample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood samples: %w", err)
	}
	return samples, nil
}

// SetUnits performs the absolute overwrite the review workflow applies on
// approved donations.
func (s *PostgresStore) SetUnits(ctx context.Context, sampleID id.SampleID, units int) (*models.Sample, error) {
	query := `
		UPDATE blood_samples
		SET units = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, blood_type, units, created_at, updated_at
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(sampleID), units, time.Now().UTC()))
}

func (s *PostgresStore) Delete(ctx context.Context, sampleID id.SampleID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blood_samples WHERE id = $1`, uuid.UUID(sampleID))
	if err != nil {
		return fmt.Errorf("delete blood sample: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blood sample: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row rowScanner) (*models.Sample, error) {
	sample, err := scanSample(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return sample, nil
}

func scanSample(row rowScanner) (*models.Sample, error) {
	var sample models.Sample
	var sampleID uuid.UUID
	var bloodType string
	if err := row.Scan(&sampleID, &bloodType, &sample.Units, &sample.CreatedAt, &sample.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan blood sample: %w", err)
	}
	sample.ID = id.SampleID(sampleID)
	sample.BloodType = id.BloodType(bloodType)
	return &sample, nil
}
