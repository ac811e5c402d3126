package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lifeline/internal/alert/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// PostgresStore persists alerts. Deactivation flips the active flag; rows
// are never deleted so the history stays reconstructable.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (id, title, message, severity, blood_type, created_by, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(alert.ID),
		alert.Title,
		alert.Message,
		string(alert.Severity),
		string(alert.BloodType),
		uuid.UUID(alert.CreatedBy),
		alert.Active,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, alertID id.AlertID) (*models.Alert, error) {
	query := `
		SELECT id, title, message, severity, blood_type, created_by, active, created_at
		FROM alerts WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(alertID)))
}

func (s *PostgresStore) Update(ctx context.Context, alert *models.Alert) error {
	query := `
		UPDATE alerts
		SET title = $2, message = $3, severity = $4, blood_type = $5
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(alert.ID),
		alert.Title,
		alert.Message,
		string(alert.Severity),
		string(alert.BloodType),
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.Alert, error) {
	query := `
		SELECT id, title, message, severity, blood_type, created_by, active, created_at
		FROM alerts WHERE active ORDER BY created_at DESC
	`
	return s.list(ctx, query)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Alert, error) {
	query := `
		SELECT id, title, message, severity, blood_type, created_by, active, created_at
		FROM alerts ORDER BY created_at DESC
	`
	return s.list(ctx, query)
}

func (s *PostgresStore) Deactivate(ctx context.Context, alertID id.AlertID) (*models.Alert, error) {
	query := `
		UPDATE alerts SET active = FALSE
		WHERE id = $1
		RETURNING id, title, message, severity, blood_type, created_by, active, created_at
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(alertID)))
}

func (s *PostgresStore) list(ctx context.Context, query string) ([]*models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

func (s *PostgresStore) scanOne(row rowScanner) (*models.Alert, error) {
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return alert, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var alert models.Alert
	var alertID, createdBy uuid.UUID
	var severity, bloodType string
	err := row.Scan(&alertID, &alert.Title, &alert.Message, &severity, &bloodType,
		&createdBy, &alert.Active, &alert.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan alert: %w", err)
	}
	alert.ID = id.AlertID(alertID)
	alert.CreatedBy = id.UserID(createdBy)
	alert.Severity = models.Severity(severity)
	alert.BloodType = id.BloodType(bloodType)
	return &alert, nil
}
