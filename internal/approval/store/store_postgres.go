package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lifeline/internal/approval/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// PostgresStore persists approval requests. The conditional review update is
// a single UPDATE guarded by status = 'pending', so two concurrent reviewers
// cannot both succeed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, request_type, requester_id, requester_name, blood_group, blood_sample_id, dob, units, disease, status, created_at, reviewed_by`

func (s *PostgresStore) Create(ctx context.Context, request *models.ApprovalRequest) error {
	query := `
		INSERT INTO approval_requests
			(id, request_type, requester_id, requester_name, blood_group, blood_sample_id, dob, units, disease, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(request.ID),
		string(request.Type),
		uuid.UUID(request.RequesterID),
		request.RequesterName,
		request.BloodGroup.String(),
		uuid.UUID(request.BloodSampleID),
		request.DOB,
		request.Units,
		request.Disease,
		string(request.Status),
		request.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create approval request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM approval_requests WHERE id = $1`, selectColumns)
	return scanRequestRow(s.db.QueryRowContext(ctx, query, uuid.UUID(requestID)))
}

func (s *PostgresStore) ListByRequesterAndType(ctx context.Context, requesterID id.UserID, requestType models.RequestType) ([]*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM approval_requests WHERE requester_id = $1 AND request_type = $2`, selectColumns)
	return s.queryRequests(ctx, query, uuid.UUID(requesterID), string(requestType))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM approval_requests`, selectColumns)
	return s.queryRequests(ctx, query)
}

// UpdateStatusIfPending is the optimistic transition: the WHERE clause pins
// the stored status to pending, so a lost race comes back with no row.
func (s *PostgresStore) UpdateStatusIfPending(ctx context.Context, requestID id.RequestID, status models.Status, reviewedBy id.UserID) (*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`
		UPDATE approval_requests
		SET status = $2, reviewed_by = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING %s
	`, selectColumns)
	request, err := scanRequestRow(s.db.QueryRowContext(ctx, query, uuid.UUID(requestID), string(status), uuid.UUID(reviewedBy)))
	if err == nil {
		return request, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// No row matched: either the request is gone or it is already terminal.
	if _, findErr := s.FindByID(ctx, requestID); findErr != nil {
		return nil, findErr
	}
	return nil, ErrAlreadyReviewed
}

func (s *PostgresStore) ResetToPending(ctx context.Context, requestID id.RequestID) (*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`
		UPDATE approval_requests
		SET status = 'pending', reviewed_by = NULL
		WHERE id = $1
		RETURNING %s
	`, selectColumns)
	return scanRequestRow(s.db.QueryRowContext(ctx, query, uuid.UUID(requestID)))
}

func (s *PostgresStore) Delete(ctx context.Context, requestID id.RequestID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM approval_requests WHERE id = $1`, uuid.UUID(requestID))
	if err != nil {
		return fmt.Errorf("delete approval request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete approval request: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ApprovalRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query approval requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ApprovalRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approval requests: %w", err)
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequestRow(row rowScanner) (*models.ApprovalRequest, error) {
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

func scanRequest(row rowScanner) (*models.ApprovalRequest, error) {
	var request models.ApprovalRequest
	var requestID, requesterID, sampleID uuid.UUID
	var requestType, bloodGroup, status string
	var reviewedBy uuid.NullUUID

	err := row.Scan(&requestID, &requestType, &requesterID, &request.RequesterName,
		&bloodGroup, &sampleID, &request.DOB, &request.Units, &request.Disease,
		&status, &request.CreatedAt, &reviewedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan approval request: %w", err)
	}

	request.ID = id.RequestID(requestID)
	request.Type = models.RequestType(requestType)
	request.RequesterID = id.UserID(requesterID)
	request.BloodGroup = id.BloodType(bloodGroup)
	request.BloodSampleID = id.SampleID(sampleID)
	request.Status = models.Status(status)
	if reviewedBy.Valid {
		reviewer := id.UserID(reviewedBy.UUID)
		request.ReviewedBy = &reviewer
	}
	return &request, nil
}
