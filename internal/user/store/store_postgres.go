package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lifeline/internal/user/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// PostgresStore persists user accounts. Email uniqueness is enforced by a
// unique index on lower(email).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

const userColumns = `id, email, first_name, last_name, password_hash, dob, blood_group, blood_sample_id, role, active, created_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users
			(id, email, first_name, last_name, password_hash, dob, blood_group, blood_sample_id, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.DOB,
		user.BloodGroup.String(),
		sampleIDParam(user.BloodSampleID),
		string(user.Role),
		user.Active,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUserRow(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE lower(email) = lower($1)`, userColumns)
	return scanUserRow(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at`, userColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update rewrites every mutable column. Email is deliberately absent from the
// SET list.
func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, password_hash = $4, dob = $5,
			blood_group = $6, blood_sample_id = $7, role = $8, active = $9
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.DOB,
		user.BloodGroup.String(),
		sampleIDParam(user.BloodSampleID),
		string(user.Role),
		user.Active,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func sampleIDParam(sampleID id.SampleID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(sampleID), Valid: !sampleID.IsNil()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row *sql.Row) (*models.User, error) {
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return user, err
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user       models.User
		rawID      uuid.UUID
		bloodGroup string
		role       string
		sampleID   uuid.NullUUID
	)
	err := row.Scan(
		&rawID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.DOB,
		&bloodGroup,
		&sampleID,
		&role,
		&user.Active,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.ID = id.UserID(rawID)
	user.BloodGroup = id.BloodType(bloodGroup)
	user.Role = models.Role(role)
	if sampleID.Valid {
		user.BloodSampleID = id.SampleID(sampleID.UUID)
	}
	return &user, nil
}
