// Package service implements account registration, login, and profile
// management for the relief coordination backend.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	invmodels "lifeline/internal/inventory/models"
	"lifeline/internal/platform/metrics"
	"lifeline/internal/user/models"
	"lifeline/internal/user/store"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/sentinel"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, isAdmin bool, expiresIn time.Duration) (string, error)
}

// InventoryLedger resolves the sample assigned to a blood group at
// registration time.
type InventoryLedger interface {
	FindByType(ctx context.Context, bloodType id.BloodType) (*invmodels.Sample, error)
}

// AuditPublisher records account lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RegisterInput carries everything a new account needs. DOB is the raw
// dd-mm-yyyy string; it is validated here and stored as given.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	DOB        string
	BloodGroup string
	Role       string
	IsAdmin    bool
}

// UpdateInput carries the mutable profile fields. Email is immutable and
// deliberately absent.
type UpdateInput struct {
	FirstName  string
	LastName   string
	DOB        string
	BloodGroup string
}

// Profile is a user together with the age derived from the dob at read
// time. Age is nil when the dob does not parse.
type Profile struct {
	models.User
	Age *int
}

// LoginResult is the issued token and the account it belongs to.
type LoginResult struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        *models.User
}

type Service struct {
	users    store.Store
	ledger   InventoryLedger
	tokens   TokenIssuer
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tokenTTL time.Duration
	clock    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(
	users store.Store,
	ledger InventoryLedger,
	tokens TokenIssuer,
	auditor AuditPublisher,
	logger *slog.Logger,
	m *metrics.Metrics,
	tokenTTL time.Duration,
	opts ...Option,
) *Service {
	s := &Service{
		users:    users,
		ledger:   ledger,
		tokens:   tokens,
		auditor:  auditor,
		logger:   logger,
		metrics:  m,
		tokenTTL: tokenTTL,
		clock:    time.Now,
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = 24 * time.Hour
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a new account. The password is bcrypt-hashed before it
// touches the store, and the account is linked to the ledger entry for its
// blood group when one exists.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "first name is required")
	}
	if _, err := id.ParseDOB(input.DOB); err != nil {
		return nil, err
	}
	bloodGroup, err := id.ParseBloodType(input.BloodGroup)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin && !input.IsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin accounts cannot self-register")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           id.UserID(uuid.New()),
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hash),
		DOB:          input.DOB,
		BloodGroup:   bloodGroup,
		Role:         role,
		Active:       true,
		CreatedAt:    s.clock().UTC(),
	}

	// A missing ledger entry is not a registration failure; the approval
	// workflow resolves the sample lazily for such accounts.
	if sample, err := s.ledger.FindByType(ctx, bloodGroup); err == nil {
		user.BloodSampleID = sample.ID
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve blood sample")
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.UsersCreated.Inc()
	}
	s.emit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   user.ID,
		Subject:  user.ID.String(),
		Action:   string(audit.EventUserCreated),
		Reason:   string(role),
	})
	return user, nil
}

// Login verifies the credentials and issues an access token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}

	failed := func() (*LoginResult, error) {
		s.emit(ctx, audit.Event{
			Category: audit.CategorySecurity,
			Subject:  strings.ToLower(email),
			Action:   string(audit.EventAuthFailed),
		})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return failed()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if !user.Active {
		return failed()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return failed()
	}

	token, err := s.tokens.GenerateAccessToken(uuid.UUID(user.ID), user.IsAdmin(), s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return &LoginResult{AccessToken: token, ExpiresIn: s.tokenTTL, User: user}, nil
}

// Get returns a profile. Callers may read themselves; admins may read
// anyone.
func (s *Service) Get(ctx context.Context, callerID id.UserID, callerIsAdmin bool, userID id.UserID) (*Profile, error) {
	if callerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if !callerIsAdmin && callerID != userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "cannot read another user's profile")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return s.profile(user), nil
}

// Update rewrites the caller's mutable profile fields. The email cannot
// change; a blood group change re-resolves the sample link.
func (s *Service) Update(ctx context.Context, callerID id.UserID, input UpdateInput) (*Profile, error) {
	if callerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	user, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if input.FirstName != "" {
		user.FirstName = strings.TrimSpace(input.FirstName)
	}
	if input.LastName != "" {
		user.LastName = strings.TrimSpace(input.LastName)
	}
	if input.DOB != "" {
		if _, err := id.ParseDOB(input.DOB); err != nil {
			return nil, err
		}
		user.DOB = input.DOB
	}
	if input.BloodGroup != "" {
		bloodGroup, err := id.ParseBloodType(input.BloodGroup)
		if err != nil {
			return nil, err
		}
		if bloodGroup != user.BloodGroup {
			user.BloodGroup = bloodGroup
			user.BloodSampleID = id.SampleID(uuid.Nil)
			if sample, err := s.ledger.FindByType(ctx, bloodGroup); err == nil {
				user.BloodSampleID = sample.ID
			}
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	return s.profile(user), nil
}

// ListAll returns every account for the admin screen, each with its derived
// age.
func (s *Service) ListAll(ctx context.Context, callerIsAdmin bool) ([]*Profile, error) {
	if !callerIsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can list users")
	}

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}

	profiles := make([]*Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, s.profile(user))
	}
	return profiles, nil
}

// Delete removes an account. Admin only; admins cannot delete themselves,
// so the system always keeps at least the acting admin.
func (s *Service) Delete(ctx context.Context, callerID id.UserID, callerIsAdmin bool, userID id.UserID) error {
	if !callerIsAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only admins can delete users")
	}
	if callerID == userID {
		return dErrors.New(dErrors.CodeInvalidInput, "admins cannot delete their own account")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.emit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   userID,
		Subject:  userID.String(),
		Action:   string(audit.EventUserDeleted),
		ActorID:  callerID.String(),
	})
	return nil
}

func (s *Service) profile(user *models.User) *Profile {
	profile := &Profile{User: *user}
	if age, ok := id.AgeFromDOB(user.DOB, s.clock()); ok {
		profile.Age = &age
	}
	return profile
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
