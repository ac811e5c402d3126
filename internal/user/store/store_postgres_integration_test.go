//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lifeline/internal/user/models"
	"lifeline/internal/user/store"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func newUser(email string) *models.User {
	return &models.User{
		ID:           id.UserID(uuid.New()),
		Email:        email,
		FirstName:    "Asha",
		LastName:     "Rao",
		PasswordHash: "$2a$10$hash",
		DOB:          "15-03-2000",
		BloodGroup:   id.BloodTypeOPositive,
		Role:         models.RoleDonor,
		Active:       true,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := newUser("asha@relief.org")
	user.BloodSampleID = id.SampleID(uuid.New())
	s.Require().NoError(s.store.Create(ctx, user))

	byID, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, byID.Email)
	s.Equal(user.BloodSampleID, byID.BloodSampleID)

	// Email lookup is case-insensitive.
	byEmail, err := s.store.FindByEmail(ctx, "ASHA@relief.org")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *PostgresStoreSuite) TestNullableSampleID() {
	ctx := context.Background()
	user := newUser("unassigned@relief.org")
	s.Require().NoError(s.store.Create(ctx, user))

	found, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.True(found.BloodSampleID.IsNil())
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newUser("dup@relief.org")))
	s.Require().ErrorIs(s.store.Create(ctx, newUser("DUP@relief.org")), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	user := newUser("asha@relief.org")
	s.Require().NoError(s.store.Create(ctx, user))

	user.FirstName = "Aasha"
	user.BloodGroup = id.BloodTypeABNegative
	s.Require().NoError(s.store.Update(ctx, user))

	found, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Aasha", found.FirstName)
	s.Equal(id.BloodTypeABNegative, found.BloodGroup)

	missing := newUser("ghost@relief.org")
	s.Require().ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListAndDelete() {
	ctx := context.Background()
	user := newUser("asha@relief.org")
	s.Require().NoError(s.store.Create(ctx, user))
	s.Require().NoError(s.store.Create(ctx, newUser("mira@relief.org")))

	users, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(users, 2)

	s.Require().NoError(s.store.Delete(ctx, user.ID))
	_, err = s.store.FindByID(ctx, user.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.Delete(ctx, user.ID), sentinel.ErrNotFound)
}
