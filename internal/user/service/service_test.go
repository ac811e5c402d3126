package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	invmodels "lifeline/internal/inventory/models"
	"lifeline/internal/user/models"
	"lifeline/internal/user/store"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// stubLedger serves a fixed sample per blood group, standing in for the
// inventory service.
type stubLedger struct {
	samples map[id.BloodType]*invmodels.Sample
}

func (l *stubLedger) FindByType(_ context.Context, bloodType id.BloodType) (*invmodels.Sample, error) {
	if sample, ok := l.samples[bloodType]; ok {
		return sample, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "no sample for blood type")
}

// stubIssuer returns a canned token and records the admin flag it was asked
// to sign.
type stubIssuer struct {
	lastIsAdmin bool
	lastTTL     time.Duration
	err         error
}

func (i *stubIssuer) GenerateAccessToken(_ uuid.UUID, isAdmin bool, expiresIn time.Duration) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	i.lastIsAdmin = isAdmin
	i.lastTTL = expiresIn
	return "signed-token", nil
}

type UserServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	ledger  *stubLedger
	issuer  *stubIssuer
	service *Service
	now     time.Time
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.ledger = &stubLedger{samples: map[id.BloodType]*invmodels.Sample{
		id.BloodTypeOPositive: {ID: id.SampleID(uuid.New()), BloodType: id.BloodTypeOPositive, Units: 5},
	}}
	s.issuer = &stubIssuer{}
	s.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s.service = New(
		s.store,
		s.ledger,
		s.issuer,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil,
		24*time.Hour,
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *UserServiceSuite) register(input RegisterInput) *models.User {
	user, err := s.service.Register(context.Background(), input)
	s.Require().NoError(err)
	return user
}

func validInput() RegisterInput {
	return RegisterInput{
		Email:      "asha@relief.org",
		Password:   "correct horse",
		FirstName:  "Asha",
		LastName:   "Rao",
		DOB:        "15-03-2000",
		BloodGroup: "O+",
		Role:       "donor",
	}
}

func (s *UserServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("hashes the password and links the blood sample", func() {
		user := s.register(validInput())
		s.NotEqual("correct horse", user.PasswordHash)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
		s.Equal(s.ledger.samples[id.BloodTypeOPositive].ID, user.BloodSampleID)
		s.True(user.Active)
	})

	s.Run("missing ledger entry leaves the sample unassigned", func() {
		input := validInput()
		input.Email = "ab@relief.org"
		input.BloodGroup = "AB-"
		user := s.register(input)
		s.True(user.BloodSampleID.IsNil())
	})

	s.Run("duplicate email returns conflict", func() {
		input := validInput()
		input.Email = "dup@relief.org"
		s.register(input)
		_, err := s.service.Register(ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects bad input", func() {
		cases := map[string]func(*RegisterInput){
			"no email":         func(i *RegisterInput) { i.Email = "" },
			"short password":   func(i *RegisterInput) { i.Password = "short" },
			"bad dob":          func(i *RegisterInput) { i.DOB = "2000-03-15" },
			"bad blood group":  func(i *RegisterInput) { i.BloodGroup = "Q+" },
			"unknown role":     func(i *RegisterInput) { i.Role = "wizard" },
			"empty first name": func(i *RegisterInput) { i.FirstName = "  " },
		}
		for name, mutate := range cases {
			input := validInput()
			mutate(&input)
			_, err := s.service.Register(ctx, input)
			s.Require().Error(err, name)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), name)
		}
	})

	s.Run("admin role requires provisioning flag", func() {
		input := validInput()
		input.Email = "admin@relief.org"
		input.Role = "admin"
		_, err := s.service.Register(ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		input.IsAdmin = true
		user := s.register(input)
		s.True(user.IsAdmin())
	})
}

func (s *UserServiceSuite) TestLogin() {
	ctx := context.Background()
	s.register(validInput())

	s.Run("valid credentials issue a 24 hour token", func() {
		result, err := s.service.Login(ctx, "asha@relief.org", "correct horse")
		s.Require().NoError(err)
		s.Equal("signed-token", result.AccessToken)
		s.Equal(24*time.Hour, result.ExpiresIn)
		s.Equal(24*time.Hour, s.issuer.lastTTL)
		s.False(s.issuer.lastIsAdmin)
	})

	s.Run("wrong password and unknown email look the same", func() {
		_, wrongPass := s.service.Login(ctx, "asha@relief.org", "wrong")
		_, unknown := s.service.Login(ctx, "nobody@relief.org", "whatever")
		s.Require().Error(wrongPass)
		s.Require().Error(unknown)
		s.True(dErrors.HasCode(wrongPass, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(unknown, dErrors.CodeUnauthorized))
		s.Equal(wrongPass.Error(), unknown.Error())
	})

	s.Run("admin token carries the admin flag", func() {
		input := validInput()
		input.Email = "chief@relief.org"
		input.Role = "admin"
		input.IsAdmin = true
		s.register(input)

		_, err := s.service.Login(ctx, "chief@relief.org", "correct horse")
		s.Require().NoError(err)
		s.True(s.issuer.lastIsAdmin)
	})
}

func (s *UserServiceSuite) TestGet() {
	ctx := context.Background()
	user := s.register(validInput())

	s.Run("self read includes derived age", func() {
		profile, err := s.service.Get(ctx, user.ID, false, user.ID)
		s.Require().NoError(err)
		s.Require().NotNil(profile.Age)
		s.Equal(23, *profile.Age)
	})

	s.Run("stranger read is forbidden", func() {
		_, err := s.service.Get(ctx, id.UserID(uuid.New()), false, user.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin may read anyone", func() {
		profile, err := s.service.Get(ctx, id.UserID(uuid.New()), true, user.ID)
		s.Require().NoError(err)
		s.Equal(user.ID, profile.ID)
	})
}

func (s *UserServiceSuite) TestUpdate() {
	ctx := context.Background()
	user := s.register(validInput())

	s.Run("updates names and dob", func() {
		profile, err := s.service.Update(ctx, user.ID, UpdateInput{FirstName: "Aasha", DOB: "16-03-2000"})
		s.Require().NoError(err)
		s.Equal("Aasha", profile.FirstName)
		s.Equal("16-03-2000", profile.DOB)
		s.Equal("asha@relief.org", profile.Email)
	})

	s.Run("blood group change re-links the sample", func() {
		profile, err := s.service.Update(ctx, user.ID, UpdateInput{BloodGroup: "AB-"})
		s.Require().NoError(err)
		s.Equal(id.BloodTypeABNegative, profile.BloodGroup)
		s.True(profile.BloodSampleID.IsNil())
	})

	s.Run("invalid dob is rejected", func() {
		_, err := s.service.Update(ctx, user.ID, UpdateInput{DOB: "31-02-2000"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *UserServiceSuite) TestListAllAndDelete() {
	ctx := context.Background()
	user := s.register(validInput())
	adminID := id.UserID(uuid.New())

	s.Run("non-admin cannot list", func() {
		_, err := s.service.ListAll(ctx, false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin listing carries ages", func() {
		profiles, err := s.service.ListAll(ctx, true)
		s.Require().NoError(err)
		s.Require().Len(profiles, 1)
		s.Require().NotNil(profiles[0].Age)
		s.Equal(23, *profiles[0].Age)
	})

	s.Run("non-admin cannot delete", func() {
		err := s.service.Delete(ctx, user.ID, false, user.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin cannot delete themselves", func() {
		err := s.service.Delete(ctx, adminID, true, adminID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("admin deletes an account", func() {
		s.Require().NoError(s.service.Delete(ctx, adminID, true, user.ID))
		_, err := s.service.Get(ctx, adminID, true, user.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
