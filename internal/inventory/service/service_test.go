package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lifeline/internal/inventory/store"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(store.NewInMemory(), nil)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("creates entry for a valid type", func() {
		sample, err := s.service.Create(ctx, id.BloodTypeAPositive, 10)
		s.Require().NoError(err)
		s.Equal(id.BloodTypeAPositive, sample.BloodType)
		s.Equal(10, sample.Units)
		s.False(sample.ID.IsNil())
	})

	s.Run("duplicate type conflicts", func() {
		_, err := s.service.Create(ctx, id.BloodTypeAPositive, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects unknown type", func() {
		_, err := s.service.Create(ctx, id.BloodType("X+"), 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects negative units", func() {
		_, err := s.service.Create(ctx, id.BloodTypeBNegative, -1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestSetUnits() {
	ctx := context.Background()

	s.Run("overwrite is absolute", func() {
		sample, err := s.service.Create(ctx, id.BloodTypeOPositive, 5)
		s.Require().NoError(err)

		updated, err := s.service.SetUnits(ctx, sample.ID, 3)
		s.Require().NoError(err)
		s.Equal(3, updated.Units)
	})

	s.Run("missing sample is not found", func() {
		_, err := s.service.SetUnits(ctx, id.SampleID(uuid.New()), 3)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects negative units", func() {
		_, err := s.service.SetUnits(ctx, id.SampleID(uuid.New()), -2)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestFindByType() {
	ctx := context.Background()

	s.Run("finds existing entry", func() {
		created, err := s.service.Create(ctx, id.BloodTypeABPositive, 7)
		s.Require().NoError(err)

		found, err := s.service.FindByType(ctx, id.BloodTypeABPositive)
		s.Require().NoError(err)
		s.Equal(created.ID, found.ID)
	})

	s.Run("missing type is not found", func() {
		_, err := s.service.FindByType(ctx, id.BloodTypeABNegative)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
