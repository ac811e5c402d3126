package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lifeline/internal/inventory/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func makeSample(bloodType id.BloodType, units int) *models.Sample {
	return &models.Sample{
		ID:        id.SampleID(uuid.New()),
		BloodType: bloodType,
		Units:     units,
	}
}

func (s *InMemoryStoreSuite) TestLookupBehavior() {
	s.Run("returns sample by ID when exists", func() {
		store := NewInMemory()
		sample := makeSample(id.BloodTypeAPositive, 5)
		s.Require().NoError(store.Create(context.Background(), sample))

		found, err := store.FindByID(context.Background(), sample.ID)
		s.Require().NoError(err)
		s.Equal(sample.Units, found.Units)
		s.Equal(sample.BloodType, found.BloodType)
	})

	s.Run("returns sample by blood type when exists", func() {
		store := NewInMemory()
		sample := makeSample(id.BloodTypeONegative, 2)
		s.Require().NoError(store.Create(context.Background(), sample))

		found, err := store.FindByType(context.Background(), id.BloodTypeONegative)
		s.Require().NoError(err)
		s.Equal(sample.ID, found.ID)
	})

	s.Run("returns ErrNotFound when sample ID does not exist", func() {
		_, err := s.store.FindByID(context.Background(), id.SampleID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when blood type has no entry", func() {
		_, err := s.store.FindByType(context.Background(), id.BloodTypeABNegative)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestUniquePerBloodType() {
	s.Run("second entry for the same type conflicts", func() {
		store := NewInMemory()
		s.Require().NoError(store.Create(context.Background(), makeSample(id.BloodTypeBPositive, 1)))

		err := store.Create(context.Background(), makeSample(id.BloodTypeBPositive, 9))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *InMemoryStoreSuite) TestSetUnits() {
	s.Run("overwrites stored units", func() {
		store := NewInMemory()
		sample := makeSample(id.BloodTypeAPositive, 5)
		s.Require().NoError(store.Create(context.Background(), sample))

		updated, err := store.SetUnits(context.Background(), sample.ID, 3)
		s.Require().NoError(err)
		s.Equal(3, updated.Units)

		found, err := store.FindByID(context.Background(), sample.ID)
		s.Require().NoError(err)
		s.Equal(3, found.Units)
	})

	s.Run("returns ErrNotFound for missing sample", func() {
		_, err := s.store.SetUnits(context.Background(), id.SampleID(uuid.New()), 1)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestDelete() {
	s.Run("deletes entry and makes it unfindable", func() {
		store := NewInMemory()
		sample := makeSample(id.BloodTypeOPositive, 4)
		s.Require().NoError(store.Create(context.Background(), sample))

		s.Require().NoError(store.Delete(context.Background(), sample.ID))

		_, err := store.FindByID(context.Background(), sample.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when deleting non-existent entry", func() {
		err := s.store.Delete(context.Background(), id.SampleID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
