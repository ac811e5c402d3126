package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lifeline/internal/approval/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) pending(requesterID id.UserID, requestType models.RequestType) *models.ApprovalRequest {
	request := &models.ApprovalRequest{
		ID:            id.RequestID(uuid.New()),
		Type:          requestType,
		RequesterID:   requesterID,
		RequesterName: "Asha Rao",
		BloodGroup:    id.BloodTypeAPositive,
		BloodSampleID: id.SampleID(uuid.New()),
		DOB:           "15-03-2000",
		Units:         3,
		Status:        models.StatusPending,
	}
	s.Require().NoError(s.store.Create(context.Background(), request))
	return request
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()

	s.Run("round trips a created request", func() {
		request := s.pending(id.UserID(uuid.New()), models.TypeDonation)
		found, err := s.store.FindByID(ctx, request.ID)
		s.Require().NoError(err)
		s.Equal(request.ID, found.ID)
		s.Equal(models.StatusPending, found.Status)
	})

	s.Run("returns a copy, not the stored record", func() {
		request := s.pending(id.UserID(uuid.New()), models.TypeDonation)
		found, err := s.store.FindByID(ctx, request.ID)
		s.Require().NoError(err)

		found.Status = models.StatusApproved
		again, err := s.store.FindByID(ctx, request.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, again.Status)
	})

	s.Run("missing request returns not found", func() {
		_, err := s.store.FindByID(ctx, id.RequestID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestListByRequesterAndType() {
	ctx := context.Background()
	requesterID := id.UserID(uuid.New())

	donation := s.pending(requesterID, models.TypeDonation)
	s.pending(requesterID, models.TypeBloodRequest)
	s.pending(id.UserID(uuid.New()), models.TypeDonation)

	listed, err := s.store.ListByRequesterAndType(ctx, requesterID, models.TypeDonation)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(donation.ID, listed[0].ID)

	all, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *InMemoryStoreSuite) TestUpdateStatusIfPending() {
	ctx := context.Background()
	reviewer := id.UserID(uuid.New())

	s.Run("transitions a pending request and records the reviewer", func() {
		request := s.pending(id.UserID(uuid.New()), models.TypeDonation)
		updated, err := s.store.UpdateStatusIfPending(ctx, request.ID, models.StatusApproved, reviewer)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, updated.Status)
		s.Require().NotNil(updated.ReviewedBy)
		s.Equal(reviewer, *updated.ReviewedBy)
	})

	s.Run("terminal request returns already reviewed", func() {
		request := s.pending(id.UserID(uuid.New()), models.TypeDonation)
		_, err := s.store.UpdateStatusIfPending(ctx, request.ID, models.StatusRejected, reviewer)
		s.Require().NoError(err)

		_, err = s.store.UpdateStatusIfPending(ctx, request.ID, models.StatusApproved, reviewer)
		s.Require().ErrorIs(err, ErrAlreadyReviewed)
	})

	s.Run("missing request returns not found", func() {
		_, err := s.store.UpdateStatusIfPending(ctx, id.RequestID(uuid.New()), models.StatusApproved, reviewer)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("exactly one concurrent reviewer wins", func() {
		request := s.pending(id.UserID(uuid.New()), models.TypeDonation)

		const reviewers = 8
		var wg sync.WaitGroup
		results := make(chan error, reviewers)
		for i := 0; i < reviewers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.store.UpdateStatusIfPending(ctx, request.ID, models.StatusApproved, id.UserID(uuid.New()))
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var wins, conflicts int
		for err := range results {
			switch {
			case err == nil:
				wins++
			case err == ErrAlreadyReviewed:
				conflicts++
			default:
				s.FailNowf("unexpected error", "%v", err)
			}
		}
		s.Equal(1, wins)
		s.Equal(reviewers-1, conflicts)
	})
}

func (s *InMemoryStoreSuite) TestResetToPending() {
	ctx := context.Background()

	s.Run("clears the terminal status and reviewer", func() {
		request := s.pending(id.UserID(uuid.New()), models.TypeDonation)
		_, err := s.store.UpdateStatusIfPending(ctx, request.ID, models.StatusApproved, id.UserID(uuid.New()))
		s.Require().NoError(err)

		reset, err := s.store.ResetToPending(ctx, request.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, reset.Status)
		s.Nil(reset.ReviewedBy)
	})

	s.Run("missing request returns not found", func() {
		_, err := s.store.ResetToPending(ctx, id.RequestID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()

	request := s.pending(id.UserID(uuid.New()), models.TypeDonation)
	s.Require().NoError(s.store.Delete(ctx, request.ID))

	_, err := s.store.FindByID(ctx, request.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.Delete(ctx, request.ID), sentinel.ErrNotFound)
}
