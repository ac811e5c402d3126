package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lifeline/internal/post/store"
	usermodels "lifeline/internal/user/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/sentinel"
)

// stubDirectory serves canned users keyed by id.
type stubDirectory struct {
	users map[id.UserID]*usermodels.User
}

func (d *stubDirectory) FindByID(_ context.Context, userID id.UserID) (*usermodels.User, error) {
	if user, ok := d.users[userID]; ok {
		return user, nil
	}
	return nil, sentinel.ErrNotFound
}

type PostServiceSuite struct {
	suite.Suite
	store     *store.InMemoryStore
	service   *Service
	volunteer *usermodels.User
	donor     *usermodels.User
	now       time.Time
}

func TestPostServiceSuite(t *testing.T) {
	suite.Run(t, new(PostServiceSuite))
}

func (s *PostServiceSuite) SetupTest() {
	s.volunteer = &usermodels.User{
		ID:        id.UserID(uuid.New()),
		FirstName: "Mira",
		LastName:  "Sen",
		Role:      usermodels.RoleVolunteer,
	}
	s.donor = &usermodels.User{
		ID:        id.UserID(uuid.New()),
		FirstName: "Asha",
		LastName:  "Rao",
		Role:      usermodels.RoleDonor,
	}
	s.store = store.NewInMemory()
	s.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s.service = New(
		s.store,
		&stubDirectory{users: map[id.UserID]*usermodels.User{
			s.volunteer.ID: s.volunteer,
			s.donor.ID:     s.donor,
		}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *PostServiceSuite) TestCreatePost() {
	ctx := context.Background()

	s.Run("volunteer posts an update", func() {
		post, err := s.service.CreatePost(ctx, s.volunteer.ID, "camp 4 update", "stocks stable")
		s.Require().NoError(err)
		s.Equal("Mira Sen", post.AuthorName)
		s.Equal(s.now, post.CreatedAt)
	})

	s.Run("donor cannot post", func() {
		_, err := s.service.CreatePost(ctx, s.donor.ID, "title", "body")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("blank title is rejected", func() {
		_, err := s.service.CreatePost(ctx, s.volunteer.ID, "  ", "body")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown author returns not found", func() {
		_, err := s.service.CreatePost(ctx, id.UserID(uuid.New()), "title", "body")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PostServiceSuite) TestCommentsAndDeletion() {
	ctx := context.Background()
	post, err := s.service.CreatePost(ctx, s.volunteer.ID, "camp 4 update", "stocks stable")
	s.Require().NoError(err)

	s.Run("any user comments on a post", func() {
		comment, err := s.service.AddComment(ctx, s.donor.ID, post.ID, "on my way")
		s.Require().NoError(err)
		s.Equal("Asha Rao", comment.AuthorName)

		loaded, comments, err := s.service.GetPost(ctx, post.ID)
		s.Require().NoError(err)
		s.Equal(post.ID, loaded.ID)
		s.Require().Len(comments, 1)
		s.Equal("on my way", comments[0].Body)
	})

	s.Run("comment on a missing post returns not found", func() {
		_, err := s.service.AddComment(ctx, s.donor.ID, id.PostID(uuid.New()), "hello")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("only the comment author or an admin deletes a comment", func() {
		comment, err := s.service.AddComment(ctx, s.donor.ID, post.ID, "bringing supplies")
		s.Require().NoError(err)

		err = s.service.DeleteComment(ctx, s.volunteer.ID, false, comment.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		s.Require().NoError(s.service.DeleteComment(ctx, s.donor.ID, false, comment.ID))

		err = s.service.DeleteComment(ctx, s.donor.ID, false, comment.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("stranger cannot delete the post", func() {
		err := s.service.DeletePost(ctx, s.donor.ID, false, post.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("author deletes the post and its comments", func() {
		s.Require().NoError(s.service.DeletePost(ctx, s.volunteer.ID, false, post.ID))
		_, _, err := s.service.GetPost(ctx, post.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
