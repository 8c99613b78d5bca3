package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	repo "github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
)

// WallService creates and lists wall posts.
type WallService struct {
	Users  repo.UserRepository
	Posts  repo.WallPostRepository
	Logger *logrus.Logger
}

func NewWallService(users repo.UserRepository, posts repo.WallPostRepository, logger *logrus.Logger) *WallService {
	return &WallService{Users: users, Posts: posts, Logger: orNop(logger)}
}

type CreateWallPostInput struct {
	AuthorID    string    `json:"author_id" validate:"required,max=64"`
	RecipientID string    `json:"recipient_id" validate:"required,max=64"`
	Text        string    `json:"text" validate:"required,notblank,max=1000"`
	Date        time.Time `json:"date" validate:"required"`
}

// Create stores a post and returns it with the author expanded.
func (s *WallService) Create(ctx context.Context, in CreateWallPostInput) (*entity.WallPostView, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	p := &entity.WallPost{
		AuthorID:    in.AuthorID,
		RecipientID: in.RecipientID,
		Text:        in.Text,
		Date:        in.Date,
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create wall post: %w", err)
	}
	metricWallPostsCreated.Add(1)

	author, err := s.Users.GetByID(ctx, in.AuthorID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("load author: %w", err)
	}
	return p.View(author.Public()), nil
}

// List returns the recipient's wall, newest first.
func (s *WallService) List(ctx context.Context, recipientID string) ([]entity.WallPostView, error) {
	if strings.TrimSpace(recipientID) == "" {
		return nil, ErrBadRequest
	}
	posts, err := s.Posts.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list wall posts: %w", err)
	}
	if posts == nil {
		posts = []entity.WallPostView{}
	}
	return posts, nil
}
