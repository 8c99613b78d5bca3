package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	repo "github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

// ProfileService reads, edits and removes user profiles.
// Cache, Index, Notify and Journal are optional.
type ProfileService struct {
	Users    repo.UserRepository
	Posts    repo.PostRepository
	Comments repo.CommentRepository
	Journal  CascadeJournal
	Cache    *ProfileCache
	Index    *ProfileIndex
	Notify   *Notifier
	Logger   *logrus.Logger
}

func NewProfileService(users repo.UserRepository, posts repo.PostRepository, comments repo.CommentRepository, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		Users:    users,
		Posts:    posts,
		Comments: comments,
		Logger:   orNop(logger),
	}
}

// UpdateProfileInput is the editable part of a profile. Any other key in the
// request body is dropped during decoding.
type UpdateProfileInput struct {
	Name       *string `json:"name" validate:"omitempty,personname"`
	Lastname   *string `json:"lastname" validate:"omitempty,personname"`
	Patronymic *string `json:"patronymic" validate:"omitempty,personname"`
	Birthday   *string `json:"birthday" validate:"omitempty,pastdate"`
	Phone      *string `json:"phone" validate:"omitempty,phone"`
}

// Patch converts the input to the repository patch. An empty birthday is
// ignored.
func (in UpdateProfileInput) Patch() entity.ProfilePatch {
	p := entity.ProfilePatch{
		Name:       in.Name,
		Lastname:   in.Lastname,
		Patronymic: in.Patronymic,
		Phone:      in.Phone,
	}
	if in.Birthday != nil {
		if t, ok := helpers.ParseTimeAny(*in.Birthday); ok {
			p.Birthday = &t
		}
	}
	return p
}

func (in UpdateProfileInput) changes() map[string]string {
	out := map[string]string{}
	set := func(k string, v *string) {
		if v != nil {
			out[k] = *v
		}
	}
	set("name", in.Name)
	set("lastname", in.Lastname)
	set("patronymic", in.Patronymic)
	set("birthday", in.Birthday)
	set("phone", in.Phone)
	return out
}

// GetSelf returns the requester's own full record.
func (s *ProfileService) GetSelf(ctx context.Context, requesterID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, requesterID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// GetProfile returns the public view of any user.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*entity.PublicUser, error) {
	if cached, ok := s.Cache.Get(ctx, userID); ok {
		return cached, nil
	}
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	pub := u.Public()
	s.Cache.Set(ctx, pub)
	return pub, nil
}

// Update validates the input, checks that the requester may edit targetID and
// applies the whitelisted fields. A missing target yields (nil, nil).
func (s *ProfileService) Update(ctx context.Context, req Requester, targetID string, in UpdateProfileInput) (*entity.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := AuthorizeUpdate(req, targetID); err != nil {
		return nil, err
	}

	u, err := s.Users.UpdateProfile(ctx, targetID, in.Patch())
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if u == nil {
		return nil, nil
	}

	metricProfilesUpdated.Add(1)
	s.Cache.Invalidate(ctx, u.ID)
	s.Index.Put(ctx, u)
	s.Notify.ProfileUpdated(ctx, u, req.ID, in.changes())
	return u, nil
}

// Delete removes targetID together with their posts and comments.
func (s *ProfileService) Delete(ctx context.Context, req Requester, targetID string) (*DeleteResult, error) {
	target, err := s.Users.GetByID(ctx, targetID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := AuthorizeDelete(req, targetID, target != nil); err != nil {
		return nil, err
	}

	res, err := s.cascade(ctx, targetID)
	if res != nil {
		s.Cache.Invalidate(ctx, targetID)
		s.Index.Remove(ctx, targetID)
	}
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": targetID, "admin_id": req.ID}).Error("user removal incomplete")
		return nil, err
	}

	metricUsersDeleted.Add(1)
	s.Notify.AccountDeleted(ctx, target, req.ID)
	s.Logger.WithFields(logrus.Fields{
		"user_id":          targetID,
		"admin_id":         req.ID,
		"posts_deleted":    res.PostsDeleted,
		"comments_deleted": res.CommentsDeleted,
	}).Info("user removed")
	return res, nil
}

// SearchProfiles looks profiles up by name.
func (s *ProfileService) SearchProfiles(ctx context.Context, q string, size int) ([]ProfileDocument, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrBadRequest
	}
	out, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return out, nil
}
