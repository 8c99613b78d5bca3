// Package memory is an in-process entity store used for local development
// (STORE_DRIVER=memory) and by package tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
)

// Store holds every collection behind one lock.
type Store struct {
	mu        sync.RWMutex
	users     map[string]entity.User
	posts     map[string]entity.Post
	comments  map[string]entity.Comment
	wallPosts []entity.WallPost
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]entity.User),
		posts:    make(map[string]entity.Post),
		comments: make(map[string]entity.Comment),
		now:      time.Now,
	}
}

func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }
func (s *Store) Posts() *PostRepository         { return &PostRepository{s: s} }
func (s *Store) Comments() *CommentRepository   { return &CommentRepository{s: s} }
func (s *Store) WallPosts() *WallPostRepository { return &WallPostRepository{s: s} }

// AddPost inserts a post, assigning an id when empty.
func (s *Store) AddPost(p entity.Post) entity.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.posts[p.ID] = p
	return p
}

// AddComment inserts a comment, assigning an id when empty.
func (s *Store) AddComment(c entity.Comment) entity.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.comments[c.ID] = c
	return c
}

// PostsByUser returns the posts owned by userID.
func (s *Store) PostsByUser(userID string) []entity.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Post
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// CommentsByUser returns the comments owned by userID.
func (s *Store) CommentsByUser(userID string) []entity.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Comment
	for _, c := range s.comments {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, patch entity.ProfilePatch) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&u)
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return &u, nil
}

func (r *UserRepository) SetAvatar(_ context.Context, id, filename string) (*string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	previous := u.Avatar
	name := filename
	u.Avatar = &name
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return previous, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type PostRepository struct{ s *Store }

func (r *PostRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.posts {
		if p.UserID == userID {
			delete(r.s.posts, id)
			n++
		}
	}
	return n, nil
}

type CommentRepository struct{ s *Store }

func (r *CommentRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.comments {
		if c.UserID == userID {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}

type WallPostRepository struct{ s *Store }

func (r *WallPostRepository) Create(_ context.Context, p *entity.WallPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = r.s.now()
	r.s.wallPosts = append(r.s.wallPosts, *p)
	return nil
}

func (r *WallPostRepository) ListByRecipient(_ context.Context, recipientID string) ([]entity.WallPostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.WallPostView, 0)
	for i := range r.s.wallPosts {
		p := r.s.wallPosts[i]
		if p.RecipientID != recipientID {
			continue
		}
		var author *entity.PublicUser
		if u, ok := r.s.users[p.AuthorID]; ok {
			author = u.Public()
		}
		out = append(out, *p.View(author))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

var (
	_ repository.UserRepository     = (*UserRepository)(nil)
	_ repository.PostRepository     = (*PostRepository)(nil)
	_ repository.CommentRepository  = (*CommentRepository)(nil)
	_ repository.WallPostRepository = (*WallPostRepository)(nil)
)
