package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	repo "github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
)

// Cascade steps in execution order.
const (
	StepUser     = "user"
	StepPosts    = "posts"
	StepComments = "comments"
)

// DeleteResult reports what a completed account removal deleted.
type DeleteResult struct {
	UserID          string `json:"user_id"`
	PostsDeleted    int64  `json:"posts_deleted"`
	CommentsDeleted int64  `json:"comments_deleted"`
}

// CascadeError is returned when an account removal stops part way.
// Completed lists the steps that had already succeeded.
type CascadeError struct {
	UserID    string
	Step      string
	Completed []string
	Err       error
}

func (e *CascadeError) Error() string {
	done := "none"
	if len(e.Completed) > 0 {
		done = strings.Join(e.Completed, ",")
	}
	return fmt.Sprintf("delete user %s: step %q failed (completed: %s): %v", e.UserID, e.Step, done, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// CascadeJournal records removals that have started but not finished, so an
// interrupted cascade can be completed later.
type CascadeJournal interface {
	Begin(ctx context.Context, userID string) error
	Finish(ctx context.Context, userID string) error
	Pending(ctx context.Context) ([]string, error)
}

const cascadeJournalKey = "cascade:pending"

// RedisCascadeJournal keeps pending removals in a Redis set.
type RedisCascadeJournal struct {
	Redis *redis.Client
	Key   string
}

func NewRedisCascadeJournal(rdb *redis.Client) *RedisCascadeJournal {
	return &RedisCascadeJournal{Redis: rdb, Key: cascadeJournalKey}
}

func (j *RedisCascadeJournal) Begin(ctx context.Context, userID string) error {
	return j.Redis.SAdd(ctx, j.Key, userID).Err()
}

func (j *RedisCascadeJournal) Finish(ctx context.Context, userID string) error {
	return j.Redis.SRem(ctx, j.Key, userID).Err()
}

func (j *RedisCascadeJournal) Pending(ctx context.Context) ([]string, error) {
	return j.Redis.SMembers(ctx, j.Key).Result()
}

// cascade deletes the user, then their posts, then their comments. A non-nil
// result means the user row is gone even if a later step failed.
func (s *ProfileService) cascade(ctx context.Context, userID string) (*DeleteResult, error) {
	s.journalBegin(ctx, userID)

	if err := s.Users.Delete(ctx, userID); err != nil {
		s.journalFinish(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		metricCascadeFailures.Add(1)
		return nil, &CascadeError{UserID: userID, Step: StepUser, Err: err}
	}

	res := &DeleteResult{UserID: userID}
	if err := s.purgeContent(ctx, res); err != nil {
		// keep the entry for the sweeper even if it was cleared concurrently
		s.journalBegin(ctx, userID)
		return res, err
	}
	s.journalFinish(ctx, userID)
	return res, nil
}

// purgeContent runs the post and comment steps. Both are idempotent.
func (s *ProfileService) purgeContent(ctx context.Context, res *DeleteResult) error {
	n, err := s.Posts.DeleteByUser(ctx, res.UserID)
	if err != nil {
		metricCascadeFailures.Add(1)
		return &CascadeError{UserID: res.UserID, Step: StepPosts, Completed: []string{StepUser}, Err: err}
	}
	res.PostsDeleted = n

	n, err = s.Comments.DeleteByUser(ctx, res.UserID)
	if err != nil {
		metricCascadeFailures.Add(1)
		return &CascadeError{UserID: res.UserID, Step: StepComments, Completed: []string{StepUser, StepPosts}, Err: err}
	}
	res.CommentsDeleted = n
	return nil
}

// ResumePendingCascades finishes journaled removals whose user row is already
// gone and drops entries whose user still exists. It returns how many
// removals were completed.
func (s *ProfileService) ResumePendingCascades(ctx context.Context) (int, error) {
	if s.Journal == nil {
		return 0, nil
	}
	ids, err := s.Journal.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending cascades: %w", err)
	}

	resumed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return resumed, err
		}
		_, err := s.Users.GetByID(ctx, id)
		if err == nil {
			s.journalFinish(ctx, id)
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithError(err).WithField("user_id", id).Warn("cascade resume: user lookup failed")
			continue
		}

		res := &DeleteResult{UserID: id}
		if err := s.purgeContent(ctx, res); err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("cascade resume failed")
			continue
		}
		s.journalFinish(ctx, id)
		resumed++
		metricCascadesResumed.Add(1)
		s.Logger.WithFields(logrus.Fields{
			"user_id":          id,
			"posts_deleted":    res.PostsDeleted,
			"comments_deleted": res.CommentsDeleted,
		}).Info("cascade resumed")
	}
	return resumed, nil
}

func (s *ProfileService) journalBegin(ctx context.Context, userID string) {
	if s.Journal == nil {
		return
	}
	if err := s.Journal.Begin(ctx, userID); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("cascade journal write failed")
	}
}

func (s *ProfileService) journalFinish(ctx context.Context, userID string) {
	if s.Journal == nil {
		return
	}
	if err := s.Journal.Finish(ctx, userID); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("cascade journal clear failed")
	}
}
