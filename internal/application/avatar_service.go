package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/imaging"
)

// Transcoder converts uploaded bytes to the stored avatar format.
type Transcoder interface {
	Transcode(ctx context.Context, src []byte, opts imaging.Options) ([]byte, error)
}

// FileStore persists avatar files by key.
type FileStore interface {
	Write(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// AvatarConfig controls the output size and upload limits.
type AvatarConfig struct {
	Width            int
	Height           int
	Quality          int
	MaxBytes         int64
	RemoveSuperseded bool
}

func DefaultAvatarConfig() AvatarConfig {
	return AvatarConfig{Width: 400, Height: 400, Quality: 90, MaxBytes: 5 << 20, RemoveSuperseded: true}
}

// AvatarUpload is one uploaded file. Size is the declared size, or -1.
type AvatarUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// IngestedAvatar is a transcoded and stored file not yet linked to a user.
type IngestedAvatar struct {
	Filename string
	Bytes    int
}

// AvatarFilename names a user's avatar after the upload time in milliseconds.
func AvatarFilename(userID string, at time.Time) string {
	return fmt.Sprintf("%s-%d.jpeg", userID, at.UnixMilli())
}

// AvatarService validates, transcodes, stores and links avatar images.
type AvatarService struct {
	Users      repo.UserRepository
	Transcoder Transcoder
	Store      FileStore
	Config     AvatarConfig
	Cache      *ProfileCache
	Index      *ProfileIndex
	Logger     *logrus.Logger
	Now        func() time.Time
}

func NewAvatarService(users repo.UserRepository, tr Transcoder, store FileStore, cfg AvatarConfig, logger *logrus.Logger) *AvatarService {
	return &AvatarService{
		Users:      users,
		Transcoder: tr,
		Store:      store,
		Config:     cfg,
		Logger:     orNop(logger),
		Now:        time.Now,
	}
}

// CheckUpload rejects non-image and oversized uploads before any processing.
func (s *AvatarService) CheckUpload(up *AvatarUpload) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(up.ContentType)), "image/") {
		metricAvatarRejections.Add(1)
		return ErrInvalidFileType
	}
	if s.Config.MaxBytes > 0 && up.Size > s.Config.MaxBytes {
		metricAvatarRejections.Add(1)
		return ErrFileTooLarge
	}
	return nil
}

// Ingest transcodes the upload and writes it to the file store. A nil upload
// is a no-op and returns (nil, nil).
func (s *AvatarService) Ingest(ctx context.Context, requesterID string, up *AvatarUpload) (*IngestedAvatar, error) {
	if up == nil {
		return nil, nil
	}
	if err := s.CheckUpload(up); err != nil {
		return nil, err
	}
	filename := AvatarFilename(requesterID, s.Now())

	src, err := s.read(up.Body)
	if err != nil {
		return nil, err
	}

	out, err := s.Transcoder.Transcode(ctx, src, imaging.Options{
		Width:   s.Config.Width,
		Height:  s.Config.Height,
		Quality: s.Config.Quality,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", requesterID).Warn("avatar transcode failed")
		return nil, fmt.Errorf("%w: %w", ErrTranscodeFailure, err)
	}

	if err := s.Store.Write(ctx, filename, out, "image/jpeg"); err != nil {
		s.Logger.WithError(err).WithField("file", filename).Error("avatar write failed")
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return &IngestedAvatar{Filename: filename, Bytes: len(out)}, nil
}

func (s *AvatarService) read(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, ErrMissingFile
	}
	if s.Config.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, s.Config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(b)) > s.Config.MaxBytes {
		metricAvatarRejections.Add(1)
		return nil, ErrFileTooLarge
	}
	return b, nil
}

// Commit links an ingested file to the requester and returns the filename.
func (s *AvatarService) Commit(ctx context.Context, requesterID string, in *IngestedAvatar) (string, error) {
	if in == nil {
		return "", ErrMissingFile
	}

	previous, err := s.Users.SetAvatar(ctx, requesterID, in.Filename)
	if err != nil {
		s.discard(ctx, in.Filename)
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("set avatar: %w", err)
	}
	metricAvatarsStored.Add(1)

	s.Cache.Invalidate(ctx, requesterID)
	if s.Index != nil {
		if u, err := s.Users.GetByID(ctx, requesterID); err == nil {
			s.Index.Put(ctx, u)
		}
	}
	if s.Config.RemoveSuperseded && previous != nil && *previous != "" && *previous != in.Filename {
		s.discard(ctx, *previous)
	}
	return in.Filename, nil
}

// Upload runs Ingest then Commit.
func (s *AvatarService) Upload(ctx context.Context, requesterID string, up *AvatarUpload) (string, error) {
	in, err := s.Ingest(ctx, requesterID, up)
	if err != nil {
		return "", err
	}
	return s.Commit(ctx, requesterID, in)
}

func (s *AvatarService) discard(ctx context.Context, filename string) {
	if err := s.Store.Delete(ctx, filename); err != nil {
		s.Logger.WithError(err).WithField("file", filename).Warn("avatar cleanup failed")
	}
}
