package application

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/memory"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/imaging"
)

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }

func seedUser(store *memory.Store, u entity.User) *entity.User {
	_ = store.Users().Create(context.Background(), &u)
	return &u
}

type fakeTranscoder struct {
	calls int
	err   error
}

func (f *fakeTranscoder) Transcode(_ context.Context, src []byte, opts imaging.Options) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("jpeg:"), src...), nil
}

type fakeFileStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	writeErr error
	deleted  []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}}
}

func (f *fakeFileStore) Write(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.files[key] = data
	return nil
}

func (f *fakeFileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type memJournal struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newMemJournal() *memJournal { return &memJournal{ids: map[string]struct{}{}} }

func (j *memJournal) Begin(_ context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ids[id] = struct{}{}
	return nil
}

func (j *memJournal) Finish(_ context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.ids, id)
	return nil
}

func (j *memJournal) Pending(_ context.Context) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.ids))
	for id := range j.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// flakyPosts fails DeleteByUser while fail is set.
type flakyPosts struct {
	next interface {
		DeleteByUser(ctx context.Context, userID string) (int64, error)
	}
	fail bool
}

func (f *flakyPosts) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if f.fail {
		return 0, errBoom
	}
	return f.next.DeleteByUser(ctx, userID)
}

type capturePublisher struct {
	jobs []any
}

func (c *capturePublisher) PublishJSON(_ context.Context, body any) error {
	c.jobs = append(c.jobs, body)
	return nil
}
