package application

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/memory"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/imaging"
)

var fixedNow = time.UnixMilli(1700000000123)

type avatarFixture struct {
	store *memory.Store
	tr    *fakeTranscoder
	files *fakeFileStore
	svc   *AvatarService
	user  *entity.User
}

func newAvatarFixture(t *testing.T) *avatarFixture {
	t.Helper()
	store := memory.NewStore()
	f := &avatarFixture{store: store, tr: &fakeTranscoder{}, files: newFakeFileStore()}
	f.svc = NewAvatarService(store.Users(), f.tr, f.files, DefaultAvatarConfig(), nil)
	f.svc.Now = func() time.Time { return fixedNow }
	f.user = seedUser(store, entity.User{Role: entity.RoleUser, Name: "Ivan"})
	return f
}

func upload(contentType, body string) *AvatarUpload {
	return &AvatarUpload{ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func (f *avatarFixture) storedAvatar(t *testing.T) *string {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	return u.Avatar
}

func TestAvatarFilename(t *testing.T) {
	assert.Equal(t, "u1-1700000000123.jpeg", AvatarFilename("u1", fixedNow))
}

func TestAvatarService_IngestNamesAreUniquePerMillisecond(t *testing.T) {
	f := newAvatarFixture(t)
	ctx := context.Background()

	f.svc.Now = func() time.Time { return fixedNow }
	first, err := f.svc.Ingest(ctx, f.user.ID, upload("image/png", "one"))
	require.NoError(t, err)

	f.svc.Now = func() time.Time { return fixedNow.Add(time.Millisecond) }
	second, err := f.svc.Ingest(ctx, f.user.ID, upload("image/png", "two"))
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Filename, second.Filename)
	for _, in := range []*IngestedAvatar{first, second} {
		assert.True(t, strings.HasSuffix(in.Filename, ".jpeg"), in.Filename)
		assert.True(t, strings.HasPrefix(in.Filename, f.user.ID+"-"), in.Filename)
		assert.Contains(t, f.files.files, in.Filename)
	}
	assert.Len(t, f.files.files, 2)
}

func TestAvatarService_Upload(t *testing.T) {
	f := newAvatarFixture(t)

	name, err := f.svc.Upload(context.Background(), f.user.ID, upload("image/png", "pixels"))
	require.NoError(t, err)

	want := f.user.ID + "-1700000000123.jpeg"
	assert.Equal(t, want, name)
	assert.Equal(t, []byte("jpeg:pixels"), f.files.files[want])
	require.NotNil(t, f.storedAvatar(t))
	assert.Equal(t, want, *f.storedAvatar(t))
}

func TestAvatarService_RejectsNonImageBeforeProcessing(t *testing.T) {
	f := newAvatarFixture(t)

	for _, ct := range []string{"application/pdf", "", "text/plain", "imagefoo/bar"} {
		_, err := f.svc.Upload(context.Background(), f.user.ID, upload(ct, "data"))
		assert.ErrorIs(t, err, ErrInvalidFileType, ct)
	}
	assert.Zero(t, f.tr.calls)
	assert.Empty(t, f.files.files)
	assert.Nil(t, f.storedAvatar(t))
}

func TestAvatarService_NoFile(t *testing.T) {
	f := newAvatarFixture(t)

	in, err := f.svc.Ingest(context.Background(), f.user.ID, nil)
	assert.NoError(t, err)
	assert.Nil(t, in)

	_, err = f.svc.Upload(context.Background(), f.user.ID, nil)
	assert.ErrorIs(t, err, ErrMissingFile)
	assert.Nil(t, f.storedAvatar(t))
}

func TestAvatarService_TranscodeFailure(t *testing.T) {
	f := newAvatarFixture(t)
	f.tr.err = errBoom

	_, err := f.svc.Upload(context.Background(), f.user.ID, upload("image/jpeg", "junk"))
	assert.ErrorIs(t, err, ErrTranscodeFailure)
	assert.Empty(t, f.files.files)
	assert.Nil(t, f.storedAvatar(t))
}

func TestAvatarService_PersistenceFailure(t *testing.T) {
	f := newAvatarFixture(t)
	f.files.writeErr = errBoom

	_, err := f.svc.Upload(context.Background(), f.user.ID, upload("image/jpeg", "data"))
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.Nil(t, f.storedAvatar(t))
}

func TestAvatarService_TooLarge(t *testing.T) {
	f := newAvatarFixture(t)
	f.svc.Config.MaxBytes = 4

	_, err := f.svc.Upload(context.Background(), f.user.ID, upload("image/jpeg", "12345"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	undeclared := &AvatarUpload{ContentType: "image/jpeg", Size: -1, Body: strings.NewReader("123456")}
	_, err = f.svc.Upload(context.Background(), f.user.ID, undeclared)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Zero(t, f.tr.calls)
}

func TestAvatarService_RemovesSupersededFile(t *testing.T) {
	f := newAvatarFixture(t)
	ctx := context.Background()
	_, err := f.store.Users().SetAvatar(ctx, f.user.ID, "old.jpeg")
	require.NoError(t, err)
	f.files.files["old.jpeg"] = []byte("old")

	_, err = f.svc.Upload(ctx, f.user.ID, upload("image/gif", "new"))
	require.NoError(t, err)
	assert.NotContains(t, f.files.files, "old.jpeg")

	f.svc.Config.RemoveSuperseded = false
	f.svc.Now = func() time.Time { return fixedNow.Add(time.Second) }
	prev := *f.storedAvatar(t)
	_, err = f.svc.Upload(ctx, f.user.ID, upload("image/gif", "newer"))
	require.NoError(t, err)
	assert.Contains(t, f.files.files, prev)
}

func TestAvatarService_CommitForUnknownUser(t *testing.T) {
	f := newAvatarFixture(t)

	_, err := f.svc.Upload(context.Background(), "ghost", upload("image/png", "x"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, f.files.files)
}

func TestAvatarService_WithImagingTranscoder(t *testing.T) {
	f := newAvatarFixture(t)
	f.svc.Transcoder = imaging.NewTranscoder()

	src := image.NewRGBA(image.Rect(0, 0, 300, 120))
	for x := 0; x < 300; x++ {
		for y := 0; y < 120; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: 80, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	name, err := f.svc.Upload(context.Background(), f.user.ID, &AvatarUpload{ContentType: "image/png", Size: int64(buf.Len()), Body: &buf})
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(f.files.files[name]))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}
