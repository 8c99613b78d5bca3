package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/memory"
)

func TestWallService_CreateExpandsRedactedAuthor(t *testing.T) {
	store := memory.NewStore()
	svc := NewWallService(store.Users(), store.WallPosts(), nil)
	author := seedUser(store, entity.User{Login: "ivan", Password: "hash", Name: "Ivan"})

	view, err := svc.Create(context.Background(), CreateWallPostInput{
		AuthorID:    author.ID,
		RecipientID: "r1",
		Text:        "hello",
		Date:        time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, view.Author)
	assert.Equal(t, author.ID, view.Author.ID)
	assert.Equal(t, "r1", view.RecipientID)
	assert.NotEmpty(t, view.ID)

	b, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "ivan")
	assert.NotContains(t, string(b), "hash")
}

func TestWallService_CreateValidation(t *testing.T) {
	store := memory.NewStore()
	svc := NewWallService(store.Users(), store.WallPosts(), nil)

	_, err := svc.Create(context.Background(), CreateWallPostInput{AuthorID: "a", RecipientID: "r", Text: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]bool{}
	for _, v := range verr.Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["text"])
	assert.True(t, fields["date"])

	list, err := svc.List(context.Background(), "r")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWallService_CreateWithUnknownAuthor(t *testing.T) {
	store := memory.NewStore()
	svc := NewWallService(store.Users(), store.WallPosts(), nil)

	view, err := svc.Create(context.Background(), CreateWallPostInput{AuthorID: "ghost", RecipientID: "r", Text: "hi", Date: time.Now()})
	require.NoError(t, err)
	assert.Nil(t, view.Author)
}

func TestWallService_ListNewestFirst(t *testing.T) {
	store := memory.NewStore()
	svc := NewWallService(store.Users(), store.WallPosts(), nil)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, d := range []time.Duration{0, 2 * time.Hour, time.Hour} {
		_, err := svc.Create(ctx, CreateWallPostInput{AuthorID: "a", RecipientID: "r", Text: string(rune('a' + i)), Date: base.Add(d)})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateWallPostInput{AuthorID: "a", RecipientID: "elsewhere", Text: "x", Date: base.Add(5 * time.Hour)})
	require.NoError(t, err)

	list, err := svc.List(ctx, "r")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{list[0].Text, list[1].Text, list[2].Text})
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].Date.After(list[i-1].Date))
	}
}

func TestWallService_ListRequiresRecipient(t *testing.T) {
	store := memory.NewStore()
	svc := NewWallService(store.Users(), store.WallPosts(), nil)

	_, err := svc.List(context.Background(), " ")
	assert.ErrorIs(t, err, ErrBadRequest)

	list, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
