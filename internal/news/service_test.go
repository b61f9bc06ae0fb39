package news_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/internal/news"
	"github.com/pressroom/pressroom/internal/shared"
	_ "github.com/pressroom/pressroom/testing"
)

func newService(t *testing.T) *news.Service {
	t.Helper()
	repo, _ := newRepo(t)
	return news.NewService(repo)
}

func TestCreateAssignsServerFields(t *testing.T) {
	svc := newService(t)
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return created })

	article, err := svc.Create(context.Background(), news.Draft{
		Title:  "  Launch day  ",
		Script: "The rocket lifted off at dawn.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, article.ID)
	require.Equal(t, "Launch day", article.Title)
	require.Equal(t, created, article.CreatedAt)
	require.Equal(t, created, article.PublishedAt)
	require.Equal(t, []string{"General"}, article.Categories)
	require.Empty(t, article.Likes)
	require.Empty(t, article.Comments)
}

func TestCreateRejectsBlankFields(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), news.Draft{Title: "  ", Script: "text"})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(context.Background(), news.Draft{Title: "Title", Script: "   "})
	require.True(t, shared.IsValidation(err))
}

func TestUpdatePreservesCreationTime(t *testing.T) {
	repo, _ := newRepo(t)
	svc := news.NewService(repo)

	article, err := svc.Create(context.Background(), news.Draft{Title: "Before", Script: "v1"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), article.ID, news.Draft{Title: "After", Script: "v2"})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Title)
	require.Equal(t, article.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestUpdateMissingRecord(t *testing.T) {
	svc := newService(t)
	_, err := svc.Update(context.Background(), "nope", news.Draft{Title: "T", Script: "S"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	repo, _ := newRepo(t)
	svc := news.NewService(repo)

	article, err := svc.Create(context.Background(), news.Draft{Title: "Gone soon", Script: "bye"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), article.ID))

	_, err = svc.Get(context.Background(), article.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
