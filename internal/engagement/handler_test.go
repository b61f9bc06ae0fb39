package engagement_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/internal/auth"
	"github.com/pressroom/pressroom/internal/engagement"
	"github.com/pressroom/pressroom/internal/news"
	"github.com/pressroom/pressroom/internal/shared"
	_ "github.com/pressroom/pressroom/testing"
)

type stubDirectory struct {
	names map[string]string
}

func (d *stubDirectory) FindByID(ctx context.Context, id string) (*auth.User, error) {
	name, ok := d.names[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &auth.User{ID: id, Name: name, Role: auth.RoleUser}, nil
}

func newEngagementRouter(t *testing.T) (http.Handler, *news.RedisRepository, *auth.TokenIssuer) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := news.NewRedisRepository(client, 30*24*time.Hour)

	issuer := auth.NewTokenIssuer([]byte("engagement-test-secret"), 7*24*time.Hour)
	mw := &auth.Middleware{Issuer: issuer}
	directory := &stubDirectory{names: map[string]string{"u-1": "Reader"}}
	handler := engagement.NewHandler(nil, engagement.NewService(repo), directory, mw)

	r := chi.NewRouter()
	r.Use(mw.ResolveToken)
	r.Route("/api/news", handler.MountRoutes)
	return r, repo, issuer
}

func bearerFor(t *testing.T, issuer *auth.TokenIssuer, id string) string {
	t.Helper()
	token, err := issuer.Issue(&auth.User{ID: id, Role: auth.RoleUser})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestLikeEndpointTogglesMembership(t *testing.T) {
	router, repo, issuer := newEngagementRouter(t)
	article := seedArticle(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/api/news/"+article.ID+"/like", nil)
	req.Header.Set("Authorization", bearerFor(t, issuer, "u-1"))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var likes []string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &likes))
	require.Equal(t, []string{"u-1"}, likes)
}

func TestLikeEndpointRequiresToken(t *testing.T) {
	router, repo, _ := newEngagementRouter(t)
	article := seedArticle(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/api/news/"+article.ID+"/like", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCommentEndpointSnapshotsAuthorName(t *testing.T) {
	router, repo, issuer := newEngagementRouter(t)
	article := seedArticle(t, repo)

	body := `{"text":"great piece"}`
	req := httptest.NewRequest(http.MethodPost, "/api/news/"+article.ID+"/comment", strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, issuer, "u-1"))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var log []news.Comment
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &log))
	require.Len(t, log, 1)
	require.Equal(t, "u-1", log[0].User)
	require.Equal(t, "Reader", log[0].Name)
	require.Equal(t, "great piece", log[0].Text)
	require.False(t, log[0].Date.IsZero())
}

func TestCommentEndpointRejectsBlankText(t *testing.T) {
	router, repo, issuer := newEngagementRouter(t)
	article := seedArticle(t, repo)

	body := `{"text":"   "}`
	req := httptest.NewRequest(http.MethodPost, "/api/news/"+article.ID+"/comment", strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, issuer, "u-1"))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	var payload struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "text", payload.Field)
}

func TestEngagementOnExpiredRecordIsNotFound(t *testing.T) {
	router, repo, issuer := newEngagementRouter(t)
	article := seedArticle(t, repo)
	require.NoError(t, repo.Delete(context.Background(), article.ID))

	req := httptest.NewRequest(http.MethodPut, "/api/news/"+article.ID+"/like", nil)
	req.Header.Set("Authorization", bearerFor(t, issuer, "u-1"))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
}
