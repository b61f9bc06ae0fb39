package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pressroom/pressroom/internal/auth"
	"github.com/pressroom/pressroom/internal/shared"
	_ "github.com/pressroom/pressroom/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) Create(ctx context.Context, user *auth.User) error {
	if s.user != nil && s.user.Email == user.Email {
		return shared.ErrEmailTaken
	}
	s.user = user
	return nil
}

func (s *stubRepo) UpdateProfile(ctx context.Context, id string, name, passwordHash *string, role *auth.Role) error {
	if s.user == nil || s.user.ID != id {
		return shared.ErrNotFound
	}
	if name != nil {
		s.user.Name = *name
	}
	if passwordHash != nil {
		s.user.PasswordHash = *passwordHash
	}
	return nil
}

func newAuthRouter(t *testing.T, repo auth.Repository) (http.Handler, *auth.TokenIssuer) {
	t.Helper()
	issuer := auth.NewTokenIssuer([]byte("handler-test-secret"), 7*24*time.Hour)
	mw := &auth.Middleware{Issuer: issuer}
	handler := auth.NewHandler(nil, auth.NewService(repo), issuer, mw)
	r := chi.NewRouter()
	r.Use(mw.ResolveToken)
	r.Route("/api/auth", handler.MountRoutes)
	return r, issuer
}

func TestLoginReturnsToken(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &auth.User{
		ID: "u-1", Name: "Reader", Email: "user@test.local",
		PasswordHash: string(hashed), Role: auth.RoleUser,
	}}
	router, issuer := newAuthRouter(t, repo)

	body := `{"email":"user@test.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
		Role  string `json:"role"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Role != "user" || payload.Name != "Reader" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	claims, err := issuer.Validate(payload.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Fatalf("claims subject mismatch: %+v", claims)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	repo := &stubRepo{user: &auth.User{
		ID: "u-1", Email: "user@test.local", PasswordHash: string(hashed), Role: auth.RoleUser,
	}}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"user@test.local","password":"wrongpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestRegisterValidatesPayload(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{})

	body := `{"name":"","email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestProfileUpdateRequiresToken(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodPut, "/api/auth/profile", strings.NewReader(`{"name":"X"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	repo := &stubRepo{user: &auth.User{
		ID: "u-1", Email: "user@test.local", PasswordHash: string(hashed), Role: auth.RoleUser,
	}}
	router, _ := newAuthRouter(t, repo)

	past := time.Now().Add(-8 * 24 * time.Hour)
	staleIssuer := auth.NewTokenIssuer([]byte("handler-test-secret"), 7*24*time.Hour).
		WithClock(func() time.Time { return past })
	token, err := staleIssuer.Issue(repo.user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/auth/profile", strings.NewReader(`{"name":"X"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", res.Code)
	}
}
