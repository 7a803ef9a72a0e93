package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/velorahq/velora-backend/internal/modules/user"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	byEmail map[string]*user.User
}

func (r *fakeUserRepo) CreateUser(_ context.Context, _ *user.User) error { return nil }

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, _ string) (*user.User, error) {
	return nil, errors.New("not found")
}

func testUser(t *testing.T, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &user.User{ID: uuid.New(), Email: "jo@example.com", PasswordHash: string(hash)}
}

func TestLoginIssuesTokenForUser(t *testing.T) {
	u := testUser(t, "hunter2")
	svc := NewService(&fakeUserRepo{byEmail: map[string]*user.User{u.Email: u}}, testSecret)

	tokenString, err := svc.Login(context.Background(), u.Email, "hunter2")
	require.NoError(t, err)

	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, u.ID.String(), claims.Subject)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	u := testUser(t, "hunter2")
	svc := NewService(&fakeUserRepo{byEmail: map[string]*user.User{u.Email: u}}, testSecret)

	_, err := svc.Login(context.Background(), u.Email, "wrong")
	require.Error(t, err)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := NewService(&fakeUserRepo{byEmail: map[string]*user.User{}}, testSecret)
	_, err := svc.Login(context.Background(), "nobody@example.com", "hunter2")
	require.Error(t, err)
}

func TestRequireAuthPutsUserIDOnContext(t *testing.T) {
	u := testUser(t, "hunter2")
	svc := NewService(&fakeUserRepo{byEmail: map[string]*user.User{u.Email: u}}, testSecret)
	token, err := svc.Login(context.Background(), u.Email, "hunter2")
	require.NoError(t, err)

	var gotID string
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID.String(), gotID)
}

func TestRequireAuthRejectsMissingOrBadToken(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
