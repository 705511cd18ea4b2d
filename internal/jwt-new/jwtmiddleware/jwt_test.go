package jwtmiddleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	security "github.com/linemk/goshop/internal/jwt-new"
	"github.com/linemk/goshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/goshop/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{ID: 42, Name: "Alice", Email: "alice@example.com", IsAdmin: true}
	token, err := security.NewToken(context.Background(), user, time.Hour)
	assert.NoError(t, err)

	var got models.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := jwtmiddleware.FromContext(r.Context())
		assert.True(t, ok)
		got = identity
		w.WriteHeader(http.StatusOK)
	})

	handler := jwtmiddleware.Authenticate()(next)

	req := httptest.NewRequest("GET", "/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, got.IsAdmin)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	handler := jwtmiddleware.Authenticate()(next)

	req := httptest.NewRequest("GET", "/orders/mine", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	handler := jwtmiddleware.Authenticate()(next)

	req := httptest.NewRequest("GET", "/orders/mine", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "other-secret")
	user := &models.User{ID: 1, Name: "Alice"}
	token, err := security.NewToken(context.Background(), user, time.Hour)
	assert.NoError(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	handler := jwtmiddleware.Authenticate()(next)

	req := httptest.NewRequest("GET", "/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{ID: 1, Name: "Alice"}
	token, err := security.NewToken(context.Background(), user, -time.Minute)
	assert.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	handler := jwtmiddleware.Authenticate()(next)

	req := httptest.NewRequest("GET", "/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAdmin_ForbiddenForRegularUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	handler := jwtmiddleware.RequireAdmin(next)

	req := httptest.NewRequest("GET", "/orders", nil)
	ctx := context.WithValue(req.Context(), jwtmiddleware.IdentityKey, models.Identity{ID: 1, IsAdmin: false})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req.WithContext(ctx))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	handler := jwtmiddleware.RequireAdmin(next)

	req := httptest.NewRequest("GET", "/orders", nil)
	ctx := context.WithValue(req.Context(), jwtmiddleware.IdentityKey, models.Identity{ID: 1, IsAdmin: true})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req.WithContext(ctx))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireAdmin_UnauthenticatedRequest(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	handler := jwtmiddleware.RequireAdmin(next)

	req := httptest.NewRequest("GET", "/orders", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
