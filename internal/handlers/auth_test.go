package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/esusuconfam/esusu-api/pkg/dto"
	"github.com/esusuconfam/esusu-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthTest(t *testing.T) (*testutil.MockUserService, http.Handler) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	handler := NewAuthHandler(mockUserService, newTestJWTService(), time.Hour)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/register", handler.Register)
	app.Post("/auth/login", handler.Login)
	return mockUserService, app
}

func postJSON(t *testing.T, app http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockUserService, app := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com", Name: "Ada"}

	mockUserService.On("Register", mock.Anything, services.RegisterInput{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "s3cretpass",
	}).Return(user, nil)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "Ada@Example.com",
		Name:     "Ada",
		Password: "s3cretpass",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, userID, response.User.ID)
	assert.NotEmpty(t, response.AccessToken)

	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	mockUserService, app := setupAuthTest(t)

	mockUserService.On("Register", mock.Anything, mock.Anything).
		Return(nil, services.ErrEmailTaken)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "s3cretpass",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	_, app := setupAuthTest(t)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "short",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	_, app := setupAuthTest(t)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "not-an-email",
		Name:     "Ada",
		Password: "s3cretpass",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockUserService, app := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com", Name: "Ada"}

	mockUserService.On("Authenticate", mock.Anything, "ada@example.com", "s3cretpass").
		Return(user, nil)

	rec := postJSON(t, app, "/auth/login", dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "s3cretpass",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, userID, response.User.ID)
	assert.NotEmpty(t, response.AccessToken)

	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockUserService, app := setupAuthTest(t)

	mockUserService.On("Authenticate", mock.Anything, "ada@example.com", "wrongpass").
		Return(nil, services.ErrInvalidCredentials)

	rec := postJSON(t, app, "/auth/login", dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrongpass",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUserService.AssertExpectations(t)
}
