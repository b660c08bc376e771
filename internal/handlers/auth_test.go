package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/hrms_backend/internal/hash"
	"github.com/Skotchmaster/hrms_backend/internal/models"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/roles"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.PushSubscription{},
		&models.Notification{},
		&models.Holiday{},
		&models.Leave{},
	))
	return db
}

func newAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		DB:            db,
		Users:         &repo.UserRepo{DB: db},
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func jsonRequest(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	e := echo.New()
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignup(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)

	payload := map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "password123",
	}
	c, rec := jsonRequest(t, http.MethodPost, "/auth/signup", payload)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&user).Error)
	require.Equal(t, roles.Employee, user.Role)
	require.Equal(t, models.StatusActive, user.Status)
	require.NotEqual(t, "password123", user.PasswordHash)

	// Same email again conflicts.
	c2, _ := jsonRequest(t, http.MethodPost, "/auth/signup", payload)
	err := h.Signup(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestSignupMissingFields(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{"email": "x@example.com"})
	err := h.Signup(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func createTestUser(t *testing.T, db *gorm.DB, email, password, role, status string) *models.User {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Status:       status,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestLogin(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	createTestUser(t, db, "ada@example.com", "password123", roles.Employee, models.StatusActive)

	c, rec := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	require.NotEmpty(t, resp["refreshToken"])
	require.Equal(t, roles.Employee, resp["role"])

	// The refresh token is persisted hashed, never verbatim.
	var stored models.RefreshToken
	require.NoError(t, db.First(&stored).Error)
	require.NotEqual(t, resp["refreshToken"], stored.Token)
	require.Len(t, stored.Token, 64)
}

func TestLoginWrongPassword(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	createTestUser(t, db, "ada@example.com", "password123", roles.Employee, models.StatusActive)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLoginDeletedAccount(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	createTestUser(t, db, "gone@example.com", "password123", roles.Employee, models.StatusDeleted)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "gone@example.com",
		"password": "password123",
	})
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
	require.Equal(t, "invalid credentials", he.Message)
}

func loginFor(t *testing.T, h *AuthHandler, email, password string) (access, refresh string) {
	t.Helper()
	c, rec := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, h.Login(c))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["token"].(string), resp["refreshToken"].(string)
}

func TestRefresh(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	createTestUser(t, db, "ada@example.com", "password123", roles.Employee, models.StatusActive)
	_, refresh := loginFor(t, h, "ada@example.com", "password123")

	c, rec := jsonRequest(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": refresh})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
}

func TestRefreshAfterLogout(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	createTestUser(t, db, "ada@example.com", "password123", roles.Employee, models.StatusActive)
	_, refresh := loginFor(t, h, "ada@example.com", "password123")

	cOut, recOut := jsonRequest(t, http.MethodPost, "/auth/logout", map[string]string{"refreshToken": refresh})
	require.NoError(t, h.Logout(cOut))
	require.Equal(t, http.StatusOK, recOut.Code)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": refresh})
	err := h.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRefreshGarbageToken(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": "not-a-jwt"})
	err := h.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
