package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/hrms_backend/internal/hash"
	"github.com/Skotchmaster/hrms_backend/internal/models"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/roles"
	"github.com/Skotchmaster/hrms_backend/internal/tokens"
)

type AuthHandler struct {
	DB            *gorm.DB
	Users         *repo.UserRepo
	JWTSecret     []byte
	RefreshSecret []byte
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         roles.Employee,
		Status:       models.StatusActive,
	}
	if err := h.Users.Create(c.Request().Context(), &user); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "user created", "userId": user.ID})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing email or password")
	}

	user, err := h.Users.ByEmail(c.Request().Context(), req.Email)
	if err != nil || !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	// A deleted account fails login exactly like a wrong password.
	if user.Status == models.StatusDeleted {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	accessExp := time.Now().Add(tokens.AccessTTL)
	accessToken, err := tokens.SignAccess(h.JWTSecret, user.ID, user.Role, accessExp)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refreshToken, jti, err := tokens.SignRefresh(h.RefreshSecret, user.ID, refreshExp)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	stored := models.RefreshToken{
		Token:     tokens.Sha256Hex(refreshToken),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&stored).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":        accessToken,
		"refreshToken": refreshToken,
		"role":         user.Role,
		"userId":       user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing refresh token")
	}
	ctx := c.Request().Context()

	claims, err := tokens.RefreshClaimsFromToken(req.RefreshToken, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var stored models.RefreshToken
	if err := h.DB.WithContext(ctx).Where("token = ?", tokens.Sha256Hex(req.RefreshToken)).First(&stored).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if stored.Revoked || time.Now().Unix() > stored.ExpiresAt {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	user, err := h.Users.ByID(ctx, userID)
	if err != nil || user.Status == models.StatusDeleted {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	accessExp := time.Now().Add(tokens.AccessTTL)
	accessToken, err := tokens.SignAccess(h.JWTSecret, user.ID, user.Role, accessExp)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": accessToken})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing refresh token")
	}

	if err := h.DB.WithContext(c.Request().Context()).Model(&models.RefreshToken{}).
		Where("token = ?", tokens.Sha256Hex(req.RefreshToken)).
		Update("revoked", true).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
