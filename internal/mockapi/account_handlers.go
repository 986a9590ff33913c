package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodctl/foodctl/internal/mockapi/auth"
	"github.com/foodctl/foodctl/internal/mockapi/models"
	"github.com/foodctl/foodctl/internal/validation"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Password    string `json:"password" binding:"required,foodpassword"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address"`
	BirthDate   string `json:"birthDate" binding:"omitempty,fooddate"`
	Gender      string `json:"gender" binding:"required,oneof=Male Female"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,foodphone"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by register and login
type TokenResponse struct {
	Token string `json:"token"`
}

// ProfileUpdateRequest represents the editable profile fields
type ProfileUpdateRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	BirthDate   string `json:"birthDate" binding:"omitempty,fooddate"`
	Gender      string `json:"gender" binding:"required,oneof=Male Female"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,foodphone"`
}

func parseBirthDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := validation.ParseDate(s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "Username '"+email+"' is already taken.")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: passwordHash,
		BirthDate:    parseBirthDate(req.BirthDate),
		Gender:       req.Gender,
		Address:      req.Address,
		PhoneNumber:  validation.NormalizePhone(req.PhoneNumber),
	}
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")
	s.respondWithToken(c, user)
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Find user by email
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusBadRequest, "Login failed")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to find user")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Verify password
	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		respondError(c, http.StatusBadRequest, "Login failed")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")
	s.respondWithToken(c, &user)
}

func (s *Server) respondWithToken(c *gin.Context, user *models.User) {
	token, _, err := s.issuer.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		respondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (s *Server) logout(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	revoked := &models.RevokedToken{
		ID:        sessionData.TokenID,
		ExpiresAt: sessionData.ExpiresAt.UTC(),
	}
	if err := s.db.Create(revoked).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to revoke token")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info().Str("user_id", sessionData.UserID).Msg("User logged out")
	c.JSON(http.StatusOK, gin.H{"status": nil, "message": "Logged Out"})
}

func (s *Server) getProfile(c *gin.Context) {
	var user models.User
	if err := models.FindByID(s.db, currentUserID(c), &user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to load profile")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updates := map[string]any{
		"full_name":    req.FullName,
		"birth_date":   parseBirthDate(req.BirthDate),
		"gender":       req.Gender,
		"address":      req.Address,
		"phone_number": validation.NormalizePhone(req.PhoneNumber),
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", currentUserID(c)).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update profile")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Status(http.StatusOK)
}
