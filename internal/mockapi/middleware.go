package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/foodctl/foodctl/internal/mockapi/auth"
	"github.com/foodctl/foodctl/internal/mockapi/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrRevokedToken      = errors.New("revoked token")
	ErrUserNotFound      = errors.New("user not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

// GetSessionData returns the session set by JWTAuthMiddleware
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// respondError writes the service's error shape and aborts the chain
func respondError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"status": "Error", "message": message})
}

// respondBindError writes binding failures as a validation problem
func respondBindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = append(fields[fe.Field()], "The field failed the '"+fe.Tag()+"' rule.")
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"title":  "One or more validation errors occurred.",
		"status": http.StatusBadRequest,
		"errors": fields,
	})
}

// JWTAuthMiddleware validates bearer tokens, rejecting revoked ones
func JWTAuthMiddleware(db *gorm.DB, issuer *auth.Issuer, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected request")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Validate JWT token
		claims, err := issuer.ValidateToken(token)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to validate JWT token")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		var revoked int64
		if err := db.Model(&models.RevokedToken{}).Where("id = ?", claims.ID).Count(&revoked).Error; err != nil {
			log.Error().Err(err).Msg("Failed to check revoked tokens")
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if revoked > 0 {
			log.Debug().Err(ErrRevokedToken).Str("token_id", claims.ID).Msg("Rejected request")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Verify user exists in database
		var user models.User
		if err := models.FindByID(db, claims.Subject, &user); err != nil {
			log.Warn().Err(ErrUserNotFound).Str("user_id", claims.Subject).Msg("Rejected request")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		sessionData := &auth.SessionData{
			UserID:  user.ID,
			Email:   user.Email,
			TokenID: claims.ID,
		}
		if claims.ExpiresAt != nil {
			sessionData.ExpiresAt = claims.ExpiresAt.Time
		}
		setSession(c, sessionData)

		c.Next()
	}
}

// currentUserID returns the authenticated user's id
func currentUserID(c *gin.Context) string {
	if sessionData, ok := GetSessionData(c); ok {
		return sessionData.UserID
	}
	return ""
}
