package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/healthsync/backend/internal/auth/domain"
	chatdomain "github.com/healthsync/backend/internal/chat/domain"
	communitydomain "github.com/healthsync/backend/internal/community/domain"
	"github.com/healthsync/backend/internal/identity"
	"github.com/healthsync/backend/internal/token"
	"github.com/healthsync/backend/pkg/db"
	"gorm.io/gorm"
)

var (
	// ErrNoCredential means the request carried no bearer token at all.
	ErrNoCredential = errors.New("no credential")

	ErrInvalidRequest = errors.New("invalid request")
)

type errorResponse struct {
	Error string `json:"error"`
}

// ErrorHandlingMiddleware renders the last handler error as the JSON error
// envelope. Handlers record errors with AbortWithError and never write
// error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError translates domain errors into a status code and a generic,
// non-revealing message.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNoCredential):
		return http.StatusUnauthorized, "No token provided"

	case errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, identity.ErrInvalidIdentityToken):
		return http.StatusForbidden, "Invalid token"

	case errors.Is(err, token.ErrNotConfigured),
		errors.Is(err, identity.ErrNotConfigured):
		return http.StatusInternalServerError, "Server configuration error"

	case errors.Is(err, db.ErrUnavailable):
		return http.StatusServiceUnavailable, "Database not available"

	case errors.Is(err, authdomain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, chatdomain.ErrSessionNotFound):
		return http.StatusNotFound, "Chat not found"
	case errors.Is(err, communitydomain.ErrPostNotFound):
		return http.StatusNotFound, "Post not found or not authorized"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Not found"

	case errors.Is(err, chatdomain.ErrInvalidSessionID):
		return http.StatusBadRequest, "Invalid chat ID"
	case errors.Is(err, communitydomain.ErrInvalidPostID):
		return http.StatusBadRequest, "Invalid post ID"
	case errors.Is(err, communitydomain.ErrEmptyContent):
		return http.StatusBadRequest, "Content is required"
	case errors.Is(err, communitydomain.ErrInvalidRating):
		return http.StatusBadRequest, "Rating must be between 1 and 5"
	case errors.Is(err, chatdomain.ErrInvalidMessages),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, authdomain.ErrInvalidProfile),
		errors.Is(err, authdomain.ErrInvalidIntent),
		errors.Is(err, token.ErrEmptySubject),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request"

	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// classifyErrorForLog labels request-log entries; request cancellations are
// noise, not failures.
func classifyErrorForLog(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, db.ErrUnavailable):
		return "db_unavailable"
	case errors.Is(err, token.ErrNotConfigured), errors.Is(err, identity.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, token.ErrInvalidToken), errors.Is(err, identity.ErrInvalidIdentityToken):
		return "invalid_token"
	default:
		return "error"
	}
}
