package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/healthsync/backend/internal/auth/domain"
	"go.uber.org/zap"
)

type bindIdentityRequest struct {
	IDToken  string          `json:"idToken"`
	IsSignup bool            `json:"isSignup"`
	Role     string          `json:"role"`
	Profile  json.RawMessage `json:"profile"`
}

// BindIdentity exchanges a provider ID token for a session token.
func (s *Server) BindIdentity(c *gin.Context) {
	var req bindIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	intent := authdomain.IntentLogin
	if req.IsSignup {
		intent = authdomain.IntentSignup
	}

	result, err := s.authSvc.Bind(c.Request.Context(), authdomain.BindRequest{
		IDToken: req.IDToken,
		Intent:  intent,
		Role:    authdomain.Role(req.Role),
		Profile: req.Profile,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// Me returns the caller's directory record.
func (s *Server) Me(c *gin.Context) {
	sub, ok := Subject(c)
	if !ok {
		AbortWithError(c, ErrNoCredential)
		return
	}

	user, err := s.authSvc.CurrentUser(c.Request.Context(), sub)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout is stateless: tokens are not revocable server-side, so the client
// discards its copy and this endpoint just acknowledges.
func (s *Server) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword relays a reset request to the identity provider. The
// response is identical for known and unknown emails so the endpoint cannot
// be used to probe for accounts.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.log.Warn("password reset relay failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
