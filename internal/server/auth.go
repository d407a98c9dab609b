package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gantt/internal/auth"
	"gantt/internal/models"
)

type googleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// handleGoogleLogin exchanges a Google ID token for a session token.
func (s *Server) handleGoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "Missing credential", err)
		return
	}

	identity, err := s.verifier.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		s.respondError(c, http.StatusUnauthorized, "Invalid credential", err)
		return
	}
	s.issueSession(c, identity)
}

// handleVerify echoes the identity of a valid session token.
func (s *Server) handleVerify(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		s.respondError(c, http.StatusUnauthorized, auth.ErrUnauthenticated.Error(), nil)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"valid": true, "user": identity})
}

func (s *Server) issueSession(c *gin.Context, identity models.Identity) {
	token, err := s.sessions.Issue(identity)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, "failed to issue session", err)
		return
	}
	s.logger.Info("session issued", "email", identity.Email)
	respondSuccess(c, http.StatusOK, loginResponse{Token: token, User: identity})
}
