//go:build devlogin

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gantt/internal/models"
)

// devIdentity is the fixed user behind the local dev login.
var devIdentity = models.Identity{
	Subject: "dev",
	Email:   "dev@localhost",
	Name:    "Developer",
}

// registerDevLogin adds an unauthenticated login. It exists only in binaries
// built with -tags devlogin and still refuses when running in production.
func (s *Server) registerDevLogin(group *gin.RouterGroup) {
	s.logger.Warn("dev login compiled in", "production", s.production)
	group.POST("/dev-login", s.handleDevLogin)
}

func (s *Server) handleDevLogin(c *gin.Context) {
	if s.production {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	s.issueSession(c, devIdentity)
}
