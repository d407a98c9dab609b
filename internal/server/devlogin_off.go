//go:build !devlogin

package server

import "github.com/gin-gonic/gin"

// registerDevLogin is empty in normal builds; /api/auth/dev-login falls
// through to the API 404 handler.
func (s *Server) registerDevLogin(*gin.RouterGroup) {}
