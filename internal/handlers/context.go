package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/festivo/festivo/internal/middleware"
	"github.com/festivo/festivo/internal/services"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// requestActor builds the audit actor from the authenticated staff context.
func requestActor(c *gin.Context) services.Actor {
	return services.Actor{
		StaffUserID: c.GetString(middleware.CtxStaffIDKey),
		Email:       c.GetString(middleware.CtxStaffEmailKey),
		IPAddress:   c.ClientIP(),
	}
}
