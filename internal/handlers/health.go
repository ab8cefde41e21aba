package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/festivo/festivo/pkg/response"
)

// Health returns a status payload useful for readiness checks. The database
// round trip catches a wedged sqlite file before the load balancer does.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		dbStatus := "ok"
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(requestContext(c)) != nil {
				status = "degraded"
				dbStatus = "unreachable"
			}
		}
		response.Success(c, http.StatusOK, gin.H{"status": status, "database": dbStatus})
	}
}
