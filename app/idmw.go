package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDParams rejects requests whose :id path parameter is not a UUID before
// it reaches a uuid column.
func UUIDParams() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := c.Params.Get("id"); ok {
			if _, err := uuid.Parse(id); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, H{"error": "invalid_request", "message": "invalid uuid: " + id})
				return
			}
		}
		c.Next()
	}
}
