package controllers

import (
	"errors"
	"net/http"

	"invensys/app"
	"invensys/db"

	"github.com/gin-gonic/gin"
)

// classify maps the repository error taxonomy onto a status code and a
// stable category string.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, db.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, db.ErrPrecedenceViolation):
		return http.StatusConflict, "precedence_violation"
	case errors.Is(err, db.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, db.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, "internal"
}

func respondError(c *gin.Context, err error) {
	status, category := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err) // 交给请求日志记录
		msg = "internal error"
	}
	c.JSON(status, app.H{"error": category, "message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": msg})
}
