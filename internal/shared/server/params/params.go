// Package params parses request identifiers shared by the feature handlers.
package params

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ngmi-backend/internal/shared/apperr"
)

// ID parses the named path parameter as a positive int64.
func ID(c *gin.Context, name string) (int64, error) {
	return Parse(c.Param(name), name)
}

// Parse converts raw into a positive id. The error is a validation error naming field.
func Parse(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.E(apperr.ErrValidation, field+" must be a positive integer")
	}
	return id, nil
}

// Limit parses an optional positive query limit, clamped to max.
func Limit(c *gin.Context, def, max int) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperr.E(apperr.ErrValidation, "limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}
