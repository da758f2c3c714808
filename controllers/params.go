package controllers

import (
	"fmt"
	"strconv"
	"time"

	"invensys/lifecycle"

	"github.com/gin-gonic/gin"
)

// 日期统一按 YYYY-MM-DD（UTC）传递
const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty string.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolQuery(c *gin.Context, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", key)
	}
	return &b, nil
}

func statusQuery(c *gin.Context) (*lifecycle.Status, error) {
	v := c.Query("status")
	if v == "" {
		return nil, nil
	}
	s, ok := lifecycle.Parse(v)
	if !ok {
		return nil, fmt.Errorf("unknown status %q", v)
	}
	return &s, nil
}
