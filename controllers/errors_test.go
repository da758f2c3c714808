package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"invensys/db"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
	}{
		{fmt.Errorf("laptop: %w", db.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("still in use: %w", db.ErrForbidden), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("no allocation form: %w", db.ErrPrecedenceViolation), http.StatusConflict, "precedence_violation"},
		{fmt.Errorf("serial exists: %w", db.ErrConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("bad credentials: %w", db.ErrUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, category := classify(tc.err)
		if status != tc.status || category != tc.category {
			t.Errorf("classify(%v) = %d %s, want %d %s", tc.err, status, category, tc.status, tc.category)
		}
	}
}
