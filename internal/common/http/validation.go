package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var ErrInvalidUserID = errors.New("invalid user id")

// Param reads name from the query string, falling back to the value decoded
// from the body when the query does not carry it.
func Param(r *http.Request, name, fallback string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return fallback
}

// ParseUserID accepts any decimal int64. Zero and negatives parse but are
// never issued, so they resolve to a missing user rather than bad input.
func ParseUserID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidUserID
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidUserID
	}
	return id, nil
}
