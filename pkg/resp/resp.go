package resp

import (
	"errors"
	"net/http"
	"strings"

	"littlelemon/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// List is the envelope for collection responses.
type List[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func Many[T any](c *gin.Context, count int64, results []T) {
	if results == nil {
		results = []T{}
	}
	c.JSON(http.StatusOK, List[T]{Count: count, Results: results})
}

// Detail answers 200 with a short message body.
func Detail(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "detail": msg})
}

func TooManyRequests(c *gin.Context) {
	abort(c, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
}

// Status maps err onto an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidPatch),
		errors.Is(err, apperr.ErrEmptyCart),
		errors.Is(err, apperr.ErrConstraintViolation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflictRetry):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err using the apperr taxonomy. Unclassified errors become a
// 500 without leaking their text; the request logger still records them.
func Error(c *gin.Context, err error) {
	status := Status(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal server error"
	}
	_ = c.Error(err)
	abort(c, status, apperr.Code(err), detail)
}

func abort(c *gin.Context, status int, code, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": code, "detail": strings.TrimSpace(detail)})
}
