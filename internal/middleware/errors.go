package middleware

import (
	"errors"
	"net/http"

	"store-ratings/internal/apperr"

	"github.com/gin-gonic/gin"
)

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// AbortWithError writes {"message", "errors"} for err and stops the chain.
// Internal errors keep their cause out of the body; it is attached to the
// gin context for the request logger instead.
func AbortWithError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	body := gin.H{"message": "Internal server error"}
	var e *apperr.Error
	if kind != apperr.KindInternal && errors.As(err, &e) {
		body["message"] = e.Message
		if len(e.Fields) > 0 {
			body["errors"] = e.Fields
		}
	}
	if kind == apperr.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}
