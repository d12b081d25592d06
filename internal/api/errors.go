// errors.go

// Package api exposes the shop over HTTP with gin.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/logging"
)

// writeError maps err to a status and a JSON error payload and aborts the chain.
// Untyped errors are logged and answered with a generic 500.
func writeError(c *gin.Context, err error) {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		ce *apperr.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		body := gin.H{"error": ve.Error()}
		if len(ve.Missing) > 0 {
			body["missing"] = ve.Missing
		}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
	case errors.As(err, &nf):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &ce):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ce.Error()})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, apperr.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		logging.FromContext(c.Request.Context()).Error("request_failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the request body into dst, turning decode failures into
// validation errors. An empty body is accepted when optional is set.
func bindJSON(c *gin.Context, dst any, optional bool) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		switch typeErr.Field {
		case "price", "stock":
			return apperr.Invalid(typeErr.Field, "must be a number >= 0")
		default:
			return apperr.Invalid(typeErr.Field, "has the wrong type")
		}
	}
	return apperr.Invalid("body", "must be valid JSON")
}
