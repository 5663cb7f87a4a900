// Package response defines the JSON envelope shared by all HTTP handlers and
// the mapping from domain errors to status codes.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EcoCommute/service-planner/internal/domain"
)

// ErrorBody is the error payload inside a failed envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination metadata alongside a list payload.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 envelope with the given data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 envelope with the given data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Paginated writes a 200 envelope with list data and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta":    Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// BadRequest writes a 400 envelope with the given message.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Error maps a domain error to its HTTP status and writes the envelope.
// Unrecognized errors become 500 with a generic message.
func Error(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var conflictErr *domain.ConflictError
	var invalidStateErr *domain.InvalidStateError
	var forbiddenErr *domain.ForbiddenError
	var unavailableErr *domain.UnavailableError

	switch {
	case errors.As(err, &validationErr):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message)
	case errors.As(err, &notFoundErr):
		writeError(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error())
	case errors.As(err, &conflictErr):
		writeError(c, http.StatusConflict, "CONFLICT", conflictErr.Message)
	case errors.As(err, &invalidStateErr):
		writeError(c, http.StatusUnprocessableEntity, "INVALID_STATE", invalidStateErr.Error())
	case errors.As(err, &forbiddenErr):
		writeError(c, http.StatusForbidden, "FORBIDDEN", forbiddenErr.Message)
	case errors.As(err, &unavailableErr):
		writeError(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", unavailableErr.Message)
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   ErrorBody{Code: code, Message: message},
	})
}
