package response

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the uniform error payload: a machine-readable kind plus a
// human-readable message. Some messages are domain language (Czech) and are
// part of the API contract; they must not be rewritten.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Meta is the pagination envelope shared by all list endpoints.
type Meta struct {
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
	TotalHours *float64 `json:"totalHours,omitempty"`
}

// PageData is a paginated response payload.
type PageData struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// NewMeta computes pagination metadata. totalPages = ceil(total/limit).
func NewMeta(total int64, page, limit int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// ── success responses ──

// OK writes a 200 response with the given payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// OKPage writes a 200 response with a paginated payload.
func OKPage(c *gin.Context, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, PageData{Data: data, Meta: meta})
}

// ── error responses ──

// Error writes an error response with the given status, kind and message.
func Error(c *gin.Context, httpStatus int, kind, message string) {
	c.JSON(httpStatus, ErrorBody{Error: kind, Message: message})
}

// BadRequest 400, validation or business-rule failure.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "bad_request", message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "unauthorized", message)
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, "forbidden", message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "not_found", message)
}

// Conflict 409
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, "conflict", message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, "too_many_requests", message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal", "Internal server error")
}
