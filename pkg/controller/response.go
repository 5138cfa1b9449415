// Package controller implements the HTTP-facing side of the resource
// engine: the generic per-resource controller plus the uniform response
// envelope and error mapping every endpoint shares.
package controller

import (
	"net/http"

	"github.com/workshophq/backoffice/pkg/server/router"
)

// ItemResponse is the envelope for single-record responses.
type ItemResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ListResponse is the envelope for paginated list responses.
type ListResponse struct {
	Success    bool  `json:"success"`
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// MessageResponse is the envelope for responses without data.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed requests. Errors carries
// field-level validation detail when present.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success writes a 200 response wrapping data.
func Success(c router.Context, data any) error {
	return c.JSON(http.StatusOK, ItemResponse{Success: true, Data: data})
}

// Created writes a 201 response wrapping data.
func Created(c router.Context, data any) error {
	return c.JSON(http.StatusCreated, ItemResponse{Success: true, Data: data})
}

// List writes a 200 response with pagination metadata.
func List(c router.Context, data any, total int64, page, limit int, totalPages int64) error {
	return c.JSON(http.StatusOK, ListResponse{
		Success:    true,
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}

// Message writes a 200 response carrying only a message.
func Message(c router.Context, message string) error {
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: message})
}

// Error maps err to an HTTP status and writes the error envelope.
func Error(c router.Context, err error) error {
	status, body := MapError(err)
	return c.JSON(status, body)
}
