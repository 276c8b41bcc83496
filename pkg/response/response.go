package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success is the envelope for successful operations.
type Success struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// Error is the envelope for failed operations. Code mirrors the HTTP status.
type Error struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// OK sends a 200 with data and message.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Success{Data: data, Message: message})
}

// Created sends a 201 with data and message.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Success{Data: data, Message: message})
}

// BadRequest sends 400.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Error{Message: message, Code: http.StatusBadRequest})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Error{Message: message, Code: http.StatusUnauthorized})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Error{Message: message, Code: http.StatusForbidden})
}

// NotFound sends 404.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Error{Message: message, Code: http.StatusNotFound})
}

// Conflict sends 409.
func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Error{Message: message, Code: http.StatusConflict})
}

// Internal sends 500.
func Internal(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Error{Message: message, Code: http.StatusInternalServerError})
}
