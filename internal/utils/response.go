package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with. Data is null on errors.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func NewResponse(status int, message string, data interface{}) Response {
	return Response{Status: status, Message: message, Data: data}
}

func NewSuccessResponse(message string, data interface{}) Response {
	return NewResponse(http.StatusOK, message, data)
}

func NewErrorResponse(status int, message string) Response {
	return NewResponse(status, message, nil)
}

// Success writes a 200 envelope.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(message, data))
}

// Created writes a 201 envelope carrying the new resource.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, NewResponse(http.StatusCreated, message, data))
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, NewErrorResponse(status, message))
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(status, message))
}
