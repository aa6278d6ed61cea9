package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest         = 40000
	CodeInvalidCredentials = 40001
	CodeUnauthorized       = 40100
	CodeLogNotFound        = 40401
	CodeInternalServer     = 50000
)

// ErrorBody is the uniform failure envelope. Success bodies are the
// endpoint contracts themselves and are written directly by handlers.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, ErrorBody{
		Code:    code,
		Message: message,
	})
}
