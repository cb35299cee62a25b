package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                = 0
	CodeBadRequest        = 40000
	CodeIncorrectEmail    = 40001
	CodeIncorrectPassword = 40002
	CodeUnauthorized      = 40100
	CodeUserNotFound      = 40401
	CodeSessionNotFound   = 40402
	CodeUsernameExists    = 40901
	CodeEmailExists       = 40902
	CodeInternalServer    = 50000
	CodeGenerationFailed  = 50201
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
