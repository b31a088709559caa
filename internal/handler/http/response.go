package http

import "github.com/gin-gonic/gin"

// ErrorResponse 输出统一的错误格式 {"error": ..., "details": ...}
func ErrorResponse(c *gin.Context, code int, message, details string) {
	c.JSON(code, gin.H{"error": message, "details": details})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}
