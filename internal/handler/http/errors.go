package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/middleware"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

const internalErrorDetails = "internal server error"

// HandleServiceError 把 service 层错误映射为 HTTP 响应。
// 调用方输入引起的错误返回 400 和具体原因，其余返回 500，不暴露内部细节。
func HandleServiceError(c *gin.Context, message string, err error) {
	if service.IsValidation(err) {
		ErrorResponse(c, http.StatusBadRequest, message, err.Error())
		return
	}
	logrus.WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString(middleware.RequestIDKey),
	}).WithError(err).Error("Unhandled internal server error")
	ErrorResponse(c, http.StatusInternalServerError, message, internalErrorDetails)
}
