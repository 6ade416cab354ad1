// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduassist-go/internal/repository"
	"eduassist-go/internal/service"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
}

// failErr 把业务错误映射为 HTTP 状态码。
func failErr(c *gin.Context, err error) {
	fail(c, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionBusy), errors.Is(err, repository.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidFeedback), errors.Is(err, service.ErrUnsupportedLogin),
		errors.Is(err, service.ErrMissingEmail), errors.Is(err, service.ErrInvalidTheme),
		errors.Is(err, service.ErrInvalidLanguage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
