package middleware

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meeting-designations/pkg/response"
)

// Recovery panic 恢复；记录堆栈并返回统一的 500 响应
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("请求处理发生 panic",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Stack("stack"),
		)
		response.InternalError(c)
		c.Abort()
	})
}
