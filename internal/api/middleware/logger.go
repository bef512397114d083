package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// probePaths 探针请求只记 debug 日志
var probePaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Logger 请求日志中间件（基于 Zap 结构化日志）
// route 为路由模板（未匹配时为空），便于按接口聚合
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if rid := c.GetString(requestIDKey); rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		level := zapcore.InfoLevel
		msg := "请求完成"
		switch {
		case status >= 500:
			level, msg = zapcore.ErrorLevel, "请求处理失败"
		case status >= 400:
			level, msg = zapcore.WarnLevel, "客户端错误"
		case probePaths[path]:
			level = zapcore.DebugLevel
		}
		logger.Log(level, msg, fields...)
	}
}
