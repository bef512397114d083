package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"meeting-designations/pkg/metrics"
)

// Metrics HTTP 请求计数与耗时；route 使用路由模板避免标签基数膨胀
func Metrics(recorder metrics.Recorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		recorder.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
