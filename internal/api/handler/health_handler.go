package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck 单项依赖检查
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
	// Optional 为 true 时失败只标记 degraded，不影响 HTTP 状态
	Optional bool
}

// HealthHandler 健康检查
type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health 依赖状态
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	deps := make(gin.H, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Check(ctx); err != nil {
			deps[chk.Name] = err.Error()
			if chk.Optional {
				if status == "ok" {
					status = "degraded"
				}
				continue
			}
			status = "down"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "ok"
	}

	c.JSON(httpStatus, gin.H{"status": status, "checks": deps})
}
