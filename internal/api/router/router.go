package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"meeting-designations/config"
	"meeting-designations/internal/api/handler"
	"meeting-designations/internal/api/middleware"
	"meeting-designations/pkg/metrics"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时写接口不限流；gatherer 为 nil 时不暴露 /metrics
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	limiter middleware.RateLimiter,
	recorder metrics.Recorder,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", h.Health.Health)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// 写接口限流
	window := time.Duration(cfg.Server.RateLimit.WindowSeconds) * time.Second
	writeLimit := middleware.RateLimit(limiter, cfg.Server.RateLimit.Requests, window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 成员模块
		participants := v1.Group("/participants")
		{
			participants.GET("", h.Participant.ListParticipants)
			participants.GET("/:id", h.Participant.GetParticipant)
			participants.POST("", writeLimit, h.Participant.CreateParticipant)
			participants.PUT("/:id", writeLimit, h.Participant.UpdateParticipant)
		}

		// 节目单模块
		programs := v1.Group("/programs")
		{
			programs.GET("", h.Program.ListPrograms)
			programs.GET("/:id", h.Program.GetProgram)
			programs.POST("", writeLimit, h.Program.CreateProgram)

			// 指派生成与查询
			programs.POST("/:id/designations", writeLimit, h.Designation.Generate)
			programs.GET("/:id/designations", h.Designation.List)
		}

		v1.GET("/parts/:id/candidates", h.Designation.GetCandidates)

		// 指派人工调整
		designations := v1.Group("/designations")
		{
			designations.GET("/change-logs", h.Designation.ListChangeLogs)
			designations.PUT("/:id", writeLimit, h.Designation.Update)
		}

		v1.GET("/rules", h.Rule.ListRules)

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/programs/:id", h.Export.ExportProgram)
		}
	}

	return r
}
