package handler

import (
	"github.com/gin-gonic/gin"

	"meeting-designations/internal/service"
	"meeting-designations/pkg/response"
)

// RuleHandler 规则目录 HTTP 处理器
type RuleHandler struct {
	ruleSvc service.RuleService
}

// NewRuleHandler 创建 RuleHandler
func NewRuleHandler(ruleSvc service.RuleService) *RuleHandler {
	return &RuleHandler{ruleSvc: ruleSvc}
}

// ListRules 节目类型规则与冷却期
// GET /api/v1/rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	response.OK(c, gin.H{"list": h.ruleSvc.List()})
}
