package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"meeting-designations/internal/dto"
	"meeting-designations/internal/service"
	"meeting-designations/pkg/response"
)

// DesignationHandler 指派模块 HTTP 处理器
type DesignationHandler struct {
	designationSvc service.DesignationService
}

// NewDesignationHandler 创建 DesignationHandler
func NewDesignationHandler(designationSvc service.DesignationService) *DesignationHandler {
	return &DesignationHandler{designationSvc: designationSvc}
}

// Generate 为节目单生成指派
// POST /api/v1/programs/:id/designations
func (h *DesignationHandler) Generate(c *gin.Context) {
	programID, ok := MustGetParam(c, "id", "节目单ID不能为空")
	if !ok {
		return
	}

	var req dto.GenerateDesignationsRequest
	// 请求体可省略
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, codeInvalidParam, "参数校验失败")
			return
		}
	}

	result, err := h.designationSvc.Generate(c.Request.Context(), programID, &req)
	if err != nil {
		h.handleDesignationError(c, err)
		return
	}

	response.OK(c, result)
}

// List 节目单当前指派
// GET /api/v1/programs/:id/designations
func (h *DesignationHandler) List(c *gin.Context) {
	programID, ok := MustGetParam(c, "id", "节目单ID不能为空")
	if !ok {
		return
	}

	list, err := h.designationSvc.List(c.Request.Context(), programID)
	if err != nil {
		h.handleDesignationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetCandidates 节目候选人排序
// GET /api/v1/parts/:id/candidates?as_of=...
func (h *DesignationHandler) GetCandidates(c *gin.Context) {
	partID, ok := MustGetParam(c, "id", "节目ID不能为空")
	if !ok {
		return
	}

	var req dto.CandidateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	candidates, err := h.designationSvc.GetCandidates(c.Request.Context(), partID, &req)
	if err != nil {
		h.handleDesignationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": candidates})
}

// Update 人工调整指派
// PUT /api/v1/designations/:id
func (h *DesignationHandler) Update(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "指派ID不能为空")
	if !ok {
		return
	}

	var req dto.UpdateDesignationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	d, err := h.designationSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDesignationError(c, err)
		return
	}

	response.OK(c, d)
}

// ListChangeLogs 指派变更日志
// GET /api/v1/designations/change-logs
func (h *DesignationHandler) ListChangeLogs(c *gin.Context) {
	var req dto.ChangeLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	logs, total, err := h.designationSvc.ListChangeLogs(c.Request.Context(), &req)
	if err != nil {
		h.handleDesignationError(c, err)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}

// handleDesignationError 统一处理指派模块业务错误
func (h *DesignationHandler) handleDesignationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDesignationNotFound):
		response.NotFound(c, 13101, "指派记录不存在")
	case errors.Is(err, service.ErrProgramNoParts):
		response.UnprocessableEntity(c, 13102, "节目单中没有节目")
	case errors.Is(err, service.ErrRunInProgress):
		response.Conflict(c, 13103, "该节目单正在生成指派，请稍后重试")
	case errors.Is(err, service.ErrInvalidAsOf):
		response.BadRequest(c, 13104, "as_of 时间格式无效，应为 RFC3339")
	case errors.Is(err, service.ErrSelfAssistant):
		response.UnprocessableEntity(c, 13105, "主讲与助手不能是同一人")
	case errors.Is(err, service.ErrAssistantWithoutPrincipal):
		response.UnprocessableEntity(c, 13106, "未指定主讲时不能指定助手")
	case errors.Is(err, service.ErrParticipantInactive):
		response.UnprocessableEntity(c, 13107, "成员已停用，不能被指派")
	case errors.Is(err, service.ErrDesignationVersion):
		response.Conflict(c, 13108, "指派已被修改，请刷新后重试")
	case errors.Is(err, service.ErrDesignationNoChange):
		response.BadRequest(c, 13109, "指派内容没有变化")
	case errors.Is(err, service.ErrParticipantNotFound):
		response.NotFound(c, 11101, "成员不存在")
	default:
		handleProgramError(c, err)
	}
}
