package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"meeting-designations/internal/dto"
	"meeting-designations/internal/service"
	"meeting-designations/pkg/response"
)

// ParticipantHandler 成员模块 HTTP 处理器
type ParticipantHandler struct {
	participantSvc service.ParticipantService
}

// NewParticipantHandler 创建 ParticipantHandler
func NewParticipantHandler(participantSvc service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantSvc: participantSvc}
}

// ListParticipants 成员列表
// GET /api/v1/participants
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	var req dto.ParticipantListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	list, total, err := h.participantSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetParticipant 成员详情
// GET /api/v1/participants/:id
func (h *ParticipantHandler) GetParticipant(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "成员ID不能为空")
	if !ok {
		return
	}

	p, err := h.participantSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	response.OK(c, p)
}

// CreateParticipant 新增成员
// POST /api/v1/participants
func (h *ParticipantHandler) CreateParticipant(c *gin.Context) {
	var req dto.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	p, err := h.participantSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	response.Created(c, p)
}

// UpdateParticipant 更新成员
// PUT /api/v1/participants/:id
func (h *ParticipantHandler) UpdateParticipant(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "成员ID不能为空")
	if !ok {
		return
	}

	var req dto.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	p, err := h.participantSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	response.OK(c, p)
}

// handleParticipantError 统一处理成员模块业务错误
func (h *ParticipantHandler) handleParticipantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrParticipantNotFound):
		response.NotFound(c, 11101, "成员不存在")
	case errors.Is(err, service.ErrUnknownQualification):
		response.BadRequest(c, 11102, "未知的资格项")
	case errors.Is(err, service.ErrParticipantSelfRelation):
		response.BadRequest(c, 11103, "成员不能将自己设为监护人或父母")
	case errors.Is(err, service.ErrParticipantVersion):
		response.Conflict(c, 11104, "成员信息已被修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
