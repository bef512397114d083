package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"meeting-designations/internal/dto"
	"meeting-designations/internal/service"
	"meeting-designations/pkg/response"
)

// ProgramHandler 节目单模块 HTTP 处理器
type ProgramHandler struct {
	programSvc service.ProgramService
}

// NewProgramHandler 创建 ProgramHandler
func NewProgramHandler(programSvc service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programSvc: programSvc}
}

// ListPrograms 节目单列表
// GET /api/v1/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	var req dto.ProgramListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	list, total, err := h.programSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleProgramError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetProgram 节目单详情（含节目分类结果）
// GET /api/v1/programs/:id
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "节目单ID不能为空")
	if !ok {
		return
	}

	program, err := h.programSvc.Get(c.Request.Context(), id)
	if err != nil {
		handleProgramError(c, err)
		return
	}

	response.OK(c, program)
}

// CreateProgram 创建节目单
// POST /api/v1/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req dto.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParam, "参数校验失败")
		return
	}

	program, err := h.programSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleProgramError(c, err)
		return
	}

	response.Created(c, program)
}

// handleProgramError 节目单错误；指派与导出模块同样复用
func handleProgramError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 12101, "节目单不存在")
	case errors.Is(err, service.ErrPartNotFound):
		response.NotFound(c, 12102, "节目不存在")
	case errors.Is(err, service.ErrInvalidProgramDates):
		response.BadRequest(c, 12103, "节目单日期格式无效")
	default:
		response.InternalError(c)
	}
}
