package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"meeting-designations/internal/service"
	"meeting-designations/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportProgram 导出节目单指派
// GET /api/v1/export/programs/:id?format=xlsx|ics
func (h *ExportHandler) ExportProgram(c *gin.Context) {
	programID, ok := MustGetParam(c, "id", "节目单ID不能为空")
	if !ok {
		return
	}

	file, err := h.exportSvc.ExportProgram(c.Request.Context(), programID, c.Query("format"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(file.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, file.ContentType, file.Content.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoDesignations):
		response.NotFound(c, 14101, "该节目单尚未生成指派")
	case errors.Is(err, service.ErrExportFormat):
		response.BadRequest(c, 14102, "不支持的导出格式，可选 xlsx 或 ics")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleProgramError(c, err)
	}
}
