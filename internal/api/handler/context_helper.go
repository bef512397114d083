package handler

import (
	"github.com/gin-gonic/gin"

	"meeting-designations/pkg/response"
)

// 通用错误码
const (
	codeInvalidParam = 10001
)

// MustGetParam 读取路径参数；为空时写入 400 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetParam(c *gin.Context, name, message string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		response.BadRequest(c, codeInvalidParam, message)
		return "", false
	}
	return v, true
}
