package handlers

import (
	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// getUserID 从上下文取出认证中间件写入的用户 ID。
// 取不到时直接写响应并返回 false，调用方应立即 return。
func getUserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, "unauthorized")
		return 0, false
	}
	return id, true
}
