package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/internal/service"
	resp "github.com/akramasif506/cloudstore3-sub001/internal/transport/http/response"
)

const keyCurrentUser = "currentUser"

// sessionValue 从 Cookie 取会话值，兜底支持 Bearer（方便脚本调用）
func sessionValue(c *gin.Context) string {
	if ck, err := c.Cookie(service.SessionCookieName); err == nil && ck != "" {
		return ck
	}
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimPrefix(ah, "Bearer ")
	}
	return ""
}

// SessionAuth 解析会话 Cookie 并还原当前用户。
// required=true 时未登录直接拒绝；false 时放行（currentUser 可能为空）。
// 无 Cookie / 畸形 / 过期 / 无档案 四种情况对调用方不可区分。
func SessionAuth(sm *service.SessionManager, requireRole domain.Role, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := sm.ResolveCurrentUser(c.Request.Context(), sessionValue(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, "internal error"))
			return
		}
		if u == nil {
			if required {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			c.Next()
			return
		}
		if requireRole != "" && u.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(keyCurrentUser, u)
		c.Set("userId", u.ID)
		c.Set("role", string(u.Role))
		c.Next()
	}
}

// CurrentUser 取中间件写入的用户；未登录返回 nil
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(keyCurrentUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
