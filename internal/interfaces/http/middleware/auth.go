package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/listwise/backend/internal/infrastructure/identity"
	"github.com/listwise/backend/internal/interfaces/http/response"
)

// subjectKey 已校验身份在 gin context 中的键
const subjectKey = "auth.subject"

// Identity 身份解析中间件
// Bearer 令牌合法时把已校验的 subject 放入 context；令牌非法时直接拒绝；
// 未携带令牌的请求作为匿名调用者放行，分享令牌路径允许匿名访问
func Identity(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			response.Error(c, http.StatusUnauthorized, 401001, "invalid authorization header")
			c.Abort()
			return
		}

		subject, err := verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, 401002, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(subjectKey, subject)
		c.Next()
	}
}

// RequireSubject 要求已认证身份
// 放在 Identity 之后，用于不接受匿名访问的路由
func RequireSubject() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Subject(c) == "" {
			response.Error(c, http.StatusUnauthorized, 401003, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Subject 读取已校验的调用者 subject，匿名时返回空串
func Subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}
