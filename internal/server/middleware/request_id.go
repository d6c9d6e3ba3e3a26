package middleware

import (
	"github.com/gin-gonic/gin"

	"tubecast/internal/pkg/ctxutil"
	"tubecast/internal/pkg/id"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

// RequestID 为每个请求分配请求ID
// 优先沿用客户端传入的 X-Request-ID，同时写入 gin 上下文与 request context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" || len(rid) > 64 {
			rid = id.New()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), rid))
		c.Header(HeaderRequestID, rid)

		c.Next()
	}
}
