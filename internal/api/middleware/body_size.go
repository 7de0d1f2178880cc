package middleware

import (
	"net/http"

	"grocery-aggregator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrCodeBodyTooLarge 請求體過大
const ErrCodeBodyTooLarge = "BODY_TOO_LARGE"

// BodySizeLimit 限制請求體大小
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			common.LogWarn("Request body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
				zap.String("path", c.Request.URL.Path),
			)
			common.RespondError(c, common.NewError(ErrCodeBodyTooLarge, "請求內容過大", http.StatusRequestEntityTooLarge, nil))
			return
		}

		// 未帶 Content-Length 時由 MaxBytesReader 把關
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		c.Next()
	}
}
