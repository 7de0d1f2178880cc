package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RespondError 寫入錯誤響應，非 CustomError 一律視為內部錯誤
func RespondError(c *gin.Context, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		// 欄位錯誤是呼叫端自己的輸入，任何模式都回傳說明
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeInvalidRequest,
			Message: ErrInvalidRequest.Message,
			Details: validationErr.Error(),
		})
		return
	}

	var customErr *CustomError
	if !errors.As(err, &customErr) {
		customErr = ErrInternalError.Wrap(err)
	}

	resp := ErrorResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	}
	if gin.Mode() == gin.DebugMode && customErr.Err != nil {
		resp.Details = customErr.Err.Error()
	}

	if customErr.Status >= http.StatusInternalServerError {
		LogError("請求處理失敗",
			zap.String("code", customErr.Code),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(customErr.Status, resp)
}
