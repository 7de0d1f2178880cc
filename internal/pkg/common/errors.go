package common

import (
	"fmt"
	"net/http"
)

// ErrorResponse API 錯誤回應：{code, message, details?}
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// CustomError 帶有錯誤代碼與 HTTP 狀態碼的錯誤
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 取得原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Wrap 以預定義錯誤包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// Is 錯誤代碼與狀態碼相同即視為同一種錯誤
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Status == t.Status
}

// NewError 建立自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 請求欄位不合法，回應 400 並附上欄位說明
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError 建立欄位驗證錯誤
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// 錯誤代碼
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRequestTimeout     = "REQUEST_TIMEOUT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	ErrCodeRecipeNotFound = "RECIPE_NOT_FOUND"
	ErrCodeRecipeSource   = "RECIPE_SOURCE_ERROR"
	ErrCodeStore          = "STORE_ERROR"
	ErrCodeDatabase       = "DATABASE_ERROR"
)

// 預定義錯誤
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTimeout     = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)

	// 購物清單
	ErrRecipeNotFound       = NewError(ErrCodeRecipeNotFound, "找不到食譜", http.StatusNotFound, nil)
	ErrRecipeSourceError    = NewError(ErrCodeRecipeSource, "食譜來源服務錯誤", http.StatusBadGateway, nil)
	ErrRecipeSourceDisabled = NewError(ErrCodeRecipeSource, "食譜來源服務未啟用", http.StatusServiceUnavailable, nil)
	ErrStoreError           = NewError(ErrCodeStore, "勾選狀態儲存錯誤", http.StatusServiceUnavailable, nil)
	ErrDatabaseError        = NewError(ErrCodeDatabase, "資料庫錯誤", http.StatusInternalServerError, nil)
)
