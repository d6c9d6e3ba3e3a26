package http

// 业务错误码：前三位对应 HTTP 状态码
const (
	CodeInvalidRequest        = 40001 // 请求参数错误
	CodeInvalidURL            = 40002 // 链接无法解析出视频ID
	CodeNotFound              = 40401 // 资源不存在
	CodeTranscriptUnavailable = 42201 // 视频没有可用字幕
	CodeTooManyRequests       = 42901 // 触发限流
	CodeInternal              = 50001 // 服务器内部错误
	CodeGenerationFailed      = 50201 // 模型调用失败
	CodeAudioRenderFailed     = 50202 // 语音合成失败
	CodeUnavailable           = 50301 // 依赖未配置或不可用
)

// ErrorResponse 错误响应（所有API共用）
// 用于统一错误响应格式
type ErrorResponse struct {
	Code    int         `json:"code"`             // 错误码（非0表示错误）
	Message string      `json:"message"`          // 错误消息
	Detail  string      `json:"detail,omitempty"` // 错误详情（可选）
	Data    interface{} `json:"data,omitempty"`   // 失败时的附加数据（可选）
}

// SuccessResponse 成功响应（所有API共用）
// 用于统一成功响应格式
type SuccessResponse struct {
	Code    int         `json:"code"`           // 状态码（0表示成功）
	Message string      `json:"message"`        // 响应消息
	Data    interface{} `json:"data,omitempty"` // 响应数据（可选）
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Code:    0,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}
