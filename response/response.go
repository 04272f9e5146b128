package response

// 业务状态码（非HTTP状态码，统一走code字段）
const (
	CodeSuccess    = 200
	CodeValidation = 400 // 参数校验失败
	CodeForbidden  = 403 // 无权限（非记录归属人且无管理角色）
	CodeNotFound   = 404 // 记录不存在
	CodeConflict   = 409 // 唯一键冲突
	CodeInternal   = 500 // 服务器内部错误（含重试后仍失败的瞬时存储错误）
)

// Response 统一响应格式
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// Success 成功响应
func Success(data interface{}) *Response {
	return &Response{
		Code: CodeSuccess,
		Msg:  "success",
		Data: data,
	}
}

// Error 失败响应
func Error(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
		Data: nil,
	}
}

// ValidationError 参数校验失败响应
func ValidationError(msg string) *Response {
	return Error(CodeValidation, msg)
}

// ForbiddenError 权限不足响应
func ForbiddenError(msg string) *Response {
	return Error(CodeForbidden, msg)
}

// NotFoundError 记录不存在响应
func NotFoundError(msg string) *Response {
	return Error(CodeNotFound, msg)
}

// ConflictError 唯一键冲突响应
func ConflictError(msg string) *Response {
	return Error(CodeConflict, msg)
}

// InternalError 服务器内部错误响应
func InternalError() *Response {
	return Error(CodeInternal, "服务器内部错误")
}
