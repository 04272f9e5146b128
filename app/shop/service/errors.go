package service

import (
	"errors"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/response"
)

// BizError 业务错误（携带统一状态码，控制器直接回给请求方）
type BizError struct {
	Code int
	Msg  string
}

func (e *BizError) Error() string {
	return e.Msg
}

func NewBizError(code int, msg string) *BizError {
	return &BizError{Code: code, Msg: msg}
}

func ValidationErr(msg string) *BizError {
	return NewBizError(response.CodeValidation, msg)
}

func ForbiddenErr(msg string) *BizError {
	return NewBizError(response.CodeForbidden, msg)
}

func NotFoundErr(msg string) *BizError {
	return NewBizError(response.CodeNotFound, msg)
}

func ConflictErr(msg string) *BizError {
	return NewBizError(response.CodeConflict, msg)
}

func InternalErr() *BizError {
	return NewBizError(response.CodeInternal, "服务器内部错误")
}

// mapStoreErr 存储层错误映射为业务错误
func mapStoreErr(err error) *BizError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		return NotFoundErr("记录不存在")
	case errors.Is(err, model.ErrDuplicate):
		return ConflictErr("记录已存在")
	default:
		return InternalErr()
	}
}

// isTransientErr 非确定性错误（网络抖动等）才值得重试
// 语义错误（不存在/冲突）重试只会得到同样的结果
func isTransientErr(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrDuplicate)
}
