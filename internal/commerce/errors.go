package commerce

import (
	"errors"
	"fmt"

	"github.com/goobits/storefront/internal/constants"
)

var (
	// ErrCartIDRequired 缺少购物车标识
	ErrCartIDRequired = errors.New("commerce: cart id required")
	// ErrCartNotFound 购物车不存在
	ErrCartNotFound = errors.New("commerce: cart not found")
	// ErrResponseInvalid 响应解析失败
	ErrResponseInvalid = errors.New("commerce: response invalid")
)

// APIError 外部商城接口错误。分类在调用源头打标，
// 不从错误文案反推类别。
type APIError struct {
	Kind    string // constants.ErrorKind*
	Status  int    // HTTP 状态码，网络错误为 0
	Message string // 后端返回的 message，可为空
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("commerce[%s]: %s", e.Kind, msg)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Kind 读取错误分类；非 APIError 统一视为 server 类
func Kind(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return constants.ErrorKindServer
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind string) bool {
	return Kind(err) == kind
}

// StatusOf 读取错误携带的 HTTP 状态码
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf 读取可展示的错误消息，无后端消息时返回空串
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func newAPIError(kind string, status int, message string, err error) *APIError {
	return &APIError{
		Kind:    kind,
		Status:  status,
		Message: message,
		Err:     err,
	}
}
