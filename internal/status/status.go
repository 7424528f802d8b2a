// Package status 定义封闭的领域错误分类和面向用户的提示消息
// 每种错误对应固定的本地化文案和 HTTP 状态码，底层存储错误只作为 cause 包装，不对外暴露
package status

import "net/http"

// Kind 领域错误种类
type Kind int

const (
	KindUnknown Kind = iota
	KindFailedToConnect
	KindAccountDoesNotExist
	KindActivationCodeFailedToUpdate
	KindActivationCodeAlreadyUsed
	KindActivationCodeDoesNotExist
	KindActivationCodeFailedToGen
	KindActivationCodeExpired
	KindActivationCodeNotMatch
)

// kindMessages 每种错误的固定文案
var kindMessages = map[Kind]string{
	KindFailedToConnect:              "连接数据库失败",
	KindAccountDoesNotExist:          "账号不存在",
	KindActivationCodeFailedToUpdate: "激活码更新失败",
	KindActivationCodeAlreadyUsed:    "激活码已经被使用",
	KindActivationCodeDoesNotExist:   "激活码不存在",
	KindActivationCodeFailedToGen:    "激活码生成失败",
	KindActivationCodeExpired:        "激活码已经过期",
	KindActivationCodeNotMatch:       "激活码不匹配",
}

// kindHTTPStatus 每种错误对应的 HTTP 状态码
var kindHTTPStatus = map[Kind]int{
	KindFailedToConnect:              http.StatusServiceUnavailable,
	KindAccountDoesNotExist:          http.StatusNotFound,
	KindActivationCodeFailedToUpdate: http.StatusInternalServerError,
	KindActivationCodeAlreadyUsed:    http.StatusConflict,
	KindActivationCodeDoesNotExist:   http.StatusNotFound,
	KindActivationCodeFailedToGen:    http.StatusInternalServerError,
	KindActivationCodeExpired:        http.StatusGone,
	KindActivationCodeNotMatch:       http.StatusUnprocessableEntity,
}

// Message 返回该错误种类的本地化文案
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return "error"
}

// HTTPStatus 返回该错误种类对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	if s, ok := kindHTTPStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error 领域错误，可选携带底层 cause
type Error struct {
	kind  Kind
	cause error
}

// 哨兵错误值，用于 errors.Is 比较
var (
	ErrFailedToConnect              = &Error{kind: KindFailedToConnect}
	ErrAccountDoesNotExist          = &Error{kind: KindAccountDoesNotExist}
	ErrActivationCodeFailedToUpdate = &Error{kind: KindActivationCodeFailedToUpdate}
	ErrActivationCodeAlreadyUsed    = &Error{kind: KindActivationCodeAlreadyUsed}
	ErrActivationCodeDoesNotExist   = &Error{kind: KindActivationCodeDoesNotExist}
	ErrActivationCodeFailedToGen    = &Error{kind: KindActivationCodeFailedToGen}
	ErrActivationCodeExpired        = &Error{kind: KindActivationCodeExpired}
	ErrActivationCodeNotMatch       = &Error{kind: KindActivationCodeNotMatch}
)

// New 创建指定种类的领域错误
func New(kind Kind) *Error {
	return &Error{kind: kind}
}

// Wrap 包装底层错误为领域错误，cause 只用于日志，不会出现在响应里
func Wrap(kind Kind, cause error) *Error {
	return &Error{kind: kind, cause: cause}
}

func (e *Error) Error() string {
	return e.kind.Message()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind 返回错误种类
func (e *Error) Kind() Kind {
	return e.kind
}

// Is 按种类比较，使 errors.Is(err, status.ErrXxx) 成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

// KindOf 提取错误的种类，非领域错误返回 KindUnknown
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

// Message 成功提示消息
type Message int

const (
	MsgSuccess Message = iota
	MsgRegisterSuccess
	MsgActivateSuccess
	MsgUnbindSuccess
	MsgCodeGenerated
)

// String 返回成功消息的文案
func (m Message) String() string {
	switch m {
	case MsgRegisterSuccess:
		return "登录成功"
	case MsgActivateSuccess:
		return "激活成功"
	case MsgUnbindSuccess:
		return "解绑成功"
	case MsgCodeGenerated:
		return "激活码生成成功"
	default:
		return "success"
	}
}
