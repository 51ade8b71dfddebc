package service

import (
	"fmt"
	"sort"
	"strings"
)

// 错误分级（spec 的四类）：
// ValidationError —— 入参问题，按字段给出提示，可重提交
// AuthorizationError —— 身份缺失/不足，对外只给笼统拒绝
// ConfigurationError —— 协作方配置缺失，对外不泄露细节
// InternalError —— 协作方意外失败，服务端留详情，对外短消息
// 处理器边界统一转换，不让原始错误穿透。

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

type AuthorizationError struct{ Msg string }

func (e *AuthorizationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "not authorized"
}

type ConfigurationError struct{ Msg string }

func (e *ConfigurationError) Error() string { return "server configuration error" }

type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string { return e.Msg }
func (e *InternalError) Unwrap() error { return e.Err }

func internalf(err error, format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...), Err: err}
}
