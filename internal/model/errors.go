package model

import (
	"errors"
	"fmt"
)

// ValidationError 表示调用方参数不在允许的取值范围内，原样返回给调用方
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// GenerationError 表示 LLM 协作方失败：无可解析 JSON、JSON 解析失败或上游调用失败。
// Message 是对外的净化文案，Err 保留内部细节仅用于日志。
type GenerationError struct {
	Message    string
	Overloaded bool // 上游限流/过载，允许重试
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError 用于模型输出结构问题（无 JSON、JSON 不合法）
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{Message: message}
}

// WrapGenerationError 用于上游调用失败，overloaded 标记是否为可重试的过载错误
func WrapGenerationError(message string, err error, overloaded bool) *GenerationError {
	return &GenerationError{Message: message, Err: err, Overloaded: overloaded}
}

// RenderError 表示文档序列化原语本身不可用，属于致命错误
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render presentation: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// PublicMessage 返回可以透出给调用方的错误文案。
// 上游模型的原始错误信息可能携带密钥等敏感内容，只允许进日志。
func PublicMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	var gerr *GenerationError
	if errors.As(err, &gerr) {
		if gerr.Overloaded {
			return "AI service unavailable"
		}
		return "failed to process AI response"
	}

	var rerr *RenderError
	if errors.As(err, &rerr) {
		return "failed to render presentation"
	}

	return "internal server error"
}
