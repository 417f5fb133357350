// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// アプリケーション固有のエラー (エラー種別)
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("resource not found")
	ErrUpstreamFailure   = errors.New("upstream generation failed")
	ErrUpstreamMalformed = errors.New("upstream returned malformed content")
	ErrInternalServer    = errors.New("internal server error")
)

// ErrorKind はエラー種別を表す閉じた列挙です。
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindUpstreamFailure
	KindUpstreamMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUpstreamFailure:
		return "UPSTREAM_FAILURE"
	case KindUpstreamMalformed:
		return "UPSTREAM_MALFORMED"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// KindOf はエラーチェーンをセンチネルと照合して種別を返します。
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUpstreamFailure):
		return KindUpstreamFailure
	case errors.Is(err, ErrUpstreamMalformed):
		return KindUpstreamMalformed
	default:
		return KindInternal
	}
}

// ErrorDetail はAPIエラーレスポンスの本体です。
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はクライアントに返す情報と、種別判定用のセンチネルを持つエラーです。
type AppError struct {
	Code    string
	Message string
	Field   string
	Detail  map[string]any
	Err     error
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ToDetail はレスポンス用の ErrorDetail を返します。
func (e *AppError) ToDetail() ErrorDetail {
	return ErrorDetail{
		Code:    e.Code,
		Message: e.Message,
		Field:   e.Field,
		Detail:  e.Detail,
	}
}

// WithDetail は診断用の付加情報を追加して自身を返します。
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Detail == nil {
		e.Detail = make(map[string]any)
	}
	e.Detail[key] = value
	return e
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

// NewValidationError は入力不正 (400) のエラーを作ります。
func NewValidationError(field, message string) *AppError {
	return NewAppError(KindValidation.String(), message, field, ErrInvalidInput)
}

// NewNotFoundError は対象が存在しない (404) エラーを作り、識別子を detail に残します。
func NewNotFoundError(message, idField, id string) *AppError {
	return NewAppError(KindNotFound.String(), message, "", ErrNotFound).
		WithDetail(idField, id)
}
