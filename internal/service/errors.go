package service

import "errors"

// 领域错误，由 HTTP 层通过 errors.Is 映射为状态码
var (
	ErrNotFound                  = errors.New("record not found")
	ErrEmailExists               = errors.New("email already registered")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrTokenInvalid              = errors.New("token invalid")
	ErrTokenExpired              = errors.New("token expired")
	ErrNotConfirmed              = errors.New("account not confirmed")
	ErrAlreadyConfirmed          = errors.New("account already confirmed")
	ErrInvalidPassword           = errors.New("password incorrect")
	ErrWeakPassword              = errors.New("password too weak")
	ErrForbiddenUpdate           = errors.New("user update not allowed")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrUploadTooLarge            = errors.New("upload file too large")
	ErrUploadTypeNotAllowed      = errors.New("upload file type not allowed")
)
