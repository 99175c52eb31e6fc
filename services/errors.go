package services

import "errors"

// 业务错误，由接口层映射到对应的 HTTP 状态码
var (
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrInvalidType   = errors.New("invalid message type")
	ErrEmptyMessage  = errors.New("empty message")
)
