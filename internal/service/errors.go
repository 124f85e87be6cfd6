package service

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalServer   = errors.New("internal server error")
)
