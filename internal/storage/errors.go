package storage

import "errors"

var (
	ErrDeckNotFound  = errors.New("deck not found")
	ErrInvalidData   = errors.New("invalid data")
	ErrStorageInit   = errors.New("storage initialization failed")
	ErrFileOperation = errors.New("file operation failed")
)
