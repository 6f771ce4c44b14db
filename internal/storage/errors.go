package storage

import "errors"

var (
	ErrUnreachable       = errors.New("vector store unreachable")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
