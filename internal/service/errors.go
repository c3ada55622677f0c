package service

import (
	"errors"
	"fmt"
)

// 错误分类（taxonomy）
// - ErrValidation: malformed input, rejected before any persistence
// - ErrReferential: missing parent or cross-room reference mismatch
// - ErrStatus: illegal lifecycle transition or edit of an archived sketch
// Arithmetic edge cases (zero-length walls, zero-area rooms) are NOT errors;
// they compute to 0.
var (
	ErrValidation  = errors.New("validation error")
	ErrReferential = errors.New("referential error")
	ErrStatus      = errors.New("status error")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func referentialError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReferential, fmt.Sprintf(format, args...))
}

func statusError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStatus, fmt.Sprintf(format, args...))
}
