package device

import "codeberg.org/verkko/gaugectl/internal/errors"

const (
	// Transport Errors
	ErrOpenFailed  = errors.ErrorCode("device_open_failed")
	ErrWriteFailed = errors.ErrorCode("device_write_failed")
	ErrShortWrite  = errors.ErrorCode("device_short_write")
	ErrCloseFailed = errors.ErrorCode("device_close_failed")

	// Protocol Errors
	ErrInvalidChannel = errors.ErrorCode("device_invalid_channel")
	ErrInvalidFrame   = errors.ErrorCode("device_invalid_frame")

	// Discovery Errors
	ErrEnumerateFailed = errors.ErrorCode("device_enumerate_failed")
)
