package gpu

import (
	"errors"
	"strconv"
)

// ErrTimeout is returned by Swapchain.AcquireNextImage when the image does
// not become available within the backend's configured timeout.
var ErrTimeout = errors.New("gpu: operation timed out")

// ErrDeviceLost is returned by any call made after the device has reported
// an unrecoverable error.
var ErrDeviceLost = errors.New("gpu: device lost")

// ResultError wraps a backend-specific result code (e.g. a VkResult) in a
// uniform error type, following the teacher's newError/checkErr idiom of
// attaching the originating call's context rather than a bare code.
type ResultError struct {
	Op   string
	Code int32
}

func (e *ResultError) Error() string {
	return "gpu: " + e.Op + " failed with code " + strconv.Itoa(int(e.Code))
}
