package vkbackend

import (
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// wrapResult turns a VkResult into a *gpu.ResultError, following the
// teacher's newError idiom of naming the failing call rather than just the
// bare numeric code.
func wrapResult(op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return &gpu.ResultError{Op: op, Code: int32(ret)}
}

// invariant panics on a precondition that should be unreachable given the
// contracts upstream packages uphold (e.g. recording into an unbegun
// command buffer). It is never used for data-dependent GPU failures, which
// are always returned as errors.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		pc, _, _, ok := runtime.Caller(2)
		name := "unknown"
		if ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				name = fn.Name()
			}
		}
		*err = fmt.Errorf("vkbackend: recovered in %s: %+v", name, v)
	}
}
