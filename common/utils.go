package common

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type Vec3 = mgl32.Vec3
type Vec2 = mgl32.Vec2

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// AssertTrue panics when an internal invariant does not hold. It is reserved for
// programming errors; runtime failures are reported as state.
func AssertTrue(ok bool, msgAndArgs ...any) {
	if ok {
		return
	}
	if len(msgAndArgs) == 0 {
		panic("assertion failed")
	}
	if format, isStr := msgAndArgs[0].(string); isStr {
		panic(fmt.Sprintf("assertion failed: "+format, msgAndArgs[1:]...))
	}
	panic(fmt.Sprint(append([]any{"assertion failed: "}, msgAndArgs...)...))
}

func Next[T IT](i, n T) T {
	if i+1 < n {
		return i + 1
	}
	return 0
}

func NextPow2(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
