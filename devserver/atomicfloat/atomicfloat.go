// Package atomicfloat provides a lock-free float64 box, used by devserver to
// let its background trainer goroutine write Q-value snapshots while
// websocket publisher goroutines read them concurrently, without taking a
// lock over what would otherwise be a large, frequently-read table.
package atomicfloat

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64 encapsulates a float64 for non-locking atomic reads and
// compare-and-swap updates.
type Float64 struct {
	val float64
}

// New returns a Float64 initialized to val.
func New(val float64) *Float64 {
	return &Float64{val: val}
}

// Load atomically reads the current value.
func (af *Float64) Load() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&af.val)))
	return math.Float64frombits(bits)
}

// Store atomically overwrites the current value, retrying the
// compare-and-swap until it succeeds against whatever the current value is.
func (af *Float64) Store(newVal float64) {
	for {
		old := af.Load()
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&af.val)),
			math.Float64bits(old),
			math.Float64bits(newVal),
		) {
			return
		}
	}
}
