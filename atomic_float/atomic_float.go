package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 supporting lock-free reads and updates, for statistics
// written by one goroutine and read by many (views, progress hooks).
// The zero value is 0.0 and ready to use.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.AtomicSet(val)
	return af
}

// AtomicRead returns the current value.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicAdd adds addend and returns the new value, retrying until the swap lands.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64) {
	for {
		old := af.bits.Load()
		newVal = math.Float64frombits(old) + addend
		if af.bits.CompareAndSwap(old, math.Float64bits(newVal)) {
			return
		}
	}
}

// TryAdd adds addend only if no other writer intervenes between read and write.
// Callers that prefer dropping a contended update to retrying use this.
func (af *AtomicFloat64) TryAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

func (af *AtomicFloat64) AtomicSet(val float64) {
	af.bits.Store(math.Float64bits(val))
}
