package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllocateMasksTo28Bits(t *testing.T) {
	now := time.UnixMilli(0x7FFFFFFFFFFF)
	alloc := NewIDAllocatorWithClock(func() time.Time { return now })

	id := alloc.Allocate()
	assert.GreaterOrEqual(t, int32(id), int32(0))
	assert.LessOrEqual(t, int64(id), int64(idMask))
}

func TestAllocateDiffersAcrossClockReadings(t *testing.T) {
	base := time.UnixMilli(1700000000000)
	readings := []time.Time{base, base.Add(time.Millisecond)}
	i := 0
	alloc := NewIDAllocatorWithClock(func() time.Time {
		r := readings[i]
		i++
		return r
	})

	first := alloc.Allocate()
	second := alloc.Allocate()
	assert.NotEqual(t, first, second)
}

func TestAllocateDeterministicForFixedClock(t *testing.T) {
	fixed := time.UnixMilli(1234567890123)
	alloc := NewIDAllocatorWithClock(func() time.Time { return fixed })

	assert.Equal(t, alloc.Allocate(), alloc.Allocate())
}
