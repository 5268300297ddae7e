package classify

import (
	"time"

	"pushrender/pkg/models"
)

// idMask keeps the low 28 bits of the clock reading so the result always
// fits the signed 32-bit range the platform expects.
const idMask = 0x0FFFFFFF

// IDAllocator derives notification identifiers from a millisecond clock.
// Identifiers are not globally unique, only practically non-colliding for
// notifications active at the same time.
type IDAllocator struct {
	now func() time.Time
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{now: time.Now}
}

// NewIDAllocatorWithClock substitutes the clock, for tests.
func NewIDAllocatorWithClock(now func() time.Time) *IDAllocator {
	return &IDAllocator{now: now}
}

func (a *IDAllocator) Allocate() models.NotificationID {
	return models.NotificationID(a.now().UnixMilli() & idMask)
}
