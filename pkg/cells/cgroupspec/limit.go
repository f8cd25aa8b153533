package cgroupspec

import "fmt"

// Limit is a non-negative cgroup quota, shared by cpu.max's quota and
// memory.max/high/min/low.
type Limit int64

// NewLimit validates and constructs a Limit.
func NewLimit(v int64) (Limit, error) {
	if v < 0 {
		return 0, invalid("limit", "must be >= 0")
	}
	return Limit(v), nil
}

func (l Limit) String() string {
	return fmt.Sprintf("%d", int64(l))
}

// Protection is a non-negative memory protection value (memory.min/low).
// It has the same validation as Limit but a distinct name to mirror the
// original's separate Protection type.
type Protection = Limit

// NewProtection is an alias for NewLimit, kept distinct for call-site
// clarity when constructing memory.min/low rather than memory.max.
func NewProtection(v int64) (Protection, error) {
	return NewLimit(v)
}
