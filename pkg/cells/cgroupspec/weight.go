package cgroupspec

import "fmt"

// Weight is a cgroup v2 cpu.weight value, valid in [1, 10000].
type Weight uint64

// NewWeight validates and constructs a Weight.
func NewWeight(v uint64) (Weight, error) {
	if v < 1 {
		return 0, invalid("cpu.weight", "must be >= 1")
	}
	if v > 10000 {
		return 0, invalid("cpu.weight", "must be <= 10000")
	}
	return Weight(v), nil
}

func (w Weight) String() string {
	return fmt.Sprintf("%d", uint64(w))
}
