package cgroupspec

// MemoryController holds the memory.{min,low,high,max} knobs. Each is
// independently optional; an unset field leaves the kernel default.
type MemoryController struct {
	Min  *Protection
	Low  *Protection
	High *Limit
	Max  *Limit
}
