package cgroupspec

// CPUController holds the cpu.weight / cpu.max knobs. Weight maps
// straight to cpu.weight; Max maps to the quota half of cpu.max, written
// alongside a fixed 1,000,000 microsecond period, per the cgroup v2
// wire format "<quota> <period>".
type CPUController struct {
	Weight *Weight
	Max    *Limit
}

// DefaultCPUPeriodMicros is the fixed period (in microseconds) auraed
// always uses when writing cpu.max.
const DefaultCPUPeriodMicros = 1_000_000
