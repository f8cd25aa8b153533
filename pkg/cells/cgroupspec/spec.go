// Package cgroupspec holds the typed, validated wrappers over cgroup v2
// CPU, cpuset, and memory controller settings that parameterise cell
// allocation.
package cgroupspec

// Spec is the tuple of optional controller settings for a cell. An unset
// controller means "let the kernel apply its defaults" rather than
// "disable the controller".
type Spec struct {
	CPU    *CPUController
	CPUSet *CPUSetController
	Memory *MemoryController
}

// EnabledControllers returns the cgroup v2 controller names that must be
// present in cgroup.subtree_control for this spec to be satisfiable.
func (s Spec) EnabledControllers() []string {
	var out []string
	if s.CPU != nil {
		out = append(out, "cpu")
	}
	if s.CPUSet != nil {
		out = append(out, "cpuset")
	}
	if s.Memory != nil {
		out = append(out, "memory")
	}
	return out
}
