package cgroupspec

import "regexp"

// cpusetListRegex matches a comma-separated list of numbers with optional
// ranges, or the empty string — e.g. "0", "1,2", "1-3", "1,2-5,6".
var cpusetListRegex = regexp.MustCompile(`^(\d+(-\d+)?,?)*$`)

// Cpus is the validated contents of cpuset.cpus.
type Cpus string

// NewCpus validates and constructs Cpus.
func NewCpus(v string) (Cpus, error) {
	if !cpusetListRegex.MatchString(v) {
		return "", invalid("cpuset.cpus", "must be a comma-separated list of numbers or ranges")
	}
	return Cpus(v), nil
}

func (c Cpus) String() string { return string(c) }

// Mems is the validated contents of cpuset.mems.
type Mems string

// NewMems validates and constructs Mems.
func NewMems(v string) (Mems, error) {
	if !cpusetListRegex.MatchString(v) {
		return "", invalid("cpuset.mems", "must be a comma-separated list of numbers or ranges")
	}
	return Mems(v), nil
}

func (m Mems) String() string { return string(m) }

// CPUSetController holds the cpuset.cpus / cpuset.mems knobs. A nil
// pointer field means "leave the kernel default"; present-but-empty
// string values are legal (clears the restriction).
type CPUSetController struct {
	Cpus *Cpus
	Mems *Mems
}
