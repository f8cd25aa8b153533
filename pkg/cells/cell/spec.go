package cell

import (
	"github.com/aurae-runtime/aurae/pkg/cells/cgroupspec"
	"github.com/aurae-runtime/aurae/pkg/cells/isolation"
)

// Spec is everything needed to allocate a Cell: its controller limits and
// its namespace isolation settings.
type Spec struct {
	Cgroup    cgroupspec.Spec
	Isolation isolation.Controls
}
