package replay

import (
	"fmt"

	"github.com/sessionlens/recorder/serialize"
)

// Inconsistency is a dangling-parent or missing-target resolution
// failure encountered while applying one mutation event (spec.md §7).
// The Replayer logs and skips the offending event rather than
// propagating this error to its caller.
type Inconsistency struct {
	Op     string
	NodeID serialize.NodeID
	Reason string
}

func (e *Inconsistency) Error() string {
	return fmt.Sprintf("replay: %s: node %d: %s", e.Op, e.NodeID, e.Reason)
}
