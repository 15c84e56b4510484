// File: reactor/config.go
// Author: momentics <momentics@gmail.com>
//
// Reactor construction parameters shared by all platform variants.

package reactor

import "github.com/momentics/hioload-udp/api"

// Config selects the notification semantics for New.
type Config struct {
	// Trigger chooses level- or edge-triggered reporting. Backends that
	// cannot honor EdgeTriggered fail construction with ErrEdgeUnsupported
	// rather than degrading silently.
	Trigger api.TriggerMode
}
