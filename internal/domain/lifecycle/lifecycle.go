// Package lifecycle holds shared constants for fx lifecycle hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup and graceful-shutdown work in lifecycle hooks.
const DefaultTimeout = 10 * time.Second
