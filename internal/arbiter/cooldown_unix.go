//go:build !windows

package arbiter

import "time"

// DefaultCooldown is zero on POSIX: pty allocation has no settling
// race, so tokens expire immediately and the arbiter degenerates to a
// plain pass-through.
func DefaultCooldown() time.Duration { return 0 }
