//go:build windows

package arbiter

import "time"

// DefaultCooldown spaces out ConPTY creation. Empirically tuned
// against observed 0xC0000142 spawn failures when PTYs are created in
// rapid succession.
func DefaultCooldown() time.Duration { return 150 * time.Millisecond }
