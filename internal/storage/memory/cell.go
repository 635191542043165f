package memory

import "time"

// Cell is the stored unit for one key.
type Cell struct {
	Value string
	// Expiry is the absolute instant the cell stops being visible.
	// The zero time means the cell never expires.
	Expiry time.Time
}

// HasExpiry reports whether the cell carries an expiry.
func (c Cell) HasExpiry() bool {
	return !c.Expiry.IsZero()
}

// ExpiredAt reports whether the cell is logically absent at now.
// A cell expires at its expiry instant, not after it.
func (c Cell) ExpiredAt(now time.Time) bool {
	return c.HasExpiry() && !now.Before(c.Expiry)
}
