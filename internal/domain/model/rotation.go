package model

import "time"

// RotationCursor points at the next static variant to show for a (theme, language) pair.
type RotationCursor struct {
	ID       string
	Index    int
	LastSent time.Time
}
