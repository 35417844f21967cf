package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// BroadcastRun is the append-only audit record of one completed broadcast.
type BroadcastRun struct {
	ID          string
	Theme       Theme
	Language    Language
	Variation   string
	UsedAI      bool
	Total       int
	Success     int
	Errors      int
	Skipped     int
	StartedAt   time.Time
	CompletedAt time.Time
}

func NewBroadcastRun(theme Theme, lang Language, startedAt time.Time) *BroadcastRun {
	return &BroadcastRun{
		ID:        ulid.Make().String(),
		Theme:     theme,
		Language:  lang,
		StartedAt: startedAt,
	}
}

func (r *BroadcastRun) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
