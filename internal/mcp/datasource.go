package mcp

import (
	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/state"
	"github.com/claude/runnasync/internal/syncer"
)

// Planner produces upload plans from the calendar feed without
// touching intervals.icu.
type Planner interface {
	Plan(opts syncer.Options) (*syncer.Plan, error)
}

// RemoteCalendar lists events already on the intervals.icu calendar.
type RemoteCalendar interface {
	ListEvents(oldest, newest string) ([]intervals.RemoteEvent, error)
}

// JournalReader exposes read access to the local sync journal.
type JournalReader interface {
	GetSyncState(key string) (string, error)
	ListSynced() ([]state.SyncedEvent, error)
}

// Compile-time checks: the production types satisfy the tool interfaces.
var (
	_ Planner        = (*syncer.Syncer)(nil)
	_ RemoteCalendar = (*intervals.Client)(nil)
	_ JournalReader  = (*state.DB)(nil)
)
