package syncer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/runnasync/internal/feed"
	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/runna"
	"github.com/claude/runnasync/internal/state"
)

// Journal keys recorded after a successful push.
const (
	LastSyncAtKey      = "last_sync_at"
	LastSyncSummaryKey = "last_sync_summary"
)

// FeedSource fetches the raw ICS calendar text.
type FeedSource interface {
	Fetch(url string) (string, error)
}

// Uploader sends converted events to Intervals.icu.
type Uploader interface {
	UploadEvents(events []intervals.Event, upsert bool) ([]intervals.RemoteEvent, error)
}

// Journal records which payloads were already uploaded.
type Journal interface {
	IsCurrent(externalID, hash string) (bool, error)
	MarkSynced(externalID, workoutDate, name, hash string) error
	SetSyncState(key, value string) error
}

var (
	_ FeedSource = (*feed.Client)(nil)
	_ Uploader   = (*intervals.Client)(nil)
	_ Journal    = (*state.DB)(nil)
)

// Options select which feed events a sync run covers and how their
// descriptions are rendered.
type Options struct {
	ICSURL        string
	StartDate     string // inclusive YYYY-MM-DD, empty means no lower bound
	EndDate       string // inclusive YYYY-MM-DD, empty means no upper bound
	Limit         int    // maximum planned events, 0 means unlimited
	Units         runna.DistanceUnit
	EasyPaceSecMi int
	DryRun        bool
	Force         bool // bypass the journal and re-upload everything
}

// PlannedEvent pairs a converted event with its parse warnings and
// payload hash.
type PlannedEvent struct {
	Event    intervals.Event
	Warnings []runna.Warning
	Hash     string
}

// SkippedWorkout identifies a feed event whose description produced no
// recognizable steps.
type SkippedWorkout struct {
	Date string
	Name string
}

// Plan is the outcome of fetching and converting a feed, before
// anything is uploaded.
type Plan struct {
	FeedEvents int
	InRange    int
	Events     []PlannedEvent
	Skipped    []SkippedWorkout
}

// Stats tracks sync progress.
type Stats struct {
	FeedEvents int
	InRange    int
	Planned    int
	Skipped    int
	Unchanged  int
	Uploaded   int
}

// Syncer drives the feed-to-Intervals.icu pipeline.
type Syncer struct {
	feed    FeedSource
	client  Uploader
	journal Journal
	log     *slog.Logger
}

// New creates a new Syncer. The journal may be nil, in which case
// every planned event is uploaded on every run.
func New(feedSource FeedSource, client Uploader, journal Journal, log *slog.Logger) *Syncer {
	return &Syncer{
		feed:    feedSource,
		client:  client,
		journal: journal,
		log:     log,
	}
}

// Plan fetches the feed and converts every in-range workout without
// touching Intervals.icu.
func (s *Syncer) Plan(opts Options) (*Plan, error) {
	if opts.ICSURL == "" {
		return nil, fmt.Errorf("no feed URL provided")
	}

	s.log.Info("fetching Runna calendar")
	icsText, err := s.feed.Fetch(opts.ICSURL)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}

	events, err := feed.Parse(icsText)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	plan := &Plan{FeedEvents: len(events)}
	for _, ev := range events {
		if opts.StartDate != "" && ev.Date < opts.StartDate {
			continue
		}
		if opts.EndDate != "" && ev.Date > opts.EndDate {
			continue
		}
		plan.InRange++

		if opts.Limit > 0 && len(plan.Events) >= opts.Limit {
			continue
		}

		converted, warnings, err := Convert(ev, opts.Units, opts.EasyPaceSecMi)
		if errors.Is(err, ErrNoSteps) {
			s.log.Warn("skipping workout with unparseable description", "date", ev.Date, "name", ev.Name)
			plan.Skipped = append(plan.Skipped, SkippedWorkout{Date: ev.Date, Name: ev.Name})
			continue
		}
		for _, w := range warnings {
			s.log.Warn("partial parse", "date", ev.Date, "name", ev.Name, "detail", w.String())
		}

		plan.Events = append(plan.Events, PlannedEvent{
			Event:    converted,
			Warnings: warnings,
			Hash:     payloadHash(converted),
		})
	}

	s.log.Info("planned sync",
		"feed_events", plan.FeedEvents,
		"in_range", plan.InRange,
		"planned", len(plan.Events),
		"skipped", len(plan.Skipped),
	)
	return plan, nil
}

// Push uploads planned events in one bulk upsert, consulting the
// journal to skip payloads that have not changed since the last run.
func (s *Syncer) Push(plan *Plan, force bool) (*Stats, error) {
	stats := &Stats{
		FeedEvents: plan.FeedEvents,
		InRange:    plan.InRange,
		Planned:    len(plan.Events),
		Skipped:    len(plan.Skipped),
	}

	var changed []PlannedEvent
	for _, pe := range plan.Events {
		if !force && s.journal != nil {
			current, err := s.journal.IsCurrent(pe.Event.ExternalID, pe.Hash)
			if err != nil {
				s.log.Warn("journal check failed", "external_id", pe.Event.ExternalID, "error", err)
			} else if current {
				stats.Unchanged++
				continue
			}
		}
		changed = append(changed, pe)
	}

	if len(changed) > 0 {
		events := make([]intervals.Event, len(changed))
		for i, pe := range changed {
			events[i] = pe.Event
		}

		created, err := s.client.UploadEvents(events, true)
		if err != nil {
			return stats, fmt.Errorf("uploading events: %w", err)
		}
		stats.Uploaded = len(created)

		if s.journal != nil {
			for _, pe := range changed {
				err := s.journal.MarkSynced(pe.Event.ExternalID, pe.Event.StartDateLocal[:10], pe.Event.Name, pe.Hash)
				if err != nil {
					s.log.Warn("failed to mark synced", "external_id", pe.Event.ExternalID, "error", err)
				}
			}
		}
	}

	if s.journal != nil {
		if err := s.journal.SetSyncState(LastSyncAtKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
			s.log.Warn("failed to save sync state", "error", err)
		}
		summary := fmt.Sprintf("%d uploaded, %d unchanged, %d skipped", stats.Uploaded, stats.Unchanged, stats.Skipped)
		if err := s.journal.SetSyncState(LastSyncSummaryKey, summary); err != nil {
			s.log.Warn("failed to save sync state", "error", err)
		}
	}

	s.log.Info("push complete", "uploaded", stats.Uploaded, "unchanged", stats.Unchanged)
	return stats, nil
}

// Run executes a full sync: plan then push. Dry runs stop after
// planning and upload nothing.
func (s *Syncer) Run(opts Options) (*Plan, *Stats, error) {
	plan, err := s.Plan(opts)
	if err != nil {
		return nil, nil, err
	}

	if opts.DryRun {
		return plan, &Stats{
			FeedEvents: plan.FeedEvents,
			InRange:    plan.InRange,
			Planned:    len(plan.Events),
			Skipped:    len(plan.Skipped),
		}, nil
	}

	stats, err := s.Push(plan, opts.Force)
	return plan, stats, err
}

// payloadHash fingerprints an upload payload for journal diffing.
func payloadHash(ev intervals.Event) string {
	data, _ := json.Marshal(ev)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
