package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/runna"
	"github.com/claude/runnasync/internal/state"
	"github.com/claude/runnasync/internal/syncer"
	"github.com/mark3labs/mcp-go/mcp"
)

// recentLimit caps the journal entries included in a sync status report.
const recentLimit = 10

// defaultDateRange returns start/end as YYYY-MM-DD strings, defaulting
// to today through seven days out.
func defaultDateRange(startStr, endStr string) (string, string, error) {
	start := time.Now()
	if startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return "", "", err
		}
		start = t
	}

	end := start.AddDate(0, 0, 7)
	if endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return "", "", err
		}
		end = t
	}

	return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
}

// dateOf strips the local-midnight time suffix from an event start.
func dateOf(startDateLocal string) string {
	if i := strings.IndexByte(startDateLocal, 'T'); i > 0 {
		return startDateLocal[:i]
	}
	return startDateLocal
}

// --- Tool definitions ---

var toolPreviewWorkout = mcp.NewTool("preview_workout",
	mcp.WithDescription("Convert a Runna workout description into intervals.icu step lines. Returns the rendered description and any parse warnings without contacting either service."),
	mcp.WithString("description", mcp.Required(), mcp.Description("Raw workout description text as it appears in the Runna calendar")),
	mcp.WithString("units", mcp.Description("Distance units for rendered paces: km or mi. Defaults to the configured units."), mcp.Enum("km", "mi")),
	mcp.WithNumber("easy_pace_sec_mi", mcp.Description("Fallback pace in seconds per mile for unlabelled easy efforts. 0 disables the fallback. Defaults to the configured value.")),
)

var toolGetUpcomingWorkouts = mcp.NewTool("get_upcoming_workouts",
	mcp.WithDescription("Fetch the Runna calendar feed and return upcoming workouts converted to intervals.icu form. Read-only; nothing is uploaded."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD), inclusive. Defaults to 7 days after start.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. 0 means no limit.")),
)

var toolListPlannedEvents = mcp.NewTool("list_planned_events",
	mcp.WithDescription("List planned events already on the intervals.icu calendar for a date range."),
	mcp.WithString("start", mcp.Required(), mcp.Description("Start date (YYYY-MM-DD)")),
	mcp.WithString("end", mcp.Required(), mcp.Description("End date (YYYY-MM-DD), inclusive")),
	mcp.WithBoolean("runna_only", mcp.Description("Only include events uploaded from the Runna feed. Defaults to false.")),
)

var toolGetSyncStatus = mcp.NewTool("get_sync_status",
	mcp.WithDescription("Report when the last sync ran, its outcome, and the most recently journalled workouts."),
)

// --- Tool handlers ---

func (h *handlers) previewWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("description parameter is required"), nil
	}

	unit := h.defaults.Units
	if v := req.GetString("units", ""); v != "" {
		unit, err = runna.ParseDistanceUnit(v)
		if err != nil {
			return mcp.NewToolResultError("invalid units: " + err.Error()), nil
		}
	}
	easyPace := req.GetInt("easy_pace_sec_mi", h.defaults.EasyPaceSecMi)

	result, err := mcp.NewToolResultJSON(previewPayload(description, unit, easyPace))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getUpcomingWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultDateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	if h.defaults.ICSURL == "" {
		return mcp.NewToolResultError("no calendar feed configured: set feed.ics_url or RUNNASYNC_ICS_URL"), nil
	}

	plan, err := h.planner.Plan(syncer.Options{
		ICSURL:        h.defaults.ICSURL,
		StartDate:     start,
		EndDate:       end,
		Limit:         req.GetInt("limit", 0),
		Units:         h.defaults.Units,
		EasyPaceSecMi: h.defaults.EasyPaceSecMi,
	})
	if err != nil {
		h.log.Error("mcp get_upcoming_workouts", "error", err)
		return mcp.NewToolResultError("feed fetch failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(planPayload(plan))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listPlannedEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := req.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError("start parameter is required"), nil
	}
	end, err := req.RequireString("end")
	if err != nil {
		return mcp.NewToolResultError("end parameter is required"), nil
	}
	if _, _, err := defaultDateRange(start, end); err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	if h.remote == nil {
		return mcp.NewToolResultError("intervals.icu credentials not configured: run `runnasync config` first"), nil
	}

	events, err := h.remote.ListEvents(start, end)
	if err != nil {
		h.log.Error("mcp list_planned_events", "error", err)
		return mcp.NewToolResultError("intervals.icu request failed: " + err.Error()), nil
	}

	if req.GetBool("runna_only", false) {
		events = filterRunnaEvents(events)
	}

	result, err := mcp.NewToolResultJSON(events)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSyncStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.journal == nil {
		return mcp.NewToolResultError("sync journal unavailable: no state directory configured"), nil
	}

	lastSyncAt, err := h.journal.GetSyncState(syncer.LastSyncAtKey)
	if err != nil {
		h.log.Error("mcp get_sync_status", "error", err)
		return mcp.NewToolResultError("journal read failed: " + err.Error()), nil
	}
	summary, err := h.journal.GetSyncState(syncer.LastSyncSummaryKey)
	if err != nil {
		h.log.Error("mcp get_sync_status", "error", err)
		return mcp.NewToolResultError("journal read failed: " + err.Error()), nil
	}
	rows, err := h.journal.ListSynced()
	if err != nil {
		h.log.Error("mcp get_sync_status", "error", err)
		return mcp.NewToolResultError("journal read failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(statusPayload(lastSyncAt, summary, rows))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Payload builders ---

type plannedWorkout struct {
	Date        string   `json:"date"`
	Name        string   `json:"name"`
	ExternalID  string   `json:"external_id"`
	MovingTime  int      `json:"moving_time"`
	Description string   `json:"description"`
	Warnings    []string `json:"warnings,omitempty"`
}

func previewPayload(description string, unit runna.DistanceUnit, easyPaceSecMi int) map[string]any {
	workout, warnings := runna.ParseDescription(description, easyPaceSecMi)
	rendered := runna.Render(workout, unit)

	texts := make([]string, 0, len(warnings))
	for _, w := range warnings {
		texts = append(texts, w.String())
	}
	return map[string]any{
		"description": rendered,
		"recognized":  rendered != "",
		"warnings":    texts,
	}
}

func planPayload(plan *syncer.Plan) map[string]any {
	workouts := make([]plannedWorkout, 0, len(plan.Events))
	for _, pe := range plan.Events {
		var texts []string
		for _, w := range pe.Warnings {
			texts = append(texts, w.String())
		}
		workouts = append(workouts, plannedWorkout{
			Date:        dateOf(pe.Event.StartDateLocal),
			Name:        pe.Event.Name,
			ExternalID:  pe.Event.ExternalID,
			MovingTime:  pe.Event.MovingTime,
			Description: pe.Event.Description,
			Warnings:    texts,
		})
	}

	skipped := make([]map[string]string, 0, len(plan.Skipped))
	for _, s := range plan.Skipped {
		skipped = append(skipped, map[string]string{"date": s.Date, "name": s.Name})
	}

	return map[string]any{
		"feed_events": plan.FeedEvents,
		"in_range":    plan.InRange,
		"workouts":    workouts,
		"skipped":     skipped,
	}
}

func statusPayload(lastSyncAt, summary string, rows []state.SyncedEvent) map[string]any {
	recent := rows
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}

	entries := make([]map[string]string, 0, len(recent))
	for _, r := range recent {
		entries = append(entries, map[string]string{
			"external_id":  r.ExternalID,
			"workout_date": r.WorkoutDate,
			"name":         r.Name,
		})
	}

	payload := map[string]any{
		"synced_total": len(rows),
		"recent":       entries,
	}
	if lastSyncAt != "" {
		payload["last_sync_at"] = lastSyncAt
	}
	if summary != "" {
		payload["last_sync_summary"] = summary
	}
	return payload
}

// filterRunnaEvents keeps only events whose external ID carries the
// uploader's prefix.
func filterRunnaEvents(events []intervals.RemoteEvent) []intervals.RemoteEvent {
	kept := make([]intervals.RemoteEvent, 0, len(events))
	for _, ev := range events {
		if strings.HasPrefix(ev.ExternalID, syncer.ExternalIDPrefix) {
			kept = append(kept, ev)
		}
	}
	return kept
}
