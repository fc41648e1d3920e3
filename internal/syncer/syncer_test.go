package syncer

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/runna"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func testICS() string {
	return crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Runna//EN",
		"BEGIN:VEVENT",
		"UID:a@runna.com",
		"DTSTART;VALUE=DATE:20260401",
		"SUMMARY:🏃 Intervals • 3mi",
		`DESCRIPTION:1mi at 8:00/mi\, 60s walking rest\n\n2mi at 7:00/mi`,
		"X-WORKOUT-ESTIMATED-DURATION:2400",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b@runna.com",
		"DTSTART;VALUE=DATE:20260510",
		"SUMMARY:🏃 Long Run • 10km",
		"DESCRIPTION:10km at 5:00/km",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:c@runna.com",
		"DTSTART;VALUE=DATE:20260520",
		"SUMMARY:🧘 Rest Day",
		"DESCRIPTION:Rest day! No running today.",
		"END:VEVENT",
		"END:VCALENDAR",
	)
}

type fakeFeed struct {
	ics string
}

func (f *fakeFeed) Fetch(url string) (string, error) {
	return f.ics, nil
}

type fakeUploader struct {
	calls int
	got   [][]intervals.Event
}

func (u *fakeUploader) UploadEvents(events []intervals.Event, upsert bool) ([]intervals.RemoteEvent, error) {
	u.calls++
	u.got = append(u.got, events)
	remote := make([]intervals.RemoteEvent, len(events))
	for i, ev := range events {
		remote[i] = intervals.RemoteEvent{ID: i + 1, Name: ev.Name, ExternalID: ev.ExternalID}
	}
	return remote, nil
}

type fakeJournal struct {
	rows   map[string]string
	states map[string]string
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{rows: map[string]string{}, states: map[string]string{}}
}

func (j *fakeJournal) IsCurrent(externalID, hash string) (bool, error) {
	return j.rows[externalID] == hash, nil
}

func (j *fakeJournal) MarkSynced(externalID, workoutDate, name, hash string) error {
	j.rows[externalID] = hash
	return nil
}

func (j *fakeJournal) SetSyncState(key, value string) error {
	j.states[key] = value
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	return Options{
		ICSURL:        "https://cal.runna.com/test.ics",
		Units:         runna.UnitKm,
		EasyPaceSecMi: 520,
	}
}

// TestRunUploadsAndJournals verifies a first sync: parseable workouts
// upload in one bulk call, the rest-day event is recorded as skipped,
// and the journal remembers each payload.
func TestRunUploadsAndJournals(t *testing.T) {
	uploader := &fakeUploader{}
	journal := newFakeJournal()
	s := New(&fakeFeed{ics: testICS()}, uploader, journal, testLogger())

	plan, stats, err := s.Run(testOptions())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if stats.FeedEvents != 3 {
		t.Errorf("FeedEvents = %d, want 3", stats.FeedEvents)
	}
	if stats.Planned != 2 {
		t.Errorf("Planned = %d, want 2", stats.Planned)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.Uploaded != 2 {
		t.Errorf("Uploaded = %d, want 2", stats.Uploaded)
	}

	if uploader.calls != 1 {
		t.Fatalf("uploader.calls = %d, want 1 bulk call", uploader.calls)
	}
	if len(uploader.got[0]) != 2 {
		t.Errorf("bulk size = %d, want 2", len(uploader.got[0]))
	}

	if len(plan.Skipped) != 1 || plan.Skipped[0].Name != "Rest Day" {
		t.Errorf("Skipped = %+v, want the rest day", plan.Skipped)
	}

	if _, ok := journal.rows["runna-a@runna.com"]; !ok {
		t.Error("journal missing runna-a@runna.com")
	}
	if journal.states[LastSyncAtKey] == "" {
		t.Error("last_sync_at not recorded")
	}
	if !strings.Contains(journal.states[LastSyncSummaryKey], "2 uploaded") {
		t.Errorf("summary = %q, want upload count", journal.states[LastSyncSummaryKey])
	}
}

// TestRunSecondPassUnchanged verifies that an immediate re-run uploads
// nothing because every payload hash is already journaled.
func TestRunSecondPassUnchanged(t *testing.T) {
	uploader := &fakeUploader{}
	journal := newFakeJournal()
	s := New(&fakeFeed{ics: testICS()}, uploader, journal, testLogger())

	if _, _, err := s.Run(testOptions()); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	_, stats, err := s.Run(testOptions())
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	if stats.Uploaded != 0 {
		t.Errorf("Uploaded = %d, want 0", stats.Uploaded)
	}
	if stats.Unchanged != 2 {
		t.Errorf("Unchanged = %d, want 2", stats.Unchanged)
	}
	if uploader.calls != 1 {
		t.Errorf("uploader.calls = %d, want 1", uploader.calls)
	}
}

// TestRunForceReuploads verifies that force bypasses the journal.
func TestRunForceReuploads(t *testing.T) {
	uploader := &fakeUploader{}
	journal := newFakeJournal()
	s := New(&fakeFeed{ics: testICS()}, uploader, journal, testLogger())

	if _, _, err := s.Run(testOptions()); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}

	opts := testOptions()
	opts.Force = true
	_, stats, err := s.Run(opts)
	if err != nil {
		t.Fatalf("forced Run returned error: %v", err)
	}

	if stats.Uploaded != 2 {
		t.Errorf("Uploaded = %d, want 2", stats.Uploaded)
	}
	if uploader.calls != 2 {
		t.Errorf("uploader.calls = %d, want 2", uploader.calls)
	}
}

// TestRunDryRun verifies that dry runs plan without uploading or
// journaling.
func TestRunDryRun(t *testing.T) {
	uploader := &fakeUploader{}
	journal := newFakeJournal()
	s := New(&fakeFeed{ics: testICS()}, uploader, journal, testLogger())

	opts := testOptions()
	opts.DryRun = true
	plan, stats, err := s.Run(opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if uploader.calls != 0 {
		t.Errorf("uploader.calls = %d, want 0", uploader.calls)
	}
	if stats.Planned != 2 || stats.Uploaded != 0 {
		t.Errorf("stats = %+v, want 2 planned, 0 uploaded", stats)
	}
	if len(plan.Events) != 2 {
		t.Errorf("len(plan.Events) = %d, want 2", len(plan.Events))
	}
	if len(journal.rows) != 0 {
		t.Errorf("journal rows = %v, want none", journal.rows)
	}
}

// TestPlanDateFilter verifies inclusive date bounds.
func TestPlanDateFilter(t *testing.T) {
	s := New(&fakeFeed{ics: testICS()}, &fakeUploader{}, newFakeJournal(), testLogger())

	opts := testOptions()
	opts.StartDate = "2026-05-10"
	opts.EndDate = "2026-05-10"
	plan, err := s.Plan(opts)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if plan.InRange != 1 {
		t.Errorf("InRange = %d, want 1", plan.InRange)
	}
	if len(plan.Events) != 1 || plan.Events[0].Event.Name != "Long Run" {
		t.Errorf("Events = %+v, want only the Long Run", plan.Events)
	}
}

// TestPlanLimit verifies the event cap.
func TestPlanLimit(t *testing.T) {
	s := New(&fakeFeed{ics: testICS()}, &fakeUploader{}, newFakeJournal(), testLogger())

	opts := testOptions()
	opts.Limit = 1
	plan, err := s.Plan(opts)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if len(plan.Events) != 1 {
		t.Errorf("len(plan.Events) = %d, want 1", len(plan.Events))
	}
	if plan.Events[0].Event.Name != "Intervals" {
		t.Errorf("Name = %q, want first feed event", plan.Events[0].Event.Name)
	}
}

// TestPlanCollectsWarnings verifies that partial-parse warnings ride
// along with their event.
func TestPlanCollectsWarnings(t *testing.T) {
	ics := crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Runna//EN",
		"BEGIN:VEVENT",
		"UID:d@runna.com",
		"DTSTART;VALUE=DATE:20260601",
		"SUMMARY:🏃 Progression",
		`DESCRIPTION:1mi at a steady pace\n\n1mi at 7:00/mi`,
		"END:VEVENT",
		"END:VCALENDAR",
	)
	s := New(&fakeFeed{ics: ics}, &fakeUploader{}, newFakeJournal(), testLogger())

	plan, err := s.Plan(testOptions())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(plan.Events) != 1 {
		t.Fatalf("len(plan.Events) = %d, want 1", len(plan.Events))
	}
	warnings := plan.Events[0].Warnings
	if len(warnings) != 1 || warnings[0].Kind != runna.WarnUnknownEffortLabel {
		t.Errorf("Warnings = %v, want one unknown effort label", warnings)
	}
}

// TestPayloadHashStable verifies that the journal fingerprint only
// moves when the payload does.
func TestPayloadHashStable(t *testing.T) {
	ev := intervals.Event{
		Category:       "WORKOUT",
		StartDateLocal: "2026-04-01T00:00:00",
		Type:           "Run",
		Name:           "Tempo",
		Description:    "- 3.22km 4:40/km Pace",
		MovingTime:     1800,
	}

	if payloadHash(ev) != payloadHash(ev) {
		t.Error("hash differs for identical payloads")
	}

	changed := ev
	changed.Description = "- 3.22km 4:30/km Pace"
	if payloadHash(ev) == payloadHash(changed) {
		t.Error("hash identical for different payloads")
	}
}
