package intervals

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestUploadEvents verifies the bulk upload request shape: path,
// upsert flag, basic auth, and JSON body.
func TestUploadEvents(t *testing.T) {
	var gotPath, gotQuery, gotUser, gotPass string
	var gotEvents []Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, gotPass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&gotEvents); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write([]byte(`[{"id": 101, "name": "Tempo Run"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "i12345", "secret")
	created, err := client.UploadEvents([]Event{{
		Category:       "WORKOUT",
		StartDateLocal: "2026-04-01T00:00:00",
		Type:           "Run",
		Name:           "Tempo Run",
		Description:    "- 5.00mi 8:40/mi Pace",
		MovingTime:     2600,
		Target:         "PACE",
	}}, true)
	if err != nil {
		t.Fatalf("UploadEvents returned error: %v", err)
	}

	if gotPath != "/api/v1/athlete/i12345/events/bulk" {
		t.Errorf("path = %q, want %q", gotPath, "/api/v1/athlete/i12345/events/bulk")
	}
	if gotQuery != "upsert=true" {
		t.Errorf("query = %q, want %q", gotQuery, "upsert=true")
	}
	if gotUser != "API_KEY" || gotPass != "secret" {
		t.Errorf("auth = %q/%q, want API_KEY/secret", gotUser, gotPass)
	}
	if len(gotEvents) != 1 || gotEvents[0].Name != "Tempo Run" {
		t.Errorf("uploaded events = %+v, want one Tempo Run", gotEvents)
	}
	if len(created) != 1 || created[0].ID != 101 {
		t.Errorf("created = %+v, want one event with ID 101", created)
	}
}

// TestListEvents verifies the date-range query and response decoding.
func TestListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/athlete/i0/events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("oldest"); got != "2026-04-01" {
			t.Errorf("oldest = %q, want 2026-04-01", got)
		}
		if got := r.URL.Query().Get("newest"); got != "2026-04-30" {
			t.Errorf("newest = %q, want 2026-04-30", got)
		}
		w.Write([]byte(`[
			{"id": 1, "start_date_local": "2026-04-02T00:00:00", "name": "Intervals", "category": "WORKOUT", "external_id": "runna-a@runna.com"},
			{"id": 2, "start_date_local": "2026-04-05T00:00:00", "name": "Long Run", "category": "WORKOUT", "external_id": "runna-b@runna.com"}
		]`))
	}))
	defer srv.Close()

	events, err := NewClient(srv.URL, "i0", "secret").ListEvents("2026-04-01", "2026-04-30")
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[1].ExternalID != "runna-b@runna.com" {
		t.Errorf("ExternalID = %q, want %q", events[1].ExternalID, "runna-b@runna.com")
	}
}

// TestDeleteEvent verifies the delete request method and path.
func TestDeleteEvent(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, "i0", "secret").DeleteEvent(42); err != nil {
		t.Fatalf("DeleteEvent returned error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if gotPath != "/api/v1/athlete/i0/events/42" {
		t.Errorf("path = %q, want %q", gotPath, "/api/v1/athlete/i0/events/42")
	}
}

// TestUnauthorizedNotRetried verifies that a 401 fails immediately
// with the API-key hint instead of burning retries.
func TestUnauthorizedNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "i0", "wrong").ListEvents("2026-04-01", "2026-04-30")
	if err == nil {
		t.Fatal("ListEvents returned nil error, want 401")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "check your API key") {
		t.Errorf("Message = %q, want API-key hint", apiErr.Message)
	}
}

// TestServerErrorRetried verifies that 5xx responses are retried until
// the API recovers.
func TestServerErrorRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	events, err := NewClient(srv.URL, "i0", "secret").ListEvents("2026-04-01", "2026-04-30")
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

// TestNotFoundHint verifies that a 404 names the athlete ID and
// carries the API's own message.
func TestNotFoundHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "no such athlete"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "i99", "secret").GetAthlete()
	if err == nil {
		t.Fatal("GetAthlete returned nil error, want 404")
	}
	if !strings.Contains(err.Error(), `"i99"`) {
		t.Errorf("err = %v, want athlete ID in message", err)
	}
	if !strings.Contains(err.Error(), "no such athlete") {
		t.Errorf("err = %v, want API message included", err)
	}
}
