package intervals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production Intervals.icu endpoint.
const DefaultBaseURL = "https://intervals.icu"

// APIError is an error response from the Intervals.icu API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client wraps the Intervals.icu REST API. Authentication is HTTP
// Basic with the literal username "API_KEY" and the athlete's key as
// the password.
type Client struct {
	baseURL    string
	athleteID  string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, athleteID, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		athleteID:  athleteID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadEvents uploads planned workout events in one bulk request.
// With upsert, events sharing an external_id update in place instead
// of duplicating.
func (c *Client) UploadEvents(events []Event, upsert bool) ([]RemoteEvent, error) {
	payload, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("encoding events: %w", err)
	}

	endpoint := c.athleteURL("events/bulk")
	if upsert {
		endpoint += "?upsert=true"
	}

	body, err := c.do(http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var created []RemoteEvent
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	return created, nil
}

// ListEvents fetches planned events between two dates, both inclusive,
// in YYYY-MM-DD form.
func (c *Client) ListEvents(oldest, newest string) ([]RemoteEvent, error) {
	query := url.Values{"oldest": {oldest}, "newest": {newest}}
	body, err := c.do(http.MethodGet, c.athleteURL("events")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var events []RemoteEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes a single planned event by its numeric ID.
func (c *Client) DeleteEvent(eventID int) error {
	_, err := c.do(http.MethodDelete, c.athleteURL(fmt.Sprintf("events/%d", eventID)), nil)
	return err
}

// GetAthlete fetches the authenticated athlete profile. Useful as a
// credentials check.
func (c *Client) GetAthlete() (*Athlete, error) {
	body, err := c.do(http.MethodGet, fmt.Sprintf("%s/api/v1/athlete/%s", c.baseURL, c.athleteID), nil)
	if err != nil {
		return nil, err
	}

	var athlete Athlete
	if err := json.Unmarshal(body, &athlete); err != nil {
		return nil, fmt.Errorf("decoding athlete: %w", err)
	}
	return &athlete, nil
}

func (c *Client) athleteURL(path string) string {
	return fmt.Sprintf("%s/api/v1/athlete/%s/%s", c.baseURL, c.athleteID, path)
}

// do issues one API request. Network failures and server errors are
// retried up to 3 times with exponential backoff; client errors return
// immediately since retrying cannot fix them.
func (c *Client) do(method, endpoint string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.SetBasicAuth("API_KEY", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		apiErr := c.apiError(resp.StatusCode, body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, apiErr
		}
		lastErr = apiErr
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

// apiError maps a failed response to an APIError, with actionable
// hints for the common credential mistakes.
func (c *Client) apiError(status int, body []byte) *APIError {
	switch status {
	case http.StatusUnauthorized:
		return &APIError{status, "unauthorized: check your API key (Settings > Developer Settings on intervals.icu)"}
	case http.StatusForbidden:
		return &APIError{status, "forbidden: your key may lack the required scope"}
	case http.StatusNotFound:
		return &APIError{status, fmt.Sprintf("not found: check your athlete ID (current %q): %s", c.athleteID, apiMessage(status, body))}
	}
	return &APIError{status, apiMessage(status, body)}
}

func apiMessage(status int, body []byte) string {
	var detail struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		if detail.Message != "" {
			return detail.Message
		}
		if detail.Error != "" {
			return detail.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
