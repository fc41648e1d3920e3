package feed

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches a Runna ICS calendar feed over HTTP.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch retrieves the raw ICS text from the feed URL.
// Retries up to 3 times with exponential backoff on failure.
func (c *Client) Fetch(url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		resp, err := c.httpClient.Get(url)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return string(body), nil
		}
		lastErr = fmt.Errorf("feed request failed (status %d)", resp.StatusCode)
	}

	return "", fmt.Errorf("after 3 attempts: %w", lastErr)
}
