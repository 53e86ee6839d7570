package albuminfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const lastfmBaseURL = "http://ws.audioscrobbler.com/2.0/"

// LastFMClient queries the Last.fm album.getinfo API.
type LastFMClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewLastFMClient creates a Last.fm client with the given API key.
func NewLastFMClient(apiKey string) *LastFMClient {
	return &LastFMClient{
		baseURL: lastfmBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL overrides the API base URL.
func (c *LastFMClient) SetBaseURL(u string) {
	c.baseURL = u
}

// Configured reports whether an API key is present.
func (c *LastFMClient) Configured() bool {
	return c.apiKey != ""
}

// AlbumURL returns the Last.fm album page URL for the given release, or
// empty when Last.fm doesn't know the album.
func (c *LastFMClient) AlbumURL(ctx context.Context, artist, title string) (string, error) {
	params := url.Values{}
	params.Set("method", "album.getinfo")
	params.Set("api_key", c.apiKey)
	params.Set("artist", artist)
	params.Set("album", title)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create Last.fm request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Last.fm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Last.fm returned status %d", resp.StatusCode)
	}

	var result struct {
		Album struct {
			URL string `json:"url"`
		} `json:"album"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Last.fm response: %w", err)
	}

	return result.Album.URL, nil
}
