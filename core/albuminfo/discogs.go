package albuminfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const discogsBaseURL = "https://api.discogs.com"

// DiscogsClient queries the Discogs database search API.
type DiscogsClient struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
}

// NewDiscogsClient creates a Discogs client with the given credentials.
func NewDiscogsClient(key, secret string) *DiscogsClient {
	return &DiscogsClient{
		baseURL: discogsBaseURL,
		key:     key,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL overrides the API base URL.
func (c *DiscogsClient) SetBaseURL(u string) {
	c.baseURL = u
}

// Configured reports whether API credentials are present.
func (c *DiscogsClient) Configured() bool {
	return c.key != "" && c.secret != ""
}

// DiscogsRelease is the subset of a Discogs search result we care about.
type DiscogsRelease struct {
	CoverImage string `json:"cover_image"`
	URI        string `json:"uri"`
}

// SearchRelease looks up the first release matching "artist title".
// It returns (nil, nil) when nothing matches.
func (c *DiscogsClient) SearchRelease(ctx context.Context, artist, title string) (*DiscogsRelease, error) {
	params := url.Values{}
	params.Set("q", artist+" "+title)
	params.Set("type", "release")
	params.Set("key", c.key)
	params.Set("secret", c.secret)

	reqURL := c.baseURL + "/database/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discogs request: %w", err)
	}
	// Discogs rejects requests without an identifying User-Agent.
	req.Header.Set("User-Agent", "waxcrate/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Discogs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Discogs returned status %d", resp.StatusCode)
	}

	var result struct {
		Results []DiscogsRelease `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Discogs response: %w", err)
	}

	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}
