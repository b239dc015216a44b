package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the GitHub API root the update check queries.
	DefaultBaseURL = "https://api.github.com"

	// requestTimeout bounds the whole API call. The check is a
	// courtesy, so it gives up quickly rather than delay the CLI.
	requestTimeout = 3 * time.Second

	// DefaultHarvestWait is how long command teardown waits for a
	// background check that has not finished yet.
	DefaultHarvestWait = 250 * time.Millisecond

	repoOwner = "rskill-dev"
	repoName  = "rskill"
)

// Release is the slice of the GitHub release object the update check
// cares about.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Version returns the release tag without its leading "v".
func (r Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// Checker queries the GitHub releases API for the newest published
// version. The zero value talks to api.github.com with a short-timeout
// client; tests point BaseURL at a local server.
type Checker struct {
	// BaseURL overrides the API root. Empty means DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the HTTP client. Empty means a client with
	// requestTimeout applied.
	HTTPClient *http.Client
}

// Latest fetches the most recent published release.
func (c *Checker) Latest(ctx context.Context) (Release, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", base, repoOwner, repoName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Release{}, fmt.Errorf("failed to build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", BaseName)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("failed to query latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("unexpected status %d from release API", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("failed to decode release response: %w", err)
	}
	if rel.TagName == "" {
		return Release{}, fmt.Errorf("release response carried no tag name")
	}
	return rel, nil
}

// CheckInBackground starts a release query without blocking and returns
// a harvest function. Calling the harvest waits up to the given
// duration and returns a release strictly newer than current, or nil
// when there is none, the check failed, or it is still running. A
// harvest that comes up empty is the silent path; the caller prints
// nothing.
func (c *Checker) CheckInBackground(ctx context.Context, current string) func(wait time.Duration) *Release {
	ch := make(chan *Release, 1)
	go func() {
		rel, err := c.Latest(ctx)
		if err != nil || !Newer(current, rel.Version()) {
			ch <- nil
			return
		}
		ch <- &rel
	}()

	return func(wait time.Duration) *Release {
		select {
		case rel := <-ch:
			return rel
		case <-time.After(wait):
			return nil
		}
	}
}

// Newer reports whether candidate is a strictly newer version than
// current. Both sides accept an optional "v" prefix; comparison is
// numeric per dotted segment with missing segments read as zero. A
// malformed version on either side disables the comparison, so an odd
// tag can never produce a false update notice.
func Newer(current, candidate string) bool {
	cur, ok := parseVersion(current)
	if !ok {
		return false
	}
	cand, ok := parseVersion(candidate)
	if !ok {
		return false
	}

	for i := 0; i < len(cur) || i < len(cand); i++ {
		a, b := 0, 0
		if i < len(cur) {
			a = cur[i]
		}
		if i < len(cand) {
			b = cand[i]
		}
		if a != b {
			return b > a
		}
	}
	return false
}

// parseVersion splits a dotted version into numeric segments.
// Pre-release and build suffixes ("1.2.3-rc.1") are ignored.
func parseVersion(s string) ([]int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" || s == "dev" {
		return nil, false
	}
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}
