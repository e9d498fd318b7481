package recipe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Importer fetches recipe pages. One bounded retry for transient network
// errors, then report failure; never retry indefinitely.
type Importer struct {
	httpClient *http.Client
}

func NewImporter() *Importer {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	return &Importer{httpClient: rc.StandardClient()}
}

// Import fetches the URL and extracts its ingredient lines.
func (i *Importer) Import(ctx context.Context, rawURL string) (*Recipe, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, ErrInvalidURL
	}
	req.Header.Set("User-Agent", "pantrybot/1.0 (+grocery list import)")
	req.Header.Set("Accept", "text/html")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	recipe, err := extract(resp.Body)
	if err != nil {
		return nil, &ParseError{URL: rawURL, Reason: err.Error()}
	}
	if len(recipe.Ingredients) == 0 {
		return nil, &ParseError{URL: rawURL, Reason: "page has no recipe markup"}
	}
	return recipe, nil
}
