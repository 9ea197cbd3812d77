package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ppiankov/decisync/internal/model"
	"go.uber.org/zap"
)

type searchResponse struct {
	Results []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
	Start     int  `json:"start"`
	Limit     int  `json:"limit"`
	Size      int  `json:"size"`
	TotalSize *int `json:"totalSize"`
	Links     struct {
		Next string `json:"next"`
	} `json:"_links"`
}

// more reports whether another page should be requested after offset.
// Either signal ends discovery: a missing next link, or a reported total
// that offset has reached. An empty page always stops.
func (r *searchResponse) more(offset int) bool {
	if len(r.Results) == 0 || r.Links.Next == "" {
		return false
	}
	return r.TotalSize == nil || offset < *r.TotalSize
}

// searchURL builds the CQL search URL for one page of results
func (c *Client) searchURL(root int64, start int) string {
	q := url.Values{}
	q.Set("cql", fmt.Sprintf("ancestor=%d AND type=%s", root, c.pageType))
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("start", strconv.Itoa(start))
	return c.baseURL + "/wiki/rest/api/content/search?" + q.Encode()
}

// DiscoverAll returns every page below root in the store's natural order.
// Pagination is sequential; any failed page aborts discovery.
func (c *Client) DiscoverAll(ctx context.Context, root int64) ([]model.DocumentRef, error) {
	var refs []model.DocumentRef
	start := 0

	for {
		var page searchResponse
		op := fmt.Sprintf("fetching page list (start=%d)", start)
		if err := c.getJSON(ctx, op, c.searchURL(root, start), &page); err != nil {
			return nil, err
		}

		for _, r := range page.Results {
			id, err := strconv.ParseInt(r.ID, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse page id %q: %w", r.ID, err)
			}
			refs = append(refs, model.DocumentRef{ID: id, Title: r.Title})
		}

		size := page.Size
		if size == 0 {
			size = len(page.Results)
		}
		start += size

		c.logger.Info("discovered page batch",
			zap.Int("results", size),
			zap.Int("collected", len(refs)))

		if !page.more(start) {
			return refs, nil
		}
	}
}
