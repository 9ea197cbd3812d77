package confluence

import (
	"context"
	"fmt"

	"github.com/ppiankov/decisync/internal/model"
)

type pageResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
}

// pageURL builds the content URL for a page with its storage body expanded
func (c *Client) pageURL(id int64) string {
	return fmt.Sprintf("%s/wiki/rest/api/content/%d?expand=body.storage", c.baseURL, id)
}

// FetchBody returns the storage-format body of a single page.
// Errors always name the page id.
func (c *Client) FetchBody(ctx context.Context, ref model.DocumentRef) (string, error) {
	var page pageResponse
	op := fmt.Sprintf("fetching page %d", ref.ID)
	if err := c.getJSON(ctx, op, c.pageURL(ref.ID), &page); err != nil {
		return "", err
	}
	return page.Body.Storage.Value, nil
}
