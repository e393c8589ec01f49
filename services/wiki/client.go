package wiki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/learning"
)

const maxBodySize = 1 << 20

type summary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	Description string `json:"description"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Client reads page summaries from the Wikipedia REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ learning.Source = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{baseURL: conf.WikiBaseURL, http: &http.Client{Timeout: conf.LearningTimeout}}
}

func (c *Client) Summary(ctx context.Context, topic string) (*learning.Article, error) {
	path := "/page/summary/" + url.PathEscape(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("GET %s: failed: %d", path, res.StatusCode)
	}

	var s summary
	if err = json.NewDecoder(io.LimitReader(res.Body, maxBodySize)).Decode(&s); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return &learning.Article{
		Title:       s.Title,
		Extract:     s.Extract,
		Description: s.Description,
		URL:         s.ContentURLs.Desktop.Page,
	}, nil
}
