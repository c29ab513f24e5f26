// Package newsapi searches headlines through the NewsAPI.org "everything" endpoint.
package newsapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/config"
	xhttp "YieldDesk/pkg/http"
)

const everythingPath = "/v2/everything"

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

// Client implements repository.NewsProvider.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	client   *xhttp.Client
}

var _ domrepo.NewsProvider = (*Client)(nil)

func New(cfg *config.Config, opts ...xhttp.ClientOption) *Client {
	timeout := cfg.News.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &Client{
		baseURL:  strings.TrimRight(cfg.News.BaseURL, "/"),
		apiKey:   cfg.News.APIKey,
		language: cfg.News.Language,
		client:   xhttp.NewClient(opts...),
	}
}

func (c *Client) Search(ctx context.Context, q models.NewsQuery) ([]models.Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("newsapi: no api key configured: %w", models.ErrProviderUnavailable)
	}

	params := map[string][]string{
		"q":        {q.Query},
		"pageSize": {strconv.Itoa(q.PageSize)},
		"sortBy":   {q.SortBy},
	}
	if c.language != "" {
		params["language"] = []string{c.language}
	}
	if !q.From.IsZero() {
		params["from"] = []string{q.From.String()}
	}
	if !q.To.IsZero() {
		params["to"] = []string{q.To.String()}
	}

	var resp everythingResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + everythingPath,
		Headers:     map[string]string{"X-Api-Key": c.apiKey},
		QueryParams: params,
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("newsapi: status %d: %w", se.StatusCode, models.ErrProviderUnavailable)
		}
		return nil, fmt.Errorf("newsapi: %v: %w", err, models.ErrProviderUnavailable)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi: %s %s: %w", resp.Code, resp.Message, models.ErrProviderUnavailable)
	}

	out := make([]models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		out = append(out, models.Article{
			Title:        a.Title,
			URL:          a.URL,
			Source:       a.Source.Name,
			PublishedAt:  a.PublishedAt,
			Description:  a.Description,
			ThumbnailURL: a.URLToImage,
		})
	}
	return out, nil
}
