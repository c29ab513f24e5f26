package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/config"
	"YieldDesk/pkg/date"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.News.BaseURL = srv.URL
	cfg.News.APIKey = key
	return New(cfg)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, everythingPath, r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		q := r.URL.Query()
		assert.Equal(t, "bonds", q.Get("q"))
		assert.Equal(t, "5", q.Get("pageSize"))
		assert.Equal(t, "relevancy", q.Get("sortBy"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "2024-06-01", q.Get("from"))
		assert.False(t, q.Has("to"))

		_, _ = w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{
			"source":{"id":null,"name":"Wire"},
			"title":"Yields climb",
			"description":"Ten-year note rises",
			"url":"https://example.com/a",
			"urlToImage":"https://example.com/a.png",
			"publishedAt":"2024-06-07T14:30:00Z"
		}]}`))
	})

	got, err := c.Search(context.Background(), models.NewsQuery{
		Query: "bonds", PageSize: 5, SortBy: models.SortRelevancy, From: date.MustParse("2024-06-01"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Article{
		Title:        "Yields climb",
		URL:          "https://example.com/a",
		Source:       "Wire",
		PublishedAt:  time.Date(2024, 6, 7, 14, 30, 0, 0, time.UTC),
		Description:  "Ten-year note rises",
		ThumbnailURL: "https://example.com/a.png",
	}, got[0])
}

func TestSearchFailures(t *testing.T) {
	ctx := context.Background()
	q := models.NewsQuery{Query: "bonds", PageSize: 20, SortBy: models.SortPublishedAt}

	_, err := newTestClient(t, "", func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected without a key")
	}).Search(ctx, q)
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)

	_, err = newTestClient(t, "k", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid"}`))
	}).Search(ctx, q)
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)

	_, err = newTestClient(t, "k", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"slow down"}`))
	}).Search(ctx, q)
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
}
