package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/internal/domain/models"
	svccache "YieldDesk/internal/service/cache"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
	"YieldDesk/pkg/metrics"
)

type fakeNews struct {
	articles []models.Article
	err      error
	calls    int
	last     models.NewsQuery
}

func (f *fakeNews) Search(_ context.Context, q models.NewsQuery) ([]models.Article, error) {
	f.calls++
	f.last = q
	return f.articles, f.err
}

func newNews(p *fakeNews) *NewsUseCase {
	return NewNewsUseCase(p, svccache.NewTTLCache(8), time.Minute, "treasury yields", metrics.Nop{}, logger.NewNop())
}

func TestNewsQueryDefaults(t *testing.T) {
	uc := newNews(&fakeNews{})

	q, err := uc.Query(models.NewsRequest{Query: "  "})
	require.NoError(t, err)
	assert.Equal(t, models.NewsQuery{Query: "treasury yields", PageSize: 20, SortBy: models.SortPublishedAt}, q)
}

func TestNewsQueryValidation(t *testing.T) {
	uc := newNews(&fakeNews{})

	for name, req := range map[string]models.NewsRequest{
		"page size":  {PageSize: 101},
		"sort order": {SortBy: "oldest"},
		"bounds":     {From: date.MustParse("2024-06-10"), To: date.MustParse("2024-06-01")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Query(req)
			assert.ErrorIs(t, err, models.ErrInvalidDateRange)
		})
	}
}

func TestNewsSearchCaches(t *testing.T) {
	p := &fakeNews{articles: []models.Article{{Title: "Yields climb", URL: "https://example.com/a", Source: "Wire"}}}
	uc := newNews(p)
	ctx := context.Background()

	first, err := uc.Search(ctx, models.NewsRequest{Query: "bonds"})
	require.NoError(t, err)
	second, err := uc.Search(ctx, models.NewsRequest{Query: "bonds"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, first.Articles, second.Articles)
	assert.Equal(t, "bonds", p.last.Query)
	assert.False(t, second.Unavailable)
}

func TestNewsSearchProviderFailure(t *testing.T) {
	uc := newNews(&fakeNews{err: errors.New("rate limited")})

	res, err := uc.Search(context.Background(), models.NewsRequest{})
	require.NoError(t, err)
	assert.True(t, res.Unavailable)
	assert.NotNil(t, res.Articles)
	assert.Empty(t, res.Articles)
}
