package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	svccache "YieldDesk/internal/service/cache"
	"YieldDesk/pkg/cache"
	"YieldDesk/pkg/logger"
)

// NewsUseCase passes news searches through to the provider. Provider
// failures produce an empty, unavailable result rather than an error.
type NewsUseCase struct {
	provider     domrepo.NewsProvider
	cache        svccache.BytesCache
	ttl          time.Duration
	defaultQuery string
	metrics      domrepo.Metrics
	log          *logger.Logger
}

func NewNewsUseCase(provider domrepo.NewsProvider, c svccache.BytesCache, ttl time.Duration, defaultQuery string, metrics domrepo.Metrics, log *logger.Logger) *NewsUseCase {
	return &NewsUseCase{
		provider:     provider,
		cache:        c,
		ttl:          ttl,
		defaultQuery: defaultQuery,
		metrics:      metrics,
		log:          log,
	}
}

// Query turns a request into a validated query, applying defaults.
func (uc *NewsUseCase) Query(req models.NewsRequest) (models.NewsQuery, error) {
	q := models.NewsQuery{
		Query:    strings.TrimSpace(req.Query),
		PageSize: req.PageSize,
		SortBy:   req.SortBy,
		From:     req.From,
		To:       req.To,
	}
	if q.Query == "" {
		q.Query = uc.defaultQuery
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}
	if q.SortBy == "" {
		q.SortBy = models.SortPublishedAt
	}

	if q.PageSize < 1 || q.PageSize > 100 {
		return q, fmt.Errorf("%w: page_size %d outside 1..100", models.ErrInvalidDateRange, q.PageSize)
	}
	switch q.SortBy {
	case models.SortPublishedAt, models.SortRelevancy, models.SortPopularity:
	default:
		return q, fmt.Errorf("%w: unknown sort order %q", models.ErrInvalidDateRange, q.SortBy)
	}
	if !q.From.IsZero() && !q.To.IsZero() && !q.From.Before(q.To) {
		return q, fmt.Errorf("%w: from %s must precede to %s", models.ErrInvalidDateRange, q.From, q.To)
	}
	return q, nil
}

func (uc *NewsUseCase) Search(ctx context.Context, req models.NewsRequest) (*models.NewsResult, error) {
	q, err := uc.Query(req)
	if err != nil {
		return nil, err
	}
	res := &models.NewsResult{Query: q, Articles: []models.Article{}}

	key := cache.GenerateKeyWithParams("news", cache.HashKey(q.Query), q.PageSize, q.SortBy, q.From, q.To)
	if b, ok, err := uc.cache.GetBytes(ctx, key); err != nil {
		uc.log.Warn("news cache read failed", logger.Error(err))
	} else if ok && json.Unmarshal(b, &res.Articles) == nil {
		return res, nil
	}

	start := time.Now()
	articles, err := uc.provider.Search(ctx, q)
	uc.metrics.RecordLatency("news_search", time.Since(start).Seconds())
	if err != nil {
		uc.metrics.RecordError("news_provider")
		uc.log.Warn("news provider unavailable", logger.String("query", q.Query), logger.Error(err))
		res.Unavailable = true
		return res, nil
	}
	res.Articles = append(res.Articles, articles...)

	if b, err := json.Marshal(res.Articles); err == nil {
		if err := uc.cache.SetBytes(ctx, key, b, uc.ttl); err != nil {
			uc.log.Warn("news cache write failed", logger.Error(err))
		}
	}
	return res, nil
}
