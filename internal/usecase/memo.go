package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	domrepo "YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/cache"
	"YieldDesk/pkg/logger"
)

// Memo is the process-wide table of computed results keyed by the exact
// request tuple. A nil *Memo disables memoization.
type Memo struct {
	store   cache.Service
	ttl     time.Duration
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewMemo(store cache.Service, ttl time.Duration, metrics domrepo.Metrics, log *logger.Logger) *Memo {
	return &Memo{store: store, ttl: ttl, metrics: metrics, log: log}
}

func memoKey(op string, labels []string, parts ...interface{}) string {
	params := append([]interface{}{cache.HashKey(strings.Join(labels, "\x1f"))}, parts...)
	return cache.GenerateKeyWithParams("memo:"+op, params...)
}

func (m *Memo) get(ctx context.Context, op, key string, dest interface{}) bool {
	if m == nil {
		return false
	}
	err := m.store.Get(ctx, key, dest)
	m.metrics.RecordMemo(op, err == nil)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		m.log.Warn("memo read failed", logger.String("key", key), logger.Error(err))
	}
	return err == nil
}

func (m *Memo) put(ctx context.Context, key string, value interface{}) {
	if m == nil {
		return
	}
	if err := m.store.Set(ctx, key, value, m.ttl); err != nil {
		m.log.Warn("memo write failed", logger.String("key", key), logger.Error(err))
	}
}

// Purge drops every memoized result.
func (m *Memo) Purge(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.store.Purge(ctx)
}
