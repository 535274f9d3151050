package http

import (
	"context"

	"nomadprices/internal/cache"
	"nomadprices/internal/core"
	"nomadprices/internal/services"
)

// Cached single-value queries share one key.
const allKey = "all"

func selectionKey(sel core.Selection) string {
	q := core.AppState{Selection: sel}.Query()
	if len(q) == 0 {
		return allKey
	}
	return q.Encode()
}

// cachedQuery serves key from c or loads it. A load that overlapped a
// submission is returned but not cached, so the next read sees the insert.
func cachedQuery[T any](m *cache.Manager, c *cache.LRUCache[T], key string, load func() (T, error)) (T, bool, error) {
	if v, found := c.Get(key); found {
		return v, true, nil
	}

	gen := m.Generation()
	v, err := load()
	if err != nil {
		return v, false, err
	}
	m.StoreIf(gen, func() { c.Set(key, v) })
	return v, false, nil
}

func (s *Server) entries(ctx context.Context, sel core.Selection) ([]core.PriceEntry, error) {
	key := selectionKey(sel)
	items, hit, err := cachedQuery(s.cacheManager, s.entriesCache, key, func() ([]core.PriceEntry, error) {
		return s.service.Entries(ctx, sel)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		s.logger.DebugContext(ctx, "Entries cache hit", "key", key, "count", len(items))
		// Return a copy to prevent external mutation
		result := make([]core.PriceEntry, len(items))
		copy(result, items)
		return result, nil
	}
	return items, nil
}

func (s *Server) averages(ctx context.Context, sel core.Selection) ([]core.LocationAverages, error) {
	key := selectionKey(sel)
	blocks, hit, err := cachedQuery(s.cacheManager, s.averagesCache, key, func() ([]core.LocationAverages, error) {
		return s.service.Averages(ctx, sel)
	})
	if hit {
		s.logger.DebugContext(ctx, "Averages cache hit", "key", key)
	}
	return blocks, err
}

func (s *Server) locations(ctx context.Context) ([]core.LocationSummary, error) {
	summaries, _, err := cachedQuery(s.cacheManager, s.locationsCache, allKey, func() ([]core.LocationSummary, error) {
		return s.service.Locations(ctx)
	})
	return summaries, err
}

func (s *Server) facets(ctx context.Context) (services.Facets, error) {
	f, _, err := cachedQuery(s.cacheManager, s.facetsCache, allKey, func() (services.Facets, error) {
		return s.service.Facets(ctx)
	})
	return f, err
}
