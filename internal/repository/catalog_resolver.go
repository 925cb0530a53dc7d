package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// CatalogResolver loads activity and provider details for a set of ids. Cache misses are
// fetched in parallel batches no larger than the store's membership-query limit.
type CatalogResolver struct {
	catalog   CatalogRepository
	cache     ActivityCache
	batchSize int
	logger    *zap.Logger
}

// NewCatalogResolver creates a resolver. cache may be nil.
func NewCatalogResolver(catalog CatalogRepository, cache ActivityCache, batchSize int, logger *zap.Logger) *CatalogResolver {
	if batchSize <= 0 || batchSize > MaxQueryInValues {
		batchSize = MaxQueryInValues
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogResolver{catalog: catalog, cache: cache, batchSize: batchSize, logger: logger}
}

// Activities resolves activity ids. Ids absent from the catalog are absent from the map.
func (r *CatalogResolver) Activities(ctx context.Context, ids []string) (map[string]domain.Activity, error) {
	return resolveBatched(ctx, r, CacheKindActivity, ids, r.catalog.FindActivities,
		func(a domain.Activity) string { return a.ActivityID })
}

// Providers resolves provider ids. Ids absent from the catalog are absent from the map.
func (r *CatalogResolver) Providers(ctx context.Context, ids []string) (map[string]domain.Provider, error) {
	return resolveBatched(ctx, r, CacheKindProvider, ids, r.catalog.FindProviders,
		func(p domain.Provider) string { return p.ProviderID })
}

// Invalidate drops a cached catalog entry after it was written.
func (r *CatalogResolver) Invalidate(ctx context.Context, kind, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, kind, id); err != nil {
		r.logger.Warn("catalog cache invalidation failed", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
	}
}

func resolveBatched[T any](
	ctx context.Context,
	r *CatalogResolver,
	kind string,
	ids []string,
	fetch func(context.Context, []string) ([]T, error),
	idOf func(T) string,
) (map[string]T, error) {
	wanted := uniqueIDs(ids)
	out := make(map[string]T, len(wanted))
	if len(wanted) == 0 {
		return out, nil
	}

	missing := wanted
	if r.cache != nil {
		cached, err := r.cache.GetMany(ctx, kind, wanted)
		if err != nil {
			r.logger.Warn("catalog cache read failed", zap.String("kind", kind), zap.Error(err))
		}
		missing = make([]string, 0, len(wanted))
		for _, id := range wanted {
			payload, ok := cached[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			var v T
			if err := json.Unmarshal(payload, &v); err != nil {
				missing = append(missing, id)
				continue
			}
			out[id] = v
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	batches := chunkIDs(missing, r.batchSize)
	results := make([][]T, len(batches))

	// each goroutine owns one slot of results
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			found, err := fetch(gctx, batch)
			if err != nil {
				return fmt.Errorf("load %s batch: %w", kind, err)
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fresh := map[string][]byte{}
	for _, batch := range results {
		for _, v := range batch {
			id := idOf(v)
			out[id] = v
			if payload, err := json.Marshal(v); err == nil {
				fresh[id] = payload
			}
		}
	}
	if r.cache != nil && len(fresh) > 0 {
		if err := r.cache.SetMany(ctx, kind, fresh); err != nil {
			r.logger.Warn("catalog cache write failed", zap.String("kind", kind), zap.Error(err))
		}
	}

	r.logger.Debug("catalog resolved",
		zap.String("kind", kind),
		zap.Int("requested", len(wanted)),
		zap.Int("fetched", len(missing)),
		zap.Int("batches", len(batches)),
	)
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunkIDs(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
