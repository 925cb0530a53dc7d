package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/tourism-service/internal/domain"
)

func TestMemoryStoreGetSetUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	_, ok, err := store.Get(ctx, "things", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "things", "a", Document{"name": "first", "count": 1}))
	require.NoError(t, store.Update(ctx, "things", "a", Document{"count": 2, "extra": true}))

	doc, ok, err := store.Get(ctx, "things", "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", doc["name"])
	assert.Equal(t, float64(2), doc["count"])
	assert.Equal(t, true, doc["extra"])

	err = store.Update(ctx, "things", "ghost", Document{"x": 1})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	original := Document{"tags": []any{"a"}}
	require.NoError(t, store.Set(ctx, "things", "a", original))

	original["tags"] = []any{"mutated"}
	doc, _, err := store.Get(ctx, "things", "a")
	require.NoError(t, err)
	doc["tags"] = []any{"also mutated"}

	again, _, err := store.Get(ctx, "things", "a")
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, again["tags"])
}

func TestMemoryStoreQueries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	for i := 0; i < 5; i++ {
		company := "c1"
		if i%2 == 1 {
			company = "c2"
		}
		require.NoError(t, store.Set(ctx, "tickets", fmt.Sprintf("t%d", i), Document{"company_id": company, "n": i}))
	}

	docs, err := store.QueryEquals(ctx, "tickets", "company_id", "c1")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, float64(0), docs[0]["n"])
	assert.Equal(t, float64(4), docs[2]["n"])

	docs, err = store.QueryEquals(ctx, "tickets", "n", 3)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	docs, err = store.QueryIn(ctx, "tickets", DocumentIDField, []string{"t1", "t3", "nope"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = store.QueryIn(ctx, "tickets", "company_id", []string{"c2"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	all, err := store.List(ctx, "tickets")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestQueryInLimit(t *testing.T) {
	ids := make([]string, MaxQueryInValues+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}

	_, err := NewMemoryDocumentStore().QueryIn(context.Background(), "things", DocumentIDField, ids)
	assert.ErrorIs(t, err, ErrQueryInLimit)

	// the limit is checked before the pool is touched
	_, err = NewPostgresDocumentStore(nil, 3, nil).QueryIn(context.Background(), "things", DocumentIDField, ids)
	assert.ErrorIs(t, err, ErrQueryInLimit)
}

func TestMemoryStoreArrayUnion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	require.NoError(t, store.Set(ctx, "companies", "c1", Document{"ticket": []any{}}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.ArrayUnion(ctx, "companies", "c1", "ticket", fmt.Sprintf("t%d", i%10)))
		}(i)
	}
	wg.Wait()

	doc, _, err := store.Get(ctx, "companies", "c1")
	require.NoError(t, err)
	assert.Len(t, doc["ticket"], 10)

	assert.ErrorIs(t, store.ArrayUnion(ctx, "companies", "ghost", "ticket", "t1"), ErrDocumentNotFound)
}

func TestMemoryTransactionDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	boom := errors.New("boom")

	err := store.RunTransaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.Set(ctx, "counters", "2025", Document{"last_number": 1}))
		doc, ok, err := tx.Get(ctx, "counters", "2025")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, float64(1), doc["last_number"])
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok, err := store.Get(ctx, "counters", "2025")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCounterAllocatesGapFreeUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	counters := NewCounterRepository(store)

	const n = 25
	got := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seq, err := counters.Next(ctx, 2025)
			assert.NoError(t, err)
			got[i] = seq
		}(i)
	}
	wg.Wait()

	sort.Ints(got)
	for i, seq := range got {
		assert.Equal(t, i+1, seq)
	}

	next, err := counters.Next(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestCounterContinuesFromStoredValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	require.NoError(t, store.Set(ctx, CollectionCounters, "2025", Document{"year": 2025, "last_number": 7}))

	next, err := NewCounterRepository(store).Next(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 8, next)
	assert.Equal(t, "TOURISM-0008-2025", domain.FormatCertificateID(next, 2025))
}

func TestTicketRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	tickets := NewTicketRepository(store)

	id, err := tickets.Add(ctx, domain.NewTicket(domain.Ticket{CompanyID: "c1", Name: "Juan"}))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, ok, err := tickets.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, stored.TicketID)

	require.NoError(t, tickets.SetID(ctx, id))
	stored, _, err = tickets.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, stored.TicketID)

	stored.Accommodation = "Seaside Inn"
	require.NoError(t, tickets.Save(ctx, *stored))

	list, err := tickets.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Seaside Inn", list[0].Accommodation)

	assert.Error(t, tickets.Save(ctx, domain.Ticket{}))
}

func TestAccountLookupIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountRepository(NewMemoryDocumentStore())
	account := &domain.Account{Email: " Owner@Example.com ", Role: domain.RoleCompany}
	require.NoError(t, accounts.Create(ctx, account))
	require.NotEmpty(t, account.UID)

	found, ok, err := accounts.FindByEmail(ctx, "owner@example.COM")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, account.UID, found.UID)
}

type countingCatalog struct {
	CatalogRepository
	mu      sync.Mutex
	batches [][]string
}

func (c *countingCatalog) FindActivities(ctx context.Context, ids []string) ([]domain.Activity, error) {
	c.mu.Lock()
	c.batches = append(c.batches, append([]string(nil), ids...))
	c.mu.Unlock()
	return c.CatalogRepository.FindActivities(ctx, ids)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: map[string][]byte{}} }

func (m *memoryCache) GetMany(_ context.Context, kind string, ids []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]byte{}
	for _, id := range ids {
		if v, ok := m.entries[kind+":"+id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *memoryCache) SetMany(_ context.Context, kind string, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range values {
		m.entries[kind+":"+id] = v
	}
	return nil
}

func (m *memoryCache) Delete(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, kind+":"+id)
	return nil
}

func seedActivities(t *testing.T, catalog CatalogRepository, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		activity := &domain.Activity{
			ActivityID:       fmt.Sprintf("act-%02d", i),
			ActivityName:     fmt.Sprintf("Activity %d", i),
			ActivityDuration: domain.NumericFromInt(30),
		}
		require.NoError(t, catalog.SaveActivity(context.Background(), activity))
		ids[i] = activity.ActivityID
	}
	return ids
}

func TestResolverBatchesAndCaches(t *testing.T) {
	ctx := context.Background()
	catalog := &countingCatalog{CatalogRepository: NewCatalogRepository(NewMemoryDocumentStore())}
	ids := seedActivities(t, catalog, 23)
	cache := newMemoryCache()
	resolver := NewCatalogResolver(catalog, cache, 10, zaptest.NewLogger(t))

	requested := append(append([]string{}, ids...), "ghost", ids[0], " ")
	got, err := resolver.Activities(ctx, requested)
	require.NoError(t, err)
	assert.Len(t, got, 23)
	assert.Equal(t, "Activity 5", got["act-05"].ActivityName)

	require.Len(t, catalog.batches, 3)
	for _, batch := range catalog.batches {
		assert.LessOrEqual(t, len(batch), MaxQueryInValues)
	}

	catalog.batches = nil
	again, err := resolver.Activities(ctx, ids[:5])
	require.NoError(t, err)
	assert.Len(t, again, 5)
	assert.Empty(t, catalog.batches)

	resolver.Invalidate(ctx, CacheKindActivity, ids[0])
	_, err = resolver.Activities(ctx, ids[:5])
	require.NoError(t, err)
	require.Len(t, catalog.batches, 1)
	assert.Equal(t, []string{ids[0]}, catalog.batches[0])
}

func TestResolverWithoutCache(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogRepository(NewMemoryDocumentStore())
	provider := &domain.Provider{ProviderName: "Island Boats"}
	require.NoError(t, catalog.SaveProvider(ctx, provider))

	resolver := NewCatalogResolver(catalog, nil, 0, nil)
	got, err := resolver.Providers(ctx, []string{provider.ProviderID, "ghost"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Island Boats", got[provider.ProviderID].ProviderName)

	empty, err := resolver.Providers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChunkIDs(t *testing.T) {
	chunks := chunkIDs([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunks)
	assert.Empty(t, chunkIDs(nil, 10))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isRetryable(errors.New("network down")))
}

func TestNilRedisCacheNeverHits(t *testing.T) {
	var cache *RedisActivityCache
	got, err := cache.GetMany(context.Background(), CacheKindActivity, []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, cache.SetMany(context.Background(), CacheKindActivity, map[string][]byte{"a": []byte("{}")}))
	assert.NoError(t, NewRedisActivityCache(nil, 0).Delete(context.Background(), CacheKindActivity, "a"))
}
