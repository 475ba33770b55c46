package redis

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

type fakeStore struct {
	items   map[string][]domain.Item
	sources map[string]map[string]domain.Source
	getErr  error
	setErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:   make(map[string][]domain.Item),
		sources: make(map[string]map[string]domain.Source),
	}
}

func (f *fakeStore) GetItems(_ context.Context, origin string) ([]domain.Item, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	items, ok := f.items[origin]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return items, nil
}

func (f *fakeStore) SetItems(_ context.Context, origin string, items []domain.Item) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.items[origin] = items
	return nil
}

func (f *fakeStore) GetSources(_ context.Context, origin string) (map[string]domain.Source, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	sources, ok := f.sources[origin]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sources, nil
}

func (f *fakeStore) SetSources(_ context.Context, origin string, sources map[string]domain.Source) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sources[origin] = sources
	return nil
}

type fakeProvider struct {
	calls int
	err   error
}

func (f *fakeProvider) Items(context.Context) ([]domain.Item, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Item{{ID: "i1", Name: "Item One", Price: 2.5}}, nil
}

func (f *fakeProvider) Sources(context.Context) (map[string]domain.Source, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return map[string]domain.Source{"c1": {ID: "c1", Type: "case"}}, nil
}

func newTestProvider(next *fakeProvider, store *fakeStore) *CachingProvider {
	return &CachingProvider{
		next:   next,
		cache:  store,
		origin: "api",
		logger: slog.Default(),
	}
}

func TestCachingProviderReadThrough(t *testing.T) {
	rq := require.New(t)
	next := &fakeProvider{}
	store := newFakeStore()
	p := newTestProvider(next, store)
	ctx := context.Background()

	// Miss: fetch from the wrapped provider and populate the cache.
	items, err := p.Items(ctx)
	rq.NoError(err)
	rq.Len(items, 1)
	rq.Equal(1, next.calls)
	rq.Contains(store.items, "api")

	// Hit: the wrapped provider is not consulted again.
	items, err = p.Items(ctx)
	rq.NoError(err)
	rq.Len(items, 1)
	rq.Equal(1, next.calls)

	sources, err := p.Sources(ctx)
	rq.NoError(err)
	rq.Equal("case", sources["c1"].Type)
	rq.Equal(2, next.calls)

	_, err = p.Sources(ctx)
	rq.NoError(err)
	rq.Equal(2, next.calls)
}

func TestCachingProviderFallsBackOnCacheFailure(t *testing.T) {
	rq := require.New(t)
	next := &fakeProvider{}
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	p := newTestProvider(next, store)

	// A broken cache degrades to direct fetches on both paths.
	items, err := p.Items(context.Background())
	rq.NoError(err)
	rq.Len(items, 1)

	sources, err := p.Sources(context.Background())
	rq.NoError(err)
	rq.Len(sources, 1)
	rq.Equal(2, next.calls)
}

func TestCachingProviderPropagatesProviderError(t *testing.T) {
	rq := require.New(t)
	boom := errors.New("scanner down")
	next := &fakeProvider{err: boom}
	p := newTestProvider(next, newFakeStore())

	_, err := p.Items(context.Background())
	rq.ErrorIs(err, boom)

	_, err = p.Sources(context.Background())
	rq.ErrorIs(err, boom)
}

func TestSnapshotCacheKeySchema(t *testing.T) {
	rq := require.New(t)
	rq.Equal("catalog:snapshot:api:items", itemsKey("api"))
	rq.Equal("catalog:snapshot:postgres:sources", sourcesKey("postgres"))
}
