package project

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cherry/cherry-cli/internal/logging"
)

const (
	DefaultCacheTTL             = 5 * time.Minute
	defaultCacheCleanupInterval = 10 * time.Minute
)

var cacheLog = logging.New("project-cache")

// CachedRepository memoizes the keyed lookups of another Repository. Only
// hits are cached; writes through this repository drop all cached entries.
type CachedRepository struct {
	Repository
	cache *gocache.Cache
}

var _ Repository = (*CachedRepository)(nil)

func NewCachedRepository(repo Repository, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedRepository{
		Repository: repo,
		cache:      gocache.New(ttl, defaultCacheCleanupInterval),
	}
}

func (r *CachedRepository) FindByTitle(ctx context.Context, title string) (*WorkspaceProject, error) {
	return r.lookup("title:"+title, func() (*WorkspaceProject, error) {
		return r.Repository.FindByTitle(ctx, title)
	})
}

func (r *CachedRepository) FindByShortCode(ctx context.Context, shortCode string) (*WorkspaceProject, error) {
	return r.lookup("code:"+shortCode, func() (*WorkspaceProject, error) {
		return r.Repository.FindByShortCode(ctx, shortCode)
	})
}

func (r *CachedRepository) Save(ctx context.Context, p *WorkspaceProject) error {
	if err := r.Repository.Save(ctx, p); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}

func (r *CachedRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.Repository.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}

func (r *CachedRepository) lookup(key string, load func() (*WorkspaceProject, error)) (*WorkspaceProject, error) {
	if v, found := r.cache.Get(key); found {
		if p, ok := v.(WorkspaceProject); ok {
			cacheLog.Debug("cache hit", "key", key)
			return &p, nil
		}
		cacheLog.Error("wrong type assertion when getting value", "key", key)
	}

	p, err := load()
	if err != nil || p == nil {
		return p, err
	}
	// Store a copy so callers cannot mutate the cached entry.
	r.cache.SetDefault(key, *p)
	return p, nil
}
