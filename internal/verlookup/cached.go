package verlookup

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

const defaultCacheSize = 1024

type cachedAnswer struct {
	version string
	ok      bool
}

// Cached memoizes another lookup with an in-process LRU. Negative answers
// are cached too; the cache lives only as long as the process.
type Cached struct {
	next  Lookup
	cache *lru.Cache[string, cachedAnswer]
}

// NewCached wraps next with an LRU of the given size. size <= 0 selects a
// default.
func NewCached(next Lookup, size int) (*Cached, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, cachedAnswer](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Latest(ctx context.Context, ecosystem domain.Ecosystem, name string) (string, bool, error) {
	key := string(ecosystem) + "\x00" + name
	if answer, ok := c.cache.Get(key); ok {
		return answer.version, answer.ok, nil
	}
	version, ok, err := c.next.Latest(ctx, ecosystem, name)
	if err != nil {
		return "", false, err
	}
	c.cache.Add(key, cachedAnswer{version: version, ok: ok})
	return version, ok, nil
}
