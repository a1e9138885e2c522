package tilecache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jamesrr39/goutil/errorsx"
)

var _ Cache = &LRUCache{}

// LRUCache keeps the most recently used tiles in memory
type LRUCache struct {
	cache *lru.Cache[string, []byte]
}

func NewLRUCache(size int) (*LRUCache, errorsx.Error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, errorsx.Wrap(err, "size", size)
	}

	return &LRUCache{cache}, nil
}

func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool, errorsx.Error) {
	data, ok := c.cache.Get(key)
	return data, ok, nil
}

func (c *LRUCache) Set(ctx context.Context, key string, data []byte) errorsx.Error {
	c.cache.Add(key, data)
	return nil
}

func (c *LRUCache) Close() errorsx.Error {
	c.cache.Purge()
	return nil
}
