package vtdal

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/vtmap"
)

type tileRequestKey struct {
	storeName string
	coord     vtmap.TileCoord
}

// TileRequestCache keeps recently read tiles, so their layer index is only built once.
// A nil cache holds nothing.
type TileRequestCache struct {
	cache *lru.Cache[tileRequestKey, *vtmap.TileRequest]
}

func NewTileRequestCache(size int) (*TileRequestCache, errorsx.Error) {
	cache, err := lru.New[tileRequestKey, *vtmap.TileRequest](size)
	if err != nil {
		return nil, errorsx.Wrap(err, "size", size)
	}

	return &TileRequestCache{cache}, nil
}

func (c *TileRequestCache) Get(storeName string, coord vtmap.TileCoord) (*vtmap.TileRequest, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(tileRequestKey{storeName, coord})
}

// Add keeps a tile. Evicted tiles are not freed, as they may still be rendering.
func (c *TileRequestCache) Add(storeName string, tileRequest *vtmap.TileRequest) {
	if c == nil {
		return
	}
	c.cache.Add(tileRequestKey{storeName, tileRequest.Coord}, tileRequest)
}

func (c *TileRequestCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
