package vtdal

import (
	"context"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/osm"
)

// StoreSet picks the tile stores to read a tile from, by their coverage
type StoreSet struct {
	logger *logpkg.Logger
	cache  *TileRequestCache

	mu     sync.RWMutex
	stores []TileStore
}

// NewStoreSet makes a store set. A nil cache disables caching of decoded tiles.
func NewStoreSet(logger *logpkg.Logger, stores []TileStore, cache *TileRequestCache) *StoreSet {
	return &StoreSet{logger: logger, cache: cache, stores: stores}
}

func (ss *StoreSet) GetStores() []TileStore {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.stores
}

func (ss *StoreSet) AddStore(store TileStore) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.stores = append(ss.stores, store)
}

type MatchLevel int

const (
	MatchLevelNone MatchLevel = iota
	MatchLevelPartial
	MatchLevelFull
)

func (ml MatchLevel) String() string {
	switch ml {
	case MatchLevelNone:
		return "MatchLevelNone"
	case MatchLevelPartial:
		return "MatchLevelPartial"
	case MatchLevelFull:
		return "MatchLevelFull"
	}
	return "MatchLevel(unknown)"
}

type ChosenStoreForBounds struct {
	MatchLevel MatchLevel
	TileStore
}

func getMatchLevel(store TileStore, bounds osm.Bounds) (MatchLevel, errorsx.Error) {
	coverage, err := store.Coverage()
	if err != nil {
		return 0, errorsx.Wrap(err)
	}

	atLeastPartialMatch := vtmap.Overlaps(coverage, bounds)
	if !atLeastPartialMatch {
		return MatchLevelNone, nil
	}

	isFullMatch := vtmap.IsTotallyInside(coverage, bounds)
	if isFullMatch {
		return MatchLevelFull, nil
	}

	return MatchLevelPartial, nil
}

// GetStoresForBounds selects the stores that have data for a given bounds, full matches first
func (ss *StoreSet) GetStoresForBounds(bounds osm.Bounds) ([]*ChosenStoreForBounds, errorsx.Error) {
	var full, partial []*ChosenStoreForBounds

	for _, store := range ss.GetStores() {
		matchLevel, err := getMatchLevel(store, bounds)
		if err != nil {
			return nil, errorsx.Wrap(err, "store", store.Name())
		}

		ss.logger.Debug("matchlevel: %s, store: %v", matchLevel, store.Name())

		switch matchLevel {
		case MatchLevelFull:
			full = append(full, &ChosenStoreForBounds{MatchLevel: matchLevel, TileStore: store})
		case MatchLevelPartial:
			partial = append(partial, &ChosenStoreForBounds{MatchLevel: matchLevel, TileStore: store})
		}
	}

	return append(full, partial...), nil
}

// GetTileRequest reads a tile from the first store covering it that has the tile.
// The error's cause is ErrNoDataAvailable when no store has it.
func (ss *StoreSet) GetTileRequest(ctx context.Context, coord vtmap.TileCoord) (*vtmap.TileRequest, errorsx.Error) {
	if !coord.Valid() {
		return nil, errorsx.Errorf("invalid tile coordinate: %s", coord)
	}

	chosen, err := ss.GetStoresForBounds(coord.LonLatBounds())
	if err != nil {
		return nil, err
	}

	for _, store := range chosen {
		if tileRequest, ok := ss.cache.Get(store.Name(), coord); ok {
			return tileRequest, nil
		}

		data, err := store.GetTile(ctx, coord)
		if err != nil {
			if IsNoDataAvailable(err) {
				continue
			}
			return nil, errorsx.Wrap(err, "store", store.Name())
		}

		tileRequest := vtmap.NewTileRequest(data, coord.X, coord.Y, coord.Z)
		ss.cache.Add(store.Name(), tileRequest)

		return tileRequest, nil
	}

	return nil, errorsx.Wrap(ErrNoDataAvailable, "tile", coord.String())
}

func (ss *StoreSet) Close() errorsx.Error {
	for _, store := range ss.GetStores() {
		err := store.Close()
		if err != nil {
			return errorsx.Wrap(err, "store", store.Name())
		}
	}
	return nil
}
