package vtmap

import (
	"fmt"
	"math"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/tileindex"
)

type ZoomLevel uint8

const (
	MinZoomLevel ZoomLevel = 0
	MaxZoomLevel ZoomLevel = 30
)

type TileCoord struct {
	X uint32
	Y uint32
	Z ZoomLevel
}

func (c TileCoord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Valid checks the column and row are inside the tile grid for the zoom level
func (c TileCoord) Valid() bool {
	if c.Z > MaxZoomLevel {
		return false
	}
	n := uint64(math.Exp2(float64(c.Z)))
	return uint64(c.X) < n && uint64(c.Y) < n
}

// TileRequest is an encoded vector tile payload for one tile coordinate.
// The payload is copied on creation and never modified afterwards, so the layer index built from it can be shared between goroutines.
type TileRequest struct {
	Coord TileCoord

	data      []byte
	freed     bool
	indexOnce sync.Once
	index     tileindex.LayerIndex
	// indexErr is never handed out directly; callers wrap and annotate the errors they get
	indexErr error
}

func NewTileRequest(data []byte, x, y uint32, z ZoomLevel) *TileRequest {
	owned := make([]byte, len(data))
	copy(owned, data)

	return &TileRequest{
		Coord: TileCoord{X: x, Y: y, Z: z},
		data:  owned,
	}
}

func (tr *TileRequest) Data() []byte {
	return tr.data
}

func (tr *TileRequest) Len() int {
	return len(tr.data)
}

// Index decodes the payload into a layer index on first use, and returns the cached result afterwards.
// Every failed call returns a new error value.
func (tr *TileRequest) Index() (tileindex.LayerIndex, errorsx.Error) {
	if tr.freed {
		return nil, NewRenderError(errorsx.Errorf("tile request %s has been freed", tr.Coord))
	}

	tr.indexOnce.Do(func() {
		index, err := tileindex.Build(tr.data)
		if err != nil {
			tr.indexErr = errorsx.Wrap(err, "tile", tr.Coord.String())
			return
		}
		tr.index = index
	})

	if tr.indexErr != nil {
		return nil, errorsx.Wrap(&ParseError{tr.indexErr})
	}

	return tr.index, nil
}

// Free drops the payload. Index fails afterwards, and chunk views previously handed out are no longer valid to decode.
// It must not be called while the request is being rendered.
func (tr *TileRequest) Free() {
	tr.freed = true
	tr.data = nil
	tr.index = nil
}
