package tilecache

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/jamesrr39/goutil/errorsx"
)

// Cache keeps encoded rendered tiles
type Cache interface {
	// Get returns the cached tile, or ok=false on a miss
	Get(ctx context.Context, key string) (data []byte, ok bool, err errorsx.Error)
	Set(ctx context.Context, key string, data []byte) errorsx.Error
	Close() errorsx.Error
}

// Key identifies a rendered tile by the style it was rendered with, the output format and the vector tile payload.
// Options that change the output (e.g. scale) go in extra.
func Key(styleID, format string, payload []byte, extra ...string) string {
	digest := xxhash.New()
	_, _ = digest.Write(payload)

	key := fmt.Sprintf("tile:%s:%s:%016x", styleID, format, digest.Sum64())
	if len(extra) != 0 {
		key += fmt.Sprintf(":%016x", xxhash.Sum64String(strings.Join(extra, "\x00")))
	}
	return key
}
