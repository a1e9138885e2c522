package webservices

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/semaphore"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/maprenderer"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/tilecache"
	"github.com/jamesrr39/vtrender/vtdal"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/pkg/profile"
)

const (
	TileBoundsHeader = "X-Tile-Bounds"
	noDataText       = "no data"
)

type TileServiceOptions struct {
	TileSize             int
	MaxConcurrentRenders uint
	ShouldProfile        bool
}

type TileService struct {
	logger        *logpkg.Logger
	storeSet      *vtdal.StoreSet
	sema          *semaphore.Semaphore
	renderer      maprenderer.TileRenderer
	styleSet      *styling.StyleSet
	cache         tilecache.Cache
	metrics       *Metrics
	tileSize      int
	shouldProfile bool
	chi.Router
}

// NewTileService makes the tile endpoint. A nil cache renders every request.
func NewTileService(logger *logpkg.Logger, storeSet *vtdal.StoreSet, renderer maprenderer.TileRenderer, styleSet *styling.StyleSet, cache tilecache.Cache, metrics *Metrics, options TileServiceOptions) *TileService {
	ts := &TileService{
		logger:        logger,
		storeSet:      storeSet,
		sema:          semaphore.NewSemaphore(options.MaxConcurrentRenders),
		renderer:      renderer,
		styleSet:      styleSet,
		cache:         cache,
		metrics:       metrics,
		tileSize:      options.TileSize,
		shouldProfile: options.ShouldProfile,
		Router:        chi.NewRouter(),
	}

	ts.Get("/{styleId}/{z}/{x}/{y}.{format}", ts.handleGetTile)

	return ts
}

func (ts *TileService) getStyle(styleID string) (*styling.Style, errorsx.Error) {
	if styleID == "default" {
		return ts.styleSet.GetDefaultStyle(), nil
	}

	style := ts.styleSet.GetStyleByID(styleID)
	if style == nil {
		return nil, errorsx.Errorf("couldn't get requested style %q (style not loaded)", styleID)
	}

	return style, nil
}

func parseRenderOpts(r *http.Request, format string) (maprenderer.RenderOpts, errorsx.Error) {
	opts := maprenderer.RenderOpts{Format: format}

	query := r.URL.Query()
	for name, dest := range map[string]*float64{"scale": &opts.Scale, "scaleFactor": &opts.ScaleFactor} {
		valueStr := query.Get(name)
		if valueStr == "" {
			continue
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil || value < 0 {
			return opts, errorsx.Errorf("invalid %s: %q", name, valueStr)
		}
		*dest = value
	}

	return opts, nil
}

func (ts *TileService) handleGetTile(w http.ResponseWriter, r *http.Request) {
	if ts.shouldProfile {
		defer profile.Start().Stop()
	}

	ctx := r.Context()
	styleID := chi.URLParam(r, "styleId")
	format := chi.URLParam(r, "format")

	coord, err := parseTileCoord(chi.URLParam(r, "x"), chi.URLParam(r, "y"), chi.URLParam(r, "z"))
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	style, err := ts.getStyle(styleID)
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), http.StatusNotFound)
		return
	}

	opts, err := parseRenderOpts(r, format)
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	ts.logger.Debug("serving tile %s with style %q", coord, style.GetStyleID())

	w.Header().Set(TileBoundsHeader, formatBounds(coord.LonLatBounds()))

	tileRequest, err := ts.storeSet.GetTileRequest(ctx, coord)
	if err != nil {
		if !vtdal.IsNoDataAvailable(err) {
			errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), http.StatusInternalServerError)
			return
		}

		ts.metrics.noData.Inc()
		ts.serveNoData(w, format)
		return
	}

	cacheKey := tilecache.Key(style.GetStyleID(), format, tileRequest.Data(), r.URL.Query().Get("scale"), r.URL.Query().Get("scaleFactor"))
	if ts.cache != nil {
		data, ok, err := ts.cache.Get(ctx, cacheKey)
		if err != nil {
			ts.logger.Warn("failed to read tile %s from the cache: %s", coord, err)
		} else if ok {
			ts.metrics.cacheHits.Inc()
			ts.writeTile(w, format, data)
			return
		}
		ts.metrics.cacheMisses.Inc()
	}

	ts.sema.Add()
	startTime := time.Now()
	data, err := ts.renderer.RenderTile(ctx, style, tileRequest, ts.tileSize, opts)
	ts.sema.Done()
	if err != nil {
		ts.metrics.renderFailures.WithLabelValues(string(vtmap.KindOf(err))).Inc()
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err, "tile", coord.String()), renderErrorStatusCode(err))
		return
	}
	ts.metrics.renderDuration.Observe(time.Since(startTime).Seconds())
	ts.metrics.renders.WithLabelValues(style.GetStyleID(), format).Inc()

	if ts.cache != nil {
		err = ts.cache.Set(ctx, cacheKey, data)
		if err != nil {
			ts.logger.Warn("failed to write tile %s to the cache: %s", coord, err)
		}
	}

	ts.writeTile(w, format, data)
}

func renderErrorStatusCode(err error) int {
	switch vtmap.KindOf(err) {
	case vtmap.ErrorKindEncoding:
		// unknown or invalid format requested
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (ts *TileService) serveNoData(w http.ResponseWriter, format string) {
	data, err := ts.renderer.RenderTextTile(ts.tileSize, noDataText, format)
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), renderErrorStatusCode(err))
		return
	}

	ts.writeTile(w, format, data)
}

func (ts *TileService) writeTile(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", canvas.ContentType(format))

	_, err := w.Write(data)
	if err != nil {
		switch err.(type) {
		case *net.OpError:
			// broken pipe (request cancelled). Do nothing
		default:
			ts.logger.Error("failed to write tile: %s", err)
		}
	}
}
