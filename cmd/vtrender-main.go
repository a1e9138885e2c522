package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/config"
	"github.com/jamesrr39/vtrender/maprenderer"
	"github.com/jamesrr39/vtrender/tilecache"
	"github.com/jamesrr39/vtrender/vtdal"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/jamesrr39/vtrender/webservices"
	"github.com/pkg/profile"
	"gopkg.in/alecthomas/kingpin.v2"
)

var logger *logpkg.Logger

func main() {
	verbose := kingpin.Flag("v", "verbose logging").Bool()

	setupRender()
	setupInspect()
	setupServe()

	kingpin.CommandLine.PreAction(func(ctx *kingpin.ParseContext) error {
		logLevel := logpkg.LogLevelInfo
		if *verbose {
			logLevel = logpkg.LogLevelDebug
		}
		logger = logpkg.NewLogger(os.Stderr, logLevel)
		return nil
	})

	kingpin.Parse()
}

var tilesHelp = fmt.Sprintf("tile store to read from. It should be the type, followed by the separator (%s), followed by the path or URL. For example: %s%smy/tiles.mbtiles",
	vtdal.ConnectionPathSeparator,
	string(vtdal.StoreTypeMBTiles),
	vtdal.ConnectionPathSeparator,
)

// runAction runs a command, printing the stack trace of a failure
func runAction(run func() errorsx.Error) kingpin.Action {
	return func(ctx *kingpin.ParseContext) error {
		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	}
}

type tileFlags struct {
	tilesConnString *string
	z               *uint8
	x               *uint32
	y               *uint32
}

func addTileFlags(cmd *kingpin.CmdClause) tileFlags {
	return tileFlags{
		tilesConnString: cmd.Flag("tiles", tilesHelp).Required().String(),
		z:               cmd.Flag("z", "zoom level of the tile").Required().Uint8(),
		x:               cmd.Flag("x", "column of the tile").Required().Uint32(),
		y:               cmd.Flag("y", "row of the tile, counted from the north").Required().Uint32(),
	}
}

func (tf tileFlags) getTileRequest(fs gofs.Fs) (*vtmap.TileRequest, errorsx.Error) {
	store, err := vtdal.OpenStore(fs, *tf.tilesConnString)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer store.Close()

	storeSet := vtdal.NewStoreSet(logger, []vtdal.TileStore{store}, nil)

	return storeSet.GetTileRequest(context.Background(), vtmap.TileCoord{X: *tf.x, Y: *tf.y, Z: vtmap.ZoomLevel(*tf.z)})
}

func registerResources(env *maprenderer.Environment, fontsDirs, pluginsDirs []string) errorsx.Error {
	for _, dir := range fontsDirs {
		err := env.RegisterFonts(dir)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	for _, dir := range pluginsDirs {
		err := env.RegisterDatasources(dir)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	return nil
}

func setupRender() {
	cmd := kingpin.Command("render", "render one vector tile to an image file")
	stylePath := cmd.Flag("style", "style document (Mapnik XML, or Mapbox GL JSON if it ends with .json)").Required().String()
	tf := addTileFlags(cmd)
	outPath := cmd.Flag("out", "file to write the image to").Short('o').Required().String()
	format := cmd.Flag("format", "image format. png, png256, jpeg, jpegNN (quality NN), tiff, bmp or raw").Default("png256").String()
	scale := cmd.Flag("scale", "render at this scale denominator, instead of the one of the tile's zoom level").Float64()
	scaleFactor := cmd.Flag("scale-factor", "multiplier for line widths, text and marker sizes").Default("1").Float64()
	size := cmd.Flag("size", "width and height of the image in pixels").Default("256").Int()
	fontsDirs := cmd.Flag("fonts", "directory of fonts to register (repeatable)").Strings()
	pluginsDirs := cmd.Flag("plugins", "directory of datasource files to register (repeatable)").Strings()
	shouldProfile := cmd.Flag("profile", "profile the render performance").Bool()
	cmd.Action(runAction(func() errorsx.Error {
		if *shouldProfile {
			defer profile.Start(profile.ProfilePath(filepath.Dir(*outPath)), profile.CPUProfile).Stop()
		}

		fs := gofs.NewOsFs()
		env := maprenderer.NewEnvironment(logger, fs)

		err := registerResources(env, *fontsDirs, *pluginsDirs)
		if err != nil {
			return errorsx.Wrap(err)
		}

		tileRequest, err := tf.getTileRequest(fs)
		if err != nil {
			return errorsx.Wrap(err)
		}

		m := maprenderer.NewWithEnvironment(env, *size, *size)
		defer m.Free()

		err = m.Load(*stylePath)
		if err != nil {
			return errorsx.Wrap(err)
		}

		m.SetVectorData(tileRequest)

		startTime := time.Now()

		err = m.RenderToFile(maprenderer.RenderOpts{
			Scale:       *scale,
			ScaleFactor: *scaleFactor,
			Format:      *format,
		}, *outPath)
		if err != nil {
			return errorsx.Wrap(err)
		}

		logger.Info("rendered tile %s to %q in %s", tileRequest.Coord, *outPath, time.Since(startTime))

		return nil
	}))
}

func setupInspect() {
	cmd := kingpin.Command("inspect", "print the layers of a vector tile")
	tf := addTileFlags(cmd)
	cmd.Action(runAction(func() errorsx.Error {
		tileRequest, err := tf.getTileRequest(gofs.NewOsFs())
		if err != nil {
			return errorsx.Wrap(err)
		}
		defer tileRequest.Free()

		index, err := tileRequest.Index()
		if err != nil {
			return errorsx.Wrap(err)
		}

		fmt.Printf("tile %s: %d bytes\n", tileRequest.Coord, tileRequest.Len())
		for _, name := range index.Names() {
			chunks := index.Chunks(name)

			var size int
			for _, chunk := range chunks {
				size += chunk.Len()
			}

			fmt.Printf("\t%s: %d chunk(s), %d bytes\n", name, len(chunks), size)
		}

		return nil
	}))
}

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	config.DefaultPort, config.DefaultPort, config.DefaultPort, config.DefaultPort,
)

func setupServe() {
	cmd := kingpin.Command("serve", "serve rendered tiles over HTTP")
	configPath := cmd.Flag("config", "config file (yaml, json or toml). Settings can also be given as VTRENDER_ environment variables").String()
	addr := cmd.Flag("addr", addrHelp).String()
	shouldProfile := cmd.Flag("profile", "profile the request performance").Bool()
	cmd.Action(runAction(func() errorsx.Error {
		conf, err := config.Load(*configPath)
		if err != nil {
			return errorsx.Wrap(err)
		}

		if *addr != "" {
			conf.Addr = *addr
		}
		if *shouldProfile {
			conf.Profile = true
		}

		fs := gofs.NewOsFs()

		err = conf.EnsurePaths(fs)
		if err != nil {
			return errorsx.Wrap(err)
		}

		router, closeFunc, err := createServer(fs, conf)
		if err != nil {
			return errorsx.Wrap(err)
		}
		defer closeFunc()

		server := httpextra.NewServerWithTimeouts()
		server.Addr = conf.Addr
		server.Handler = router

		logger.Info("about to start serving on %q", conf.Addr)

		goErr := server.ListenAndServe()
		if goErr != nil {
			return errorsx.Wrap(goErr)
		}
		return nil
	}))
}

func createCache(conf config.CacheConfig) (tilecache.Cache, errorsx.Error) {
	switch conf.Type {
	case config.CacheTypeLRU:
		return tilecache.NewLRUCache(conf.Size)
	case config.CacheTypeRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return tilecache.NewRedisCache(ctx, conf.RedisAddr, conf.TTL)
	default:
		return nil, nil
	}
}

func createServer(fs gofs.Fs, conf *config.Config) (http.Handler, func(), errorsx.Error) {
	env := maprenderer.NewEnvironment(logger, fs)

	err := registerResources(env, conf.FontsDirs, conf.PluginsDirs)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	styleSet, err := maprenderer.LoadStyleSet(logger, fs, conf.StylesDir, conf.DefaultStyleID)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	var stores []vtdal.TileStore
	for _, connString := range conf.TileStores {
		store, err := vtdal.OpenStore(fs, connString)
		if err != nil {
			logger.Error("failed to open tile store %q. Error: %q\nStack: %s", connString, err.Error(), err.Stack())
			continue
		}

		stores = append(stores, store)
	}

	tileRequestCache, err := vtdal.NewTileRequestCache(conf.TileRequestCacheSize)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	storeSet := vtdal.NewStoreSet(logger, stores, tileRequestCache)

	cache, err := createCache(conf.Cache)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	traceFilePath := filepath.Join(conf.TraceDir, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	logger.Info("tracing at %q", traceFilePath)

	traceFile, goErr := os.Create(traceFilePath)
	if goErr != nil {
		return nil, nil, errorsx.Wrap(goErr)
	}

	metrics := webservices.NewMetrics()

	tileService := webservices.NewTileService(logger, storeSet, env, styleSet, cache, metrics, webservices.TileServiceOptions{
		TileSize:             conf.TileSize,
		MaxConcurrentRenders: conf.MaxConcurrentRenders,
		ShouldProfile:        conf.Profile,
	})
	infoService := webservices.NewInfoService(logger, storeSet, styleSet)

	closeFunc := func() {
		for _, closer := range []func() error{
			func() error { return storeSet.Close() },
			func() error {
				if cache == nil {
					return nil
				}
				return cache.Close()
			},
			traceFile.Close,
		} {
			err := closer()
			if err != nil {
				log.Printf("error closing server resources: %q\n", err)
			}
		}
	}

	return webservices.NewRouter(tracing.NewTracer(traceFile), tileService, infoService, metrics), closeFunc, nil
}
