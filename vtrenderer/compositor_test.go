package vtrenderer

import (
	"bytes"
	"context"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/datasource"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/jamesrr39/vtrender/vtmap/testmocks"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEngine struct {
	jobs   []PaintJob
	failOn string
}

func (e *recordingEngine) PaintLayer(ctx context.Context, cnv *canvas.Canvas, job PaintJob) errorsx.Error {
	e.jobs = append(e.jobs, job)
	if job.Layer.Name == e.failOn {
		return errorsx.Errorf("could not paint %q", job.Layer.Name)
	}
	return nil
}

func (e *recordingEngine) layerNames() []string {
	var names []string
	for _, job := range e.jobs {
		names = append(names, job.Layer.Name)
	}
	return names
}

func newTestCompositor(engine Engine) *Compositor {
	logger := logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelDebug)
	return NewCompositor(logger, engine, datasource.NewRegistry(mockfs.NewMockFs()))
}

func testTileRequest(t *testing.T) *vtmap.TileRequest {
	payload := testmocks.EncodeTile(t,
		testmocks.NewLayer("water", testmocks.NewFeature(orb.Point{1, 1}, map[string]interface{}{"n": "first"})),
		testmocks.NewLayer("roads", testmocks.NewFeature(orb.Point{2, 2}, nil)),
		testmocks.NewLayer("water", testmocks.NewFeature(orb.Point{3, 3}, map[string]interface{}{"n": "second"})),
		testmocks.NewLayer("unstyled", testmocks.NewFeature(orb.Point{4, 4}, nil)),
	)
	return vtmap.NewTileRequest(payload, 0, 0, 0)
}

func testStyle() *styling.Style {
	style := styling.NewStyle(256, 256)
	style.BufferSize = 64

	roads := styling.NewLayer("roads", "roads")
	roads.MinScaleDenominator = 500
	roads.MaxScaleDenominator = 2000

	hidden := styling.NewLayer("water", "water")
	hidden.Active = false

	style.Layers = []*styling.Layer{roads, styling.NewLayer("water", "water"), hidden, styling.NewLayer("missing", "water")}
	return style
}

func TestCompositor_Composite(t *testing.T) {
	engine := new(recordingEngine)
	compositor := newTestCompositor(engine)
	cnv := canvas.New(256, 256)

	err := compositor.Composite(context.Background(), cnv, testStyle(), testTileRequest(t), RenderOptions{ScaleFactor: 2})
	require.NoError(t, err)

	// roads is not visible at zoom 0
	require.Equal(t, []string{"water", "water"}, engine.layerNames())

	extent := vtmap.TileExtent(vtmap.TileCoord{}, 256)
	buffered := vtmap.BufferedExtent(extent, 256, 64)

	for i, expectedN := range []string{"first", "second"} {
		job := engine.jobs[i]
		assert.Equal(t, extent, job.Extent)
		assert.Equal(t, buffered, job.BufferedExtent)
		assert.Equal(t, buffered, job.Source.Envelope())
		assert.InDelta(t, vtmap.ZoomToScaleDenominator(0), job.ScaleDenominator, 1e-3)
		assert.InDelta(t, vtmap.WebMercatorSpan/256, job.Scale, 1e-9)
		assert.Equal(t, 2.0, job.ScaleFactor)
		assert.Equal(t, 256, job.Width)
		assert.Equal(t, 64, job.BufferSize)

		features, err := job.Source.Features(context.Background(), datasource.Query{})
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.Equal(t, expectedN, features[0].Properties["n"])
	}

	assert.NotSame(t, engine.jobs[0].Layer, engine.jobs[1].Layer, "each paint gets its own copy of the layer")
}

func TestCompositor_Composite_forcedScale(t *testing.T) {
	engine := new(recordingEngine)
	compositor := newTestCompositor(engine)

	err := compositor.Composite(context.Background(), canvas.New(256, 256), testStyle(), testTileRequest(t), RenderOptions{ScaleDenominator: 1000})
	require.NoError(t, err)

	assert.Equal(t, []string{"roads", "water", "water"}, engine.layerNames())
	assert.Equal(t, 1000.0, engine.jobs[0].ScaleDenominator)
}

func TestCompositor_Composite_errors(t *testing.T) {
	t.Run("paint failure stops the render", func(t *testing.T) {
		engine := &recordingEngine{failOn: "water"}
		compositor := newTestCompositor(engine)

		err := compositor.Composite(context.Background(), canvas.New(256, 256), testStyle(), testTileRequest(t), RenderOptions{})
		require.Error(t, err)
		assert.Equal(t, vtmap.ErrorKindRender, vtmap.KindOf(err))
		assert.Len(t, engine.jobs, 1)
	})

	t.Run("malformed payload", func(t *testing.T) {
		engine := new(recordingEngine)
		compositor := newTestCompositor(engine)

		payload := testmocks.EncodeTile(t, testmocks.NewLayer("water", testmocks.NewFeature(orb.Point{1, 1}, nil)))
		tileRequest := vtmap.NewTileRequest(payload[:len(payload)-3], 0, 0, 0)

		err := compositor.Composite(context.Background(), canvas.New(256, 256), testStyle(), tileRequest, RenderOptions{})
		require.Error(t, err)
		assert.Equal(t, vtmap.ErrorKindParse, vtmap.KindOf(err))
		assert.Empty(t, engine.jobs)
	})

	t.Run("cancelled", func(t *testing.T) {
		engine := new(recordingEngine)
		compositor := newTestCompositor(engine)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := compositor.Composite(ctx, canvas.New(256, 256), testStyle(), testTileRequest(t), RenderOptions{})
		require.Error(t, err)
		assert.Empty(t, engine.jobs)
	})
}

func TestCompositor_datasourceLayers(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.MkdirAll("/data", 0755))
	require.NoError(t, fs.WriteFile("/data/coast.geojson", []byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [10, 10]}}
	]}`), 0644))

	engine := new(recordingEngine)
	logger := logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelDebug)
	compositor := NewCompositor(logger, engine, datasource.NewRegistry(fs))

	style := testStyle()
	coast := styling.NewLayer("coast", "water")
	coast.Datasource = styling.DatasourceParams{"type": "geojson", "file": "/data/coast.geojson"}
	style.Layers = append(style.Layers, coast)

	err := compositor.Composite(context.Background(), canvas.New(256, 256), style, testTileRequest(t), RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"coast", "water", "water"}, engine.layerNames())

	engine.jobs = nil
	err = compositor.RenderExtent(context.Background(), canvas.New(256, 256), style, vtmap.WorldExtent(), RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"coast"}, engine.layerNames())

	coast.Datasource["type"] = "shape"
	err = compositor.RenderExtent(context.Background(), canvas.New(256, 256), style, vtmap.WorldExtent(), RenderOptions{})
	require.Error(t, err)
	assert.Equal(t, vtmap.ErrorKindRender, vtmap.KindOf(err))
}

func TestCompositor_RenderExtent_geographicStyle(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.MkdirAll("/data", 0755))
	require.NoError(t, fs.WriteFile("/data/coast.geojson", []byte(`{"type": "FeatureCollection", "features": []}`), 0644))

	engine := new(recordingEngine)
	logger := logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelDebug)
	compositor := NewCompositor(logger, engine, datasource.NewRegistry(fs))

	style := styling.NewStyle(256, 256)
	style.SRS = "+init=epsg:4326"
	coast := styling.NewLayer("coast", "water")
	coast.Datasource = styling.DatasourceParams{"type": "geojson", "file": "/data/coast.geojson"}
	coast.MinScaleDenominator = 5e8
	coast.MaxScaleDenominator = 6e8
	style.Layers = []*styling.Layer{coast}

	// the extent is in meters, so the degree factor of the style must not apply again
	err := compositor.RenderExtent(context.Background(), canvas.New(256, 256), style, vtmap.WorldExtent(), RenderOptions{})
	require.NoError(t, err)
	require.Len(t, engine.jobs, 1)
	assert.InEpsilon(t, 5.59082264e8, engine.jobs[0].ScaleDenominator, 1e-6)
}
