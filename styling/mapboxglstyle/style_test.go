package mapboxglstyle

import (
	"image/color"
	"strings"
	"testing"

	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFeature struct {
	geometryType styling.GeometryType
	attributes   map[string]interface{}
}

func (f testFeature) Attribute(key string) (interface{}, bool) {
	v, ok := f.attributes[key]
	return v, ok
}

func (f testFeature) GeometryType() styling.GeometryType {
	return f.geometryType
}

func TestParseFile(t *testing.T) {
	style, err := ParseFile("testdata/style.json")
	require.NoError(t, err)

	assert.Equal(t, "test-gl", style.ID)
	assert.Equal(t, color.NRGBA{0xf8, 0xf4, 0xf0, 0xff}, style.Background)
	assert.Equal(t, defaultBufferSize, style.BufferSize)

	require.Len(t, style.Layers, 4)
	var names []string
	for _, layer := range style.Layers {
		names = append(names, layer.Name)
	}
	assert.Equal(t, []string{"water", "transportation", "place", "poi"}, names)

	t.Run("water", func(t *testing.T) {
		layer := style.Layers[0]
		assert.Equal(t, []string{"water"}, layer.StyleNames)
		assert.True(t, layer.VisibleAt(1))

		fts := style.Styles["water"]
		require.Len(t, fts.Rules, 1)
		rule := fts.Rules[0]

		assert.True(t, rule.Filter.Matches(testFeature{styling.GeometryTypePolygon, nil}))
		assert.False(t, rule.Filter.Matches(testFeature{styling.GeometryTypePolygon, map[string]interface{}{"intermittent": int64(1)}}))
		assert.False(t, rule.Filter.Matches(testFeature{styling.GeometryTypeLineString, nil}))

		polygon := rule.Symbolizers[0].(*styling.PolygonSymbolizer)
		_, _, _, a := polygon.Fill.RGBA()
		assert.InDelta(t, 0x8080, a, 0x100)
	})

	t.Run("zoom dependent line", func(t *testing.T) {
		layer := style.Layers[1]
		assert.False(t, layer.VisibleAt(vtmap.ZoomToScaleDenominator(12)))
		assert.True(t, layer.VisibleAt(vtmap.ZoomToScaleDenominator(13)))

		fts := style.Styles["road_minor"]
		assert.True(t, fts.Rules[0].Filter.Matches(testFeature{styling.GeometryTypeLineString, map[string]interface{}{"class": "service"}}))
		assert.False(t, fts.Rules[0].Filter.Matches(testFeature{styling.GeometryTypeLineString, map[string]interface{}{"class": "primary"}}))

		// zoom 13 evaluates to a width of 0, so has no rule
		feature := testFeature{styling.GeometryTypeLineString, map[string]interface{}{"class": "minor"}}
		assert.Empty(t, fts.MatchingRules(feature, vtmap.ZoomToScaleDenominator(13)))

		rules := fts.MatchingRules(feature, vtmap.ZoomToScaleDenominator(14))
		require.Len(t, rules, 1)
		line := rules[0].Symbolizers[0].(*styling.LineSymbolizer)
		assert.InDelta(t, 2.5, line.StrokeWidth, 1e-9)
		assert.Equal(t, []float64{5, 2.5}, line.DashArray)
		assert.Equal(t, styling.LineCapRound, line.LineCap)

		rules = fts.MatchingRules(feature, vtmap.ZoomToScaleDenominator(20))
		require.Len(t, rules, 1)
		assert.InDelta(t, 18, rules[0].Symbolizers[0].(*styling.LineSymbolizer).StrokeWidth, 1e-9)
	})

	t.Run("hidden symbol layer", func(t *testing.T) {
		layer := style.Layers[2]
		assert.False(t, layer.Active)
		assert.Equal(t, vtmap.ZoomToScaleDenominator(14)*(1+zoomBoundaryTolerance), layer.MinScaleDenominator)

		text := style.Styles["place_label"].Rules[0].Symbolizers[0].(*styling.TextSymbolizer)
		assert.Equal(t, "Noto Sans Regular", text.FaceName)
		assert.Equal(t, 12.0, text.Size)
		assert.Equal(t, "Paris\nПариж", text.Name.Evaluate(testFeature{
			styling.GeometryTypePoint,
			map[string]interface{}{"name:latin": "Paris", "name:nonlatin": "Париж"},
		}))
	})

	t.Run("circle", func(t *testing.T) {
		fts := style.Styles["poi"]
		assert.False(t, fts.Rules[0].Filter.Matches(testFeature{styling.GeometryTypePoint, nil}))
		markers := fts.Rules[0].Symbolizers[0].(*styling.MarkersSymbolizer)
		assert.Equal(t, 6.0, markers.Width)
		assert.Equal(t, color.NRGBA{0xff, 0, 0, 0xff}, markers.Fill)
	})
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"wrong version", `{"version": 7, "layers": []}`},
		{"unknown filter operator", `{"version": 8, "layers": [{"id": "a", "type": "fill", "source-layer": "a", "filter": ["within", "x"]}]}`},
		{"bad color", `{"version": 8, "layers": [{"id": "a", "type": "fill", "source-layer": "a", "paint": {"fill-color": "#zz"}}]}`},
		{"duplicate id", `{"version": 8, "layers": [{"id": "a", "type": "fill", "source-layer": "a"}, {"id": "a", "type": "line", "source-layer": "b"}]}`},
		{"min zoom above max zoom", `{"version": 8, "layers": [{"id": "a", "type": "fill", "source-layer": "a", "minzoom": 10, "maxzoom": 5}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Equal(t, vtmap.ErrorKindParse, vtmap.KindOf(err))
		})
	}
}

func TestNumberOrFunctionWrapperType(t *testing.T) {
	var n NumberOrFunctionWrapperType
	require.NoError(t, n.UnmarshalJSON([]byte(`{"stops": [[10, 2], [20, 12]]}`)))

	assert.Equal(t, 2.0, n.GetValueAtZoomLevel(5))
	assert.InDelta(t, 7, n.GetValueAtZoomLevel(15), 1e-9)
	assert.Equal(t, 12.0, n.GetValueAtZoomLevel(22))

	var plain NumberOrFunctionWrapperType
	require.NoError(t, plain.UnmarshalJSON([]byte(`3.5`)))
	assert.False(t, plain.IsFunction())
	assert.Equal(t, 3.5, plain.GetValueAtZoomLevel(10))

	var colorFn ColorOrFunctionWrapperType
	require.NoError(t, colorFn.UnmarshalJSON([]byte(`{"stops": [[0, "#000000"], [10, "#ffffff"]]}`)))
	assert.Equal(t, color.NRGBA{0x80, 0x80, 0x80, 0xff}, colorFn.GetColorAtZoomLevel(5))
}
