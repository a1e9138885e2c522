package xmlstyle

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	style, err := ParseFile("testdata/style.xml")
	require.NoError(t, err)

	assert.Equal(t, "basic", style.ID)
	assert.Equal(t, "+init=epsg:3857", style.SRS)
	assert.Equal(t, color.NRGBA{0xf8, 0xf4, 0xf0, 0xff}, style.Background)
	assert.Equal(t, 16, style.BufferSize)
	assert.Equal(t, 2.0, style.Scale)
	assert.Equal(t, 0.0, style.ScaleDenominator)
	require.NotNil(t, style.MaxExtent)
	assert.Equal(t, -20037508.34, style.MaxExtent.Min.X())
	assert.Equal(t, filepath.Join("testdata", "fonts"), style.FontDirectory)

	require.Len(t, style.Layers, 3)

	water := style.Layers[0]
	assert.Equal(t, "water", water.Name)
	assert.True(t, water.Active)
	assert.True(t, water.VisibleAt(1e12))
	assert.Equal(t, []string{"water"}, water.StyleNames)

	roads := style.Layers[1]
	assert.Equal(t, []string{"roads", "labels"}, roads.StyleNames)
	assert.True(t, roads.VisibleAt(100))
	assert.False(t, roads.VisibleAt(200000))

	coast := style.Layers[2]
	assert.False(t, coast.Active)
	assert.Equal(t, styling.DatasourceParams{"type": "geojson", "file": "coast.geojson", "base": "testdata"}, coast.Datasource)

	waterStyle := style.Styles["water"]
	require.Len(t, waterStyle.Rules, 1)
	require.Len(t, waterStyle.Rules[0].Symbolizers, 1)
	assert.Equal(t, &styling.PolygonSymbolizer{Fill: color.NRGBA{0xaa, 0xd3, 0xdf, 128}}, waterStyle.Rules[0].Symbolizers[0])

	roadsStyle := style.Styles["roads"]
	assert.Equal(t, styling.FilterModeFirst, roadsStyle.FilterMode)
	require.Len(t, roadsStyle.Rules, 2)
	major := roadsStyle.Rules[0]
	assert.Equal(t, "major", major.Name)
	assert.Equal(t, 500000.0, major.MaxScaleDenominator)
	assert.Equal(t, "[class] in ('motorway', 'trunk')", major.Filter.String())
	assert.Equal(t, &styling.LineSymbolizer{
		Stroke:      color.NRGBA{243, 141, 158, 0xff},
		StrokeWidth: 3,
		DashArray:   []float64{4, 2},
		LineCap:     styling.LineCapRound,
	}, major.Symbolizers[0])
	assert.True(t, roadsStyle.Rules[1].ElseFilter)
	assert.Nil(t, roadsStyle.Rules[1].Filter)

	labels := style.Styles["labels"].Rules[0]
	require.Len(t, labels.Symbolizers, 2)
	text := labels.Symbolizers[0].(*styling.TextSymbolizer)
	assert.Equal(t, "[name] + ' ' + [ref]", text.Name.String())
	assert.Equal(t, "Go Regular", text.FaceName)
	assert.Equal(t, 12.0, text.Size)
	assert.Equal(t, -4.0, text.DY)
	assert.Equal(t, 1.0, text.HaloRadius)
	markers := labels.Symbolizers[1].(*styling.MarkersSymbolizer)
	assert.Equal(t, 6.0, markers.Width)
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "this is not xml"},
		{"wrong root", "<Style/>"},
		{"bad color", `<Map background-color="#xyz"/>`},
		{"bad filter", `<Map><Style name="s"><Rule><Filter>[class = 'a'</Filter></Rule></Style></Map>`},
		{"bad buffer", `<Map buffer-size="big"/>`},
		{"bad extent", `<Map maximum-extent="1,2,3"/>`},
		{"duplicate style", `<Map><Style name="s"/><Style name="s"/></Map>`},
		{"layer without name", `<Map><Layer/></Map>`},
		{"bad scale window", `<Map><Layer name="a" minimum-scale-denominator="10" maximum-scale-denominator="5"/></Map>`},
		{"bad status", `<Map><Layer name="a" status="maybe"/></Map>`},
		{"text without name", `<Map><Style name="s"><Rule><TextSymbolizer/></Rule></Style></Map>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Equal(t, vtmap.ErrorKindParse, vtmap.KindOf(err))
		})
	}
}

func TestParseFile_missing(t *testing.T) {
	_, err := ParseFile("testdata/does-not-exist.xml")
	require.Error(t, err)
	assert.Equal(t, vtmap.ErrorKindParse, vtmap.KindOf(err))
}
