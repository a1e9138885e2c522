package styling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureTypeStyle_MatchingRules(t *testing.T) {
	primary := &Rule{Name: "primary", Filter: Compare("class", ComparatorEquals, "primary")}
	anyRoad := &Rule{Name: "any road", Filter: Has("class")}
	zoomedIn := &Rule{Name: "zoomed in", MaxScaleDenominator: 10000}
	fallback := &Rule{Name: "else", ElseFilter: true}

	fts := &FeatureTypeStyle{Rules: []*Rule{primary, anyRoad, zoomedIn, fallback}}

	primaryRoad := &testFeature{attrs: map[string]interface{}{"class": "primary"}}
	unclassified := &testFeature{attrs: map[string]interface{}{}}

	assert.Equal(t, []*Rule{primary, anyRoad, zoomedIn}, fts.MatchingRules(primaryRoad, 5000))
	assert.Equal(t, []*Rule{primary, anyRoad}, fts.MatchingRules(primaryRoad, 50000))
	assert.Equal(t, []*Rule{zoomedIn}, fts.MatchingRules(unclassified, 5000))
	assert.Equal(t, []*Rule{fallback}, fts.MatchingRules(unclassified, 50000))

	fts.FilterMode = FilterModeFirst
	assert.Equal(t, []*Rule{primary}, fts.MatchingRules(primaryRoad, 5000))
}

func TestStyle_SelectLayersAndReset(t *testing.T) {
	style := NewStyle(256, 256)
	for _, name := range []string{"layerA", "layerB", "layerC", "layerD"} {
		style.Layers = append(style.Layers, NewLayer(name))
	}
	style.Layers[3].Active = false

	status := func() []bool {
		var active []bool
		for _, layer := range style.Layers {
			active = append(active, layer.Active)
		}
		return active
	}

	style.SelectLayers(SelectorFunc(func(name string) LayerStatus {
		switch name {
		case "layerA":
			return LayerStatusExclude
		case "layerD":
			return LayerStatusInclude
		}
		return LayerStatusDefault
	}))
	assert.Equal(t, []bool{false, true, true, true}, status())

	// a second selection still resets to the original statuses
	style.SelectLayers(SelectorFunc(func(name string) LayerStatus {
		return LayerStatusExclude
	}))
	assert.Equal(t, []bool{false, false, false, false}, status())

	style.ResetLayers()
	assert.Equal(t, []bool{true, true, true, false}, status())
}

func TestStyle_Copy(t *testing.T) {
	style := NewBuiltinStyle(256, 256)

	copied := style.Copy()
	copied.Layers[0].Active = false
	copied.Layers = copied.Layers[:1]
	copied.BufferSize = 0

	assert.True(t, style.Layers[0].Active)
	assert.Len(t, style.Layers, 6)
	assert.Equal(t, 64, style.BufferSize)
	assert.Same(t, style.Styles["water"], copied.Styles["water"])
}

func TestStyle_Validate(t *testing.T) {
	style := NewStyle(256, 256)
	assert.NoError(t, style.Validate())

	style.Layers = append(style.Layers, &Layer{Name: "bad", MinScaleDenominator: 10, MaxScaleDenominator: 5})
	assert.Error(t, style.Validate())

	assert.Error(t, NewStyle(0, 256).Validate())
}
