package styling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFeature struct {
	attrs        map[string]interface{}
	geometryType GeometryType
}

func (f *testFeature) Attribute(key string) (interface{}, bool) {
	v, ok := f.attrs[key]
	return v, ok
}

func (f *testFeature) GeometryType() GeometryType {
	return f.geometryType
}

func TestParseFilter(t *testing.T) {
	primaryRoad := &testFeature{
		attrs:        map[string]interface{}{"class": "primary", "rank": int64(4), "oneway": uint64(0), "name": "High Street"},
		geometryType: GeometryTypeLineString,
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"[class] = 'primary'", true},
		{"[class] == \"primary\"", true},
		{"[class] != 'primary'", false},
		{"[class] <> 'secondary'", true},
		{"[rank] >= 4", true},
		{"[rank] > 4", false},
		{"[rank] < 10 and [rank] > 1", true},
		{"[rank] = '4'", true},
		{"[class] = 'secondary' or [rank] <= -1", false},
		{"[class] = 'secondary' or ([rank] = 4 and [name] = 'High Street')", true},
		{"not [oneway]", true},
		{"[oneway]", false},
		{"[name]", true},
		{"[missing]", false},
		{"[missing] = null", true},
		{"[missing] != 'x'", true},
		{"[missing] > 1", false},
		{"[class] in ('primary', 'secondary')", true},
		{"[class] not in ('primary', 'secondary')", false},
		{"[mapnik::geometry_type] = linestring", true},
		{"[mapnik::geometry_type] = polygon", false},
		{"[mapnik::geometry_type] != 3", true},
		{"[class] = 'primary' && ![oneway]", true},
		{"true", true},
		{"false or [rank] = 4.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			filter, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter.Matches(primaryRoad), filter.String())
		})
	}
}

func TestParseFilter_errors(t *testing.T) {
	exprs := []string{
		"[class",
		"[class] = 'primary",
		"[class] = ",
		"([class] = 'a'",
		"[class] = 'a' [rank]",
		"[class] ~ 'a'",
		"[mapnik::geometry_type] = circle",
		"[mapnik::geometry_type] > 1",
		"= 'a'",
	}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseFilter(expr)
			assert.Error(t, err)
		})
	}
}

func TestTextExpression(t *testing.T) {
	feature := &testFeature{attrs: map[string]interface{}{"name": "A1", "ref": int64(12)}}

	expr, err := ParseTextExpression("[name] + ' (' + [ref] + ')'")
	require.NoError(t, err)
	assert.Equal(t, "A1 (12)", expr.Evaluate(feature))

	expr, err = ParseTextExpression("[missing]")
	require.NoError(t, err)
	assert.Equal(t, "", expr.Evaluate(feature))

	_, err = ParseTextExpression("[name] [ref]")
	assert.Error(t, err)

	assert.Equal(t, "A1 - 12", ParseFieldTemplate("{name} - {ref}").Evaluate(feature))
	assert.Equal(t, "plain", ParseFieldTemplate("plain").Evaluate(feature))
}
