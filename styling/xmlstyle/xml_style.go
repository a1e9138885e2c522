// Package xmlstyle loads styles from Mapnik-like XML documents.
package xmlstyle

import (
	"encoding/xml"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/orb"
)

type xmlParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlMap struct {
	XMLName         xml.Name       `xml:"Map"`
	SRS             string         `xml:"srs,attr"`
	BackgroundColor string         `xml:"background-color,attr"`
	BufferSize      string         `xml:"buffer-size,attr"`
	MaximumExtent   string         `xml:"maximum-extent,attr"`
	FontDirectory   string         `xml:"font-directory,attr"`
	Parameters      []xmlParameter `xml:"Parameters>Parameter"`
	Styles          []xmlStyle     `xml:"Style"`
	Layers          []xmlLayer     `xml:"Layer"`
}

type xmlStyle struct {
	Name       string    `xml:"name,attr"`
	FilterMode string    `xml:"filter-mode,attr"`
	Rules      []xmlRule `xml:"Rule"`
}

type xmlRule struct {
	Name                string          `xml:"name,attr"`
	Filter              string          `xml:"Filter"`
	ElseFilter          *struct{}       `xml:"ElseFilter"`
	MinScaleDenominator string          `xml:"MinScaleDenominator"`
	MaxScaleDenominator string          `xml:"MaxScaleDenominator"`
	Symbolizers         []xmlSymbolizer `xml:",any"`
}

type xmlSymbolizer struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
}

type xmlLayer struct {
	Name                    string         `xml:"name,attr"`
	SRS                     string         `xml:"srs,attr"`
	Status                  string         `xml:"status,attr"`
	MinimumScaleDenominator string         `xml:"minimum-scale-denominator,attr"`
	MaximumScaleDenominator string         `xml:"maximum-scale-denominator,attr"`
	StyleNames              []string       `xml:"StyleName"`
	Datasource              []xmlParameter `xml:"Datasource>Parameter"`
}

// ParseFile loads a style from a file. Relative datasource files are resolved against the style's directory.
func ParseFile(path string) (*styling.Style, errorsx.Error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vtmap.NewParseError(errorsx.Wrap(err, "path", path))
	}
	defer f.Close()

	style, err := parse(f, filepath.Dir(path))
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	return style, nil
}

// Parse loads a style from an XML document
func Parse(reader io.Reader) (*styling.Style, errorsx.Error) {
	return parse(reader, "")
}

func parse(reader io.Reader, baseDir string) (*styling.Style, errorsx.Error) {
	doc := new(xmlMap)
	err := xml.NewDecoder(reader).Decode(doc)
	if err != nil {
		return nil, vtmap.NewParseError(errorsx.Wrap(err))
	}

	style, err := doc.toStyle(baseDir)
	if err != nil {
		return nil, vtmap.NewParseError(err)
	}

	return style, nil
}

func (m *xmlMap) toStyle(baseDir string) (*styling.Style, errorsx.Error) {
	var err error

	style := styling.NewStyle(styling.DefaultWidth, styling.DefaultHeight)
	if m.SRS != "" {
		style.SRS = m.SRS
	}

	if m.BackgroundColor != "" {
		style.Background, err = parseColor(m.BackgroundColor)
		if err != nil {
			return nil, errorsx.Wrap(err, "attribute", "background-color")
		}
	}

	style.BufferSize, err = parseInt(m.BufferSize, 0)
	if err != nil {
		return nil, errorsx.Wrap(err, "attribute", "buffer-size")
	}

	if m.MaximumExtent != "" {
		maxExtent, err := parseBound(m.MaximumExtent)
		if err != nil {
			return nil, errorsx.Wrap(err, "attribute", "maximum-extent")
		}
		style.MaxExtent = &maxExtent
	}

	style.FontDirectory = resolvePath(baseDir, m.FontDirectory)

	for _, param := range m.Parameters {
		value := strings.TrimSpace(param.Value)
		switch param.Name {
		case "scale":
			style.Scale, err = parseFloat(value, 1)
		case "scale-denominator":
			style.ScaleDenominator, err = parseFloat(value, 0)
		case "buffer-size":
			style.BufferSize, err = parseInt(value, style.BufferSize)
		case "id", "name":
			style.ID = value
		}
		if err != nil {
			return nil, errorsx.Wrap(err, "parameter", param.Name)
		}
	}

	for _, xs := range m.Styles {
		if _, ok := style.Styles[xs.Name]; ok {
			return nil, errorsx.Errorf("duplicate style name %q", xs.Name)
		}

		fts, err := xs.toFeatureTypeStyle()
		if err != nil {
			return nil, errorsx.Wrap(err, "style", xs.Name)
		}
		style.Styles[xs.Name] = fts
	}

	for _, xl := range m.Layers {
		layer, err := xl.toLayer(baseDir)
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", xl.Name)
		}
		style.Layers = append(style.Layers, layer)
	}

	err = style.Validate()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return style, nil
}

func (xs xmlStyle) toFeatureTypeStyle() (*styling.FeatureTypeStyle, errorsx.Error) {
	fts := &styling.FeatureTypeStyle{
		Name:       xs.Name,
		FilterMode: styling.FilterModeAll,
	}

	switch xs.FilterMode {
	case "", string(styling.FilterModeAll):
	case string(styling.FilterModeFirst):
		fts.FilterMode = styling.FilterModeFirst
	default:
		return nil, errorsx.Errorf("unknown filter-mode %q", xs.FilterMode)
	}

	for i, xr := range xs.Rules {
		rule, err := xr.toRule()
		if err != nil {
			return nil, errorsx.Wrap(err, "rule", i)
		}
		fts.Rules = append(fts.Rules, rule)
	}

	return fts, nil
}

func (xr xmlRule) toRule() (*styling.Rule, errorsx.Error) {
	var err error

	rule := &styling.Rule{
		Name:       xr.Name,
		ElseFilter: xr.ElseFilter != nil,
	}

	if strings.TrimSpace(xr.Filter) != "" {
		rule.Filter, err = styling.ParseFilter(xr.Filter)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
	}

	rule.MinScaleDenominator, err = parseFloat(xr.MinScaleDenominator, 0)
	if err != nil {
		return nil, errorsx.Wrap(err, "element", "MinScaleDenominator")
	}

	rule.MaxScaleDenominator, err = parseFloat(xr.MaxScaleDenominator, 0)
	if err != nil {
		return nil, errorsx.Wrap(err, "element", "MaxScaleDenominator")
	}

	for _, xsym := range xr.Symbolizers {
		symbolizer, err := xsym.toSymbolizer()
		if err != nil {
			return nil, errorsx.Wrap(err, "symbolizer", xsym.XMLName.Local)
		}
		if symbolizer != nil {
			rule.Symbolizers = append(rule.Symbolizers, symbolizer)
		}
	}

	return rule, nil
}

func (xl xmlLayer) toLayer(baseDir string) (*styling.Layer, errorsx.Error) {
	var err error

	if xl.Name == "" {
		return nil, errorsx.Errorf("layer without a name")
	}

	layer := styling.NewLayer(xl.Name, xl.StyleNames...)
	layer.SRS = xl.SRS

	switch strings.ToLower(xl.Status) {
	case "", "on", "true", "1":
	case "off", "false", "0":
		layer.Active = false
	default:
		return nil, errorsx.Errorf("unknown status %q", xl.Status)
	}

	layer.MinScaleDenominator, err = parseFloat(xl.MinimumScaleDenominator, 0)
	if err != nil {
		return nil, errorsx.Wrap(err, "attribute", "minimum-scale-denominator")
	}

	layer.MaxScaleDenominator, err = parseFloat(xl.MaximumScaleDenominator, 0)
	if err != nil {
		return nil, errorsx.Wrap(err, "attribute", "maximum-scale-denominator")
	}

	if len(xl.Datasource) > 0 {
		layer.Datasource = make(styling.DatasourceParams)
		for _, param := range xl.Datasource {
			layer.Datasource[param.Name] = strings.TrimSpace(param.Value)
		}
		if _, ok := layer.Datasource["base"]; !ok && baseDir != "" {
			layer.Datasource["base"] = baseDir
		}
	}

	return layer, nil
}

func parseColor(s string) (color.Color, errorsx.Error) {
	c, err := styling.ParseColor(s)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func parseFloat(s string, defaultValue float64) (float64, errorsx.Error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errorsx.Wrap(err)
	}
	return f, nil
}

func parseInt(s string, defaultValue int) (int, errorsx.Error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errorsx.Wrap(err)
	}
	return i, nil
}

func parseFloatList(s string) ([]float64, errorsx.Error) {
	var values []float64
	for _, fragment := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		f, err := parseFloat(fragment, 0)
		if err != nil {
			return nil, err
		}
		values = append(values, f)
	}
	return values, nil
}

func parseBound(s string) (orb.Bound, errorsx.Error) {
	values, err := parseFloatList(s)
	if err != nil {
		return orb.Bound{}, err
	}
	if len(values) != 4 {
		return orb.Bound{}, errorsx.Errorf("expected 4 values (minx,miny,maxx,maxy) but got %d", len(values))
	}
	return orb.Bound{Min: orb.Point{values[0], values[1]}, Max: orb.Point{values[2], values[3]}}, nil
}

func resolvePath(baseDir, path string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
