package maprenderer

import (
	"context"
	"image/color"
	"math"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/styling/mapboxglstyle"
	"github.com/jamesrr39/vtrender/styling/xmlstyle"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/jamesrr39/vtrender/vtrenderer"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// RenderOpts are the options of a single render call
type RenderOpts struct {
	// Scale renders at a fixed scale denominator
	Scale float64
	// ScaleFactor multiplies line widths, text sizes and marker sizes. 0 means 1.
	ScaleFactor float64
	// Format of the encoded image, e.g. "png", "png256" or "jpeg80". Defaults to png256.
	Format string
}

func (opts RenderOpts) format() string {
	if opts.Format == "" {
		return canvas.DefaultFormat
	}
	return opts.Format
}

// Map is a render context: a style, a canvas size, a view extent and optionally the vector tile to render.
// A Map is not safe for concurrent use; use Clone to render the same style from several goroutines.
type Map struct {
	env         *Environment
	style       *styling.Style
	extent      *orb.Bound
	tileRequest *vtmap.TileRequest
	lastErr     string
}

// New makes an 800x600 map with an empty style, in the default environment
func New() *Map {
	return NewWithSize(styling.DefaultWidth, styling.DefaultHeight)
}

func NewWithSize(width, height int) *Map {
	return NewWithEnvironment(defaultEnvironment, width, height)
}

func NewWithEnvironment(env *Environment, width, height int) *Map {
	return &Map{
		env:   env,
		style: styling.NewStyle(width, height),
	}
}

// Clone copies the map's style, size and extent. The clone has no vector data attached.
func (m *Map) Clone() *Map {
	clone := &Map{
		env:   m.env,
		style: m.style.Copy(),
	}
	if m.extent != nil {
		extent := *m.extent
		clone.extent = &extent
	}
	return clone
}

// Free drops the vector data and the style. The map can still be used afterwards, as if new.
func (m *Map) Free() {
	m.ClearVectorData()
	m.style = styling.NewStyle(m.Width(), m.Height())
	m.extent = nil
	m.lastErr = ""
}

// Load reads a style document from a file. Files ending in .json are read as Mapbox GL styles, everything else as XML.
func (m *Map) Load(path string) errorsx.Error {
	m.resetLastError()

	style, err := LoadStyleFile(path)
	if err != nil {
		return m.fail(err)
	}

	m.setStyle(style)
	return nil
}

// LoadString reads a style document. Documents starting with "{" are read as Mapbox GL styles, everything else as XML.
func (m *Map) LoadString(doc string) errorsx.Error {
	m.resetLastError()

	var style *styling.Style
	var err errorsx.Error
	if strings.HasPrefix(strings.TrimSpace(doc), "{") {
		style, err = mapboxglstyle.Parse(strings.NewReader(doc))
	} else {
		style, err = xmlstyle.Parse(strings.NewReader(doc))
	}
	if err != nil {
		return m.fail(err)
	}

	m.setStyle(style)
	return nil
}

// setStyle replaces the style, keeping the map's canvas size
func (m *Map) setStyle(style *styling.Style) {
	style.Width = m.Width()
	style.Height = m.Height()
	m.style = style

	if style.FontDirectory == "" {
		return
	}

	// a missing font directory does not stop the style loading
	err := m.env.RegisterFonts(style.FontDirectory)
	if err != nil {
		m.env.Logger().Warn("could not register font directory of style %q: %s", style.ID, err)
	}
}

// Style is the loaded style. Changes to it affect the following renders.
func (m *Map) Style() *styling.Style {
	return m.style
}

func (m *Map) Resize(width, height int) {
	m.style.Width = width
	m.style.Height = height
}

func (m *Map) Width() int {
	return m.style.Width
}

func (m *Map) Height() int {
	return m.style.Height
}

func (m *Map) SRS() string {
	return m.style.SRS
}

func (m *Map) SetSRS(srs string) {
	m.style.SRS = srs
}

// ScaleDenominator is the scale denominator the next render without a forced scale would use.
// It is 0 while there is neither vector data nor a view extent to derive it from.
func (m *Map) ScaleDenominator() float64 {
	var extent orb.Bound
	switch {
	case m.tileRequest != nil:
		extent = vtmap.TileExtent(m.tileRequest.Coord, uint(m.Width()))
	case m.extent != nil:
		// in the map's own units, degrees for geographic maps
		extent = *m.extent
	case m.style.ScaleDenominator > 0:
	default:
		return 0
	}

	groundUnitsPerPixel := (extent.Right() - extent.Left()) / float64(m.Width())
	return styling.EffectiveScaleDenominator(m.style, 0, groundUnitsPerPixel)
}

// Extent is the view extent set by ZoomAll or ZoomTo, in the map's reference system
func (m *Map) Extent() (orb.Bound, bool) {
	if m.extent == nil {
		return orb.Bound{}, false
	}
	return *m.extent, true
}

// ZoomAll sets the view extent to the maximum extent, or else to the combined extents of the datasource layers, or else to the vector tile.
func (m *Map) ZoomAll() errorsx.Error {
	m.resetLastError()

	if m.style.MaxExtent != nil {
		m.zoomToBound(*m.style.MaxExtent)
		return nil
	}

	var combined orb.Bound
	found := false
	for _, layer := range m.style.Layers {
		if !layer.Active || len(layer.Datasource) == 0 {
			continue
		}

		source, err := m.env.datasources.Create(layer.Datasource)
		if err != nil {
			return m.fail(vtmap.NewRenderError(errorsx.Wrap(err, "layer", layer.Name)))
		}

		envelope := source.Envelope()
		if envelope.IsZero() {
			continue
		}
		if !found {
			combined = envelope
			found = true
			continue
		}
		combined = combined.Union(envelope)
	}

	if found {
		if vtmap.IsGeographicSRS(m.style.SRS) {
			combined = mercatorBoundToLonLat(combined)
		}
		m.zoomToBound(combined)
		return nil
	}

	if m.tileRequest != nil {
		m.zoomToBound(m.fromMercator(vtmap.TileExtent(m.tileRequest.Coord, uint(m.Width()))))
		return nil
	}

	return m.fail(vtmap.NewRenderError(errorsx.Errorf("could not zoom to combined layer extents using zoom_all: no layer has an extent")))
}

// ZoomTo sets the view extent, in the map's reference system. The box is grown to the aspect ratio of the map.
func (m *Map) ZoomTo(minx, miny, maxx, maxy float64) {
	m.zoomToBound(orb.Bound{Min: orb.Point{math.Min(minx, maxx), math.Min(miny, maxy)}, Max: orb.Point{math.Max(minx, maxx), math.Max(miny, maxy)}})
}

func (m *Map) zoomToBound(bound orb.Bound) {
	fitted := fitAspect(bound, m.Width(), m.Height())
	m.extent = &fitted
}

func (m *Map) BackgroundColor() color.NRGBA {
	return color.NRGBAModel.Convert(m.style.GetBackground()).(color.NRGBA)
}

func (m *Map) SetBackgroundColor(c color.NRGBA) {
	m.style.Background = c
}

// SelectLayers switches layers on or off. ResetLayers restores the statuses from before the first call.
func (m *Map) SelectLayers(selector styling.LayerSelector) {
	m.style.SelectLayers(selector)
}

func (m *Map) ResetLayers() {
	m.style.ResetLayers()
}

func (m *Map) SetMaxExtent(minx, miny, maxx, maxy float64) {
	m.style.MaxExtent = &orb.Bound{Min: orb.Point{minx, miny}, Max: orb.Point{maxx, maxy}}
}

func (m *Map) ResetMaxExtent() {
	m.style.MaxExtent = nil
}

// SetBufferSize sets how many pixels beyond each edge of the tile features are drawn from
func (m *Map) SetBufferSize(size int) {
	m.style.BufferSize = size
}

// SetVectorData attaches the vector tile the following renders draw from, releasing the previous one
func (m *Map) SetVectorData(tileRequest *vtmap.TileRequest) {
	if m.tileRequest != nil && m.tileRequest != tileRequest {
		m.tileRequest.Free()
	}
	m.tileRequest = tileRequest
}

func (m *Map) ClearVectorData() {
	m.SetVectorData(nil)
}

// LastError is the message of the last failed operation. It is cleared by the next fallible call.
func (m *Map) LastError() string {
	return m.lastErr
}

func (m *Map) resetLastError() {
	m.lastErr = ""
}

func (m *Map) fail(err errorsx.Error) errorsx.Error {
	m.lastErr = err.Error()
	return err
}

// Render renders the map and encodes the image in the options' format
func (m *Map) Render(opts RenderOpts) ([]byte, errorsx.Error) {
	return m.RenderContext(context.Background(), opts)
}

func (m *Map) RenderContext(ctx context.Context, opts RenderOpts) ([]byte, errorsx.Error) {
	cnv, err := m.RenderImageContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer m.env.allocator.Release(cnv)

	data, err := canvas.Encode(cnv, opts.format())
	if err != nil {
		return nil, m.fail(err)
	}

	return data, nil
}

// RenderImage renders the map onto a new canvas, which the caller owns
func (m *Map) RenderImage(opts RenderOpts) (*canvas.Canvas, errorsx.Error) {
	return m.RenderImageContext(context.Background(), opts)
}

// RenderImageContext paints the background, then the vector tile if one is attached, or else the datasource layers over the view extent.
// On failure it returns a nil canvas, and the message is also kept for LastError.
func (m *Map) RenderImageContext(ctx context.Context, opts RenderOpts) (*canvas.Canvas, errorsx.Error) {
	m.resetLastError()

	cnv, err := m.env.allocator.Acquire(m.Width(), m.Height())
	if err != nil {
		return nil, m.fail(vtmap.NewRenderError(err))
	}

	cnv.Fill(m.style.Background)

	renderOptions := vtrenderer.RenderOptions{
		ScaleDenominator: opts.Scale,
		ScaleFactor:      opts.ScaleFactor,
	}

	switch {
	case m.tileRequest != nil:
		err = m.env.compositor().Composite(ctx, cnv, m.style, m.tileRequest, renderOptions)
	case m.extent != nil:
		err = m.env.compositor().RenderExtent(ctx, cnv, m.style, m.renderExtent(), renderOptions)
	}
	if err != nil {
		m.env.allocator.Release(cnv)
		return nil, m.fail(err)
	}

	return cnv, nil
}

// RenderToFile renders the map and writes the encoded image to a file
func (m *Map) RenderToFile(opts RenderOpts, path string) errorsx.Error {
	data, err := m.Render(opts)
	if err != nil {
		return err
	}

	writeErr := m.env.fs.WriteFile(path, data, 0644)
	if writeErr != nil {
		return m.fail(vtmap.NewEncodingError(errorsx.Wrap(writeErr, "path", path)))
	}

	return nil
}

// renderExtent is the view extent in spherical mercator, which features are drawn in
func (m *Map) renderExtent() orb.Bound {
	if m.extent == nil {
		return vtmap.WorldExtent()
	}
	if vtmap.IsGeographicSRS(m.style.SRS) {
		return lonLatBoundToMercator(*m.extent)
	}
	return *m.extent
}

func (m *Map) fromMercator(bound orb.Bound) orb.Bound {
	if vtmap.IsGeographicSRS(m.style.SRS) {
		return mercatorBoundToLonLat(bound)
	}
	return bound
}

func mercatorBoundToLonLat(bound orb.Bound) orb.Bound {
	lonLat := vtmap.MercatorToLonLat(bound)
	return orb.Bound{Min: orb.Point{lonLat.MinLon, lonLat.MinLat}, Max: orb.Point{lonLat.MaxLon, lonLat.MaxLat}}
}

func lonLatBoundToMercator(bound orb.Bound) orb.Bound {
	return vtmap.LonLatToMercator(osm.Bounds{
		MinLat: math.Max(bound.Min.Lat(), -vtmap.MaxMercatorLat),
		MaxLat: math.Min(bound.Max.Lat(), vtmap.MaxMercatorLat),
		MinLon: bound.Min.Lon(),
		MaxLon: bound.Max.Lon(),
	})
}

// fitAspect grows the shorter side of the box around its centre, so the box has the canvas's aspect ratio
func fitAspect(bound orb.Bound, width, height int) orb.Bound {
	if width <= 0 || height <= 0 {
		return bound
	}

	boxWidth := bound.Right() - bound.Left()
	boxHeight := bound.Top() - bound.Bottom()
	if boxWidth <= 0 || boxHeight <= 0 {
		return bound
	}

	ratio := float64(width) / float64(height)
	center := bound.Center()
	if boxWidth/boxHeight > ratio {
		boxHeight = boxWidth / ratio
	} else {
		boxWidth = boxHeight * ratio
	}

	return orb.Bound{
		Min: orb.Point{center.X() - boxWidth/2, center.Y() - boxHeight/2},
		Max: orb.Point{center.X() + boxWidth/2, center.Y() + boxHeight/2},
	}
}
