// Package figure defines the in-memory figure model: line series in two and
// three dimensions, on-screen and paper geometry, per-figure metadata slots,
// and the native .fig serialization.
package figure

import (
	"fmt"
	"math"
)

// Ext is the file extension of the native editable figure format.
const Ext = ".fig"

// Default on-screen figure size in inches.
const (
	DefaultWidth  = 8.0
	DefaultHeight = 6.0
)

// Units names a unit of measure for paper geometry.
type Units string

// Inches is the only paper unit the exporter produces; figures created by
// other tooling may carry different units until SyncPaperToScreen runs.
const (
	Inches      Units = "inches"
	Centimeters Units = "centimeters"
	Points      Units = "points"
)

// Point is a 2D data point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3 is a 3D data point.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Line is a 2D line series with its display properties.
type Line struct {
	Name   string  `json:"name,omitempty"`
	Color  string  `json:"color,omitempty"` // hex, e.g. "#0072bd"
	Width  float64 `json:"width,omitempty"` // stroke width in points
	Points []Point `json:"points"`
}

// Line3 is a 3D line series. It is projected onto the drawing plane
// through the figure's view angles at render time.
type Line3 struct {
	Name   string   `json:"name,omitempty"`
	Color  string   `json:"color,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Points []Point3 `json:"points"`
}

// View holds the camera angles for 3D projection, in degrees.
type View struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// PaperLayout describes the physical page the figure prints onto.
type PaperLayout struct {
	Units    Units      `json:"units"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Position [4]float64 `json:"position"` // x, y, w, h
}

// Figure represents a displayable chart and its visual properties.
// The zero value is not usable; construct with New or Load.
type Figure struct {
	Name   string `json:"name,omitempty"`
	XLabel string `json:"xlabel,omitempty"`
	YLabel string `json:"ylabel,omitempty"`
	ZLabel string `json:"zlabel,omitempty"`

	// On-screen size in inches.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Paper PaperLayout `json:"paper"`
	View  View        `json:"view"`

	// FilePath is the .fig file the figure was last saved to or loaded
	// from; empty for figures that never touched disk.
	FilePath string `json:"filePath,omitempty"`

	Lines  []Line  `json:"lines,omitempty"`
	Lines3 []Line3 `json:"lines3,omitempty"`

	// Metadata holds generic string-valued slots attached to the figure,
	// the exporter keeps its cached filenames here. Access through Meta
	// and SetMeta so the map is initialized lazily.
	Metadata map[string]string `json:"metadata,omitempty"`

	closed bool
}

// New creates a live figure with the given name and on-screen size in
// inches. Non-positive dimensions fall back to the defaults. The view
// starts at the conventional 3D vantage point (azimuth -37.5, elevation 30).
func New(name string, width, height float64) *Figure {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Figure{
		Name:   name,
		Width:  width,
		Height: height,
		View:   View{Azimuth: -37.5, Elevation: 30},
		Paper: PaperLayout{
			Units:  Inches,
			Width:  width,
			Height: height,
		},
	}
}

// IsLive reports whether the figure is still open. A closed figure cannot
// be exported.
func (f *Figure) IsLive() bool {
	return f != nil && !f.closed
}

// Close marks the figure as dead. Further exports fail validation.
func (f *Figure) Close() {
	if f != nil {
		f.closed = true
	}
}

// Meta returns the metadata slot for key, or "" when unset.
func (f *Figure) Meta(key string) string {
	return f.Metadata[key]
}

// SetMeta stores val in the metadata slot for key. An empty val keeps the
// slot present but blank, matching "cleared" preference semantics.
func (f *Figure) SetMeta(key, val string) {
	if f.Metadata == nil {
		f.Metadata = make(map[string]string)
	}
	f.Metadata[key] = val
}

// AddLine appends a 2D line series.
func (f *Figure) AddLine(l Line) {
	f.Lines = append(f.Lines, l)
}

// Plot3 appends a 3D line series built from parallel coordinate slices.
// It returns an error when the slices differ in length.
func (f *Figure) Plot3(name string, xs, ys, zs []float64) error {
	if len(xs) != len(ys) || len(ys) != len(zs) {
		return fmt.Errorf("plot3: coordinate slices differ in length (%d, %d, %d)", len(xs), len(ys), len(zs))
	}
	pts := make([]Point3, len(xs))
	for i := range xs {
		pts[i] = Point3{X: xs[i], Y: ys[i], Z: zs[i]}
	}
	f.Lines3 = append(f.Lines3, Line3{Name: name, Points: pts})
	return nil
}

// SyncPaperToScreen sets the paper geometry to exactly match the on-screen
// size: units become inches, paper size equals screen size, and the paper
// position pins the drawable area to the page origin with no margin. The
// exported image then frames the figure the way the screen does.
func (f *Figure) SyncPaperToScreen() {
	f.Paper.Units = Inches
	f.Paper.Width = f.Width
	f.Paper.Height = f.Height
	f.Paper.Position = [4]float64{0, 0, f.Width, f.Height}
}

// Project maps a 3D data point onto the 2D drawing plane using an
// orthographic projection through the figure's view angles.
func (f *Figure) Project(p Point3) Point {
	az := f.View.Azimuth * math.Pi / 180
	el := f.View.Elevation * math.Pi / 180
	sa, ca := math.Sincos(az)
	se, ce := math.Sincos(el)
	return Point{
		X: -p.X*sa + p.Y*ca,
		Y: -p.X*ca*se - p.Y*sa*se + p.Z*ce,
	}
}

// Bounds returns the bounding box of all series after projecting 3D data
// through the current view. The second result is false for a figure with
// no data points.
func (f *Figure) Bounds() (min, max Point, ok bool) {
	min = Point{X: math.Inf(1), Y: math.Inf(1)}
	max = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(p Point) {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		ok = true
	}
	for _, l := range f.Lines {
		for _, p := range l.Points {
			grow(p)
		}
	}
	for _, l := range f.Lines3 {
		for _, p := range l.Points {
			grow(f.Project(p))
		}
	}
	return min, max, ok
}
