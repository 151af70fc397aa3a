package render

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"

	"github.com/hellenic-development/figsave/pkg/figure"
)

const mmPerInch = 25.4

// axesInset is the fraction of each page edge reserved around the axes
// frame, mirroring the default axes placement of on-screen figures.
const axesInset = 0.10

// Canvas renders figures through the tdewolff/canvas vector library. The
// zero value is ready to use.
type Canvas struct{}

// Render draws fig at its paper size and writes dest in the format the
// device flag selects. The paper geometry must already be synchronized to
// the on-screen size; Render does not resize.
func (Canvas) Render(fig *figure.Figure, dest string, args ...string) error {
	s, err := parseArgs(args)
	if err != nil {
		return err
	}
	if s.device == DeviceMeta {
		return fmt.Errorf("render: enhanced metafile output is not supported on this platform")
	}

	w := fig.Paper.Width * mmPerInch
	h := fig.Paper.Height * mmPerInch
	if w <= 0 || h <= 0 {
		return fmt.Errorf("render: figure has non-positive paper size %gx%g", fig.Paper.Width, fig.Paper.Height)
	}

	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	draw(ctx, fig, w, h)

	var writer canvas.Writer
	dpi := canvas.DPI(float64(s.dpi))
	switch s.device {
	case DevicePNG:
		writer = renderers.PNG(dpi)
	case DeviceJPEG:
		writer = renderers.JPEG(dpi)
	case DeviceTIFF:
		writer = renderers.TIFF(dpi)
	case DevicePDF:
		writer = renderers.PDF()
	case DeviceEPSC:
		writer = renderers.EPS()
	default:
		return fmt.Errorf("render: no writer for device flag %q", s.device)
	}

	if err := c.WriteFile(dest, writer); err != nil {
		return fmt.Errorf("render %s: %w", dest, err)
	}
	return nil
}

// draw paints the page background, the axes frame, and every series,
// scaled so the data bounds fill the axes area.
func draw(ctx *canvas.Context, fig *figure.Figure, w, h float64) {
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	axX := w * axesInset
	axY := h * axesInset
	axW := w * (1 - 2*axesInset)
	axH := h * (1 - 2*axesInset)

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.Black)
	ctx.SetStrokeWidth(0.3)
	ctx.DrawPath(axX, axY, canvas.Rectangle(axW, axH))

	min, max, ok := fig.Bounds()
	if !ok {
		return
	}
	spanX := max.X - min.X
	spanY := max.Y - min.Y
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	toPage := func(p figure.Point) (float64, float64) {
		return axX + (p.X-min.X)/spanX*axW, axY + (p.Y-min.Y)/spanY*axH
	}

	stroke := func(pts []figure.Point, col string, width float64) {
		if len(pts) < 2 {
			return
		}
		if width <= 0 {
			width = 0.5
		}
		path := &canvas.Path{}
		x, y := toPage(pts[0])
		path.MoveTo(x, y)
		for _, p := range pts[1:] {
			x, y = toPage(p)
			path.LineTo(x, y)
		}
		ctx.SetStrokeColor(seriesColor(col))
		ctx.SetStrokeWidth(width)
		ctx.DrawPath(0, 0, path)
	}

	for _, l := range fig.Lines {
		stroke(l.Points, l.Color, l.Width)
	}
	for _, l := range fig.Lines3 {
		pts := make([]figure.Point, len(l.Points))
		for i, p := range l.Points {
			pts[i] = fig.Project(p)
		}
		stroke(pts, l.Color, l.Width)
	}
}

// defaultLine is the first color of the conventional plot color order.
var defaultLine = color.RGBA{R: 0x00, G: 0x72, B: 0xbd, A: 0xff}

// seriesColor parses a #rrggbb series color, falling back to the default
// line color on anything it cannot parse.
func seriesColor(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return defaultLine
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return defaultLine
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
