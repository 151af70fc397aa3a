package figsave

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hellenic-development/figsave/pkg/figure"
)

type optionKind int

const (
	optRaw optionKind = iota
	optResolution
	optClear
	optFigurePath
	optImagePath
)

// Option is one export argument. Options are order-independent: the same
// set resolves identically in any permutation.
type Option struct {
	kind optionKind
	path string
	dpi  int
	raw  string
}

// Resolution sets the render resolution in dots per inch. The default is
// 600 when the option is absent.
func Resolution(dpi int) Option {
	return Option{kind: optResolution, dpi: dpi}
}

// Clear resets the figure's cached figure-file and image-file preferences
// before path resolution, forcing fresh prompts for paths not supplied
// explicitly. The export itself still proceeds.
func Clear() Option {
	return Option{kind: optClear}
}

// FigureFile sets the destination for the editable .fig serialization.
func FigureFile(path string) Option {
	return Option{kind: optFigurePath, path: path}
}

// ImageFile sets the destination for the rendered image. The extension
// selects the output format.
func ImageFile(path string) Option {
	return Option{kind: optImagePath, path: path}
}

// Arg wraps a loosely typed argument, classified during the export: a
// numeric value becomes the resolution, the literal "clear" sets the clear
// flag, and any other string is classified by its file extension. Values
// that match nothing are ignored with a warning.
func Arg(raw string) Option {
	return Option{kind: optRaw, raw: raw}
}

// request is the resolved form of an option list.
type request struct {
	dpi     int
	clear   bool
	figPath string
	imgPath string
}

// resolveOptions classifies and merges the option list. The first option
// of each kind wins; later duplicates and unrecognized values produce
// warnings and are otherwise ignored, never an error.
func (e *Exporter) resolveOptions(opts []Option) (request, []string) {
	req := request{dpi: 0}
	var warnings []string

	setDPI := func(dpi int, desc string) {
		if dpi <= 0 {
			warnings = append(warnings, fmt.Sprintf("ignoring non-positive resolution %s", desc))
			return
		}
		if req.dpi != 0 {
			warnings = append(warnings, fmt.Sprintf("ignoring duplicate resolution %s", desc))
			return
		}
		req.dpi = dpi
	}
	setFig := func(path string) {
		if req.figPath != "" {
			warnings = append(warnings, fmt.Sprintf("ignoring duplicate figure path %q", path))
			return
		}
		req.figPath = path
	}
	setImg := func(path string) {
		if req.imgPath != "" {
			warnings = append(warnings, fmt.Sprintf("ignoring duplicate image path %q", path))
			return
		}
		req.imgPath = path
	}

	for _, opt := range opts {
		switch opt.kind {
		case optResolution:
			setDPI(opt.dpi, strconv.Itoa(opt.dpi))
		case optClear:
			req.clear = true
		case optFigurePath:
			setFig(opt.path)
		case optImagePath:
			setImg(opt.path)
		case optRaw:
			e.classify(opt.raw, setDPI, setFig, setImg, &req, &warnings)
		}
	}
	if req.dpi == 0 {
		req.dpi = defaultDPI
	}
	return req, warnings
}

// classify applies the extension-based classification rules to a loosely
// typed argument.
func (e *Exporter) classify(raw string, setDPI func(int, string), setFig, setImg func(string), req *request, warnings *[]string) {
	if dpi, err := strconv.Atoi(raw); err == nil {
		setDPI(dpi, raw)
		return
	}
	if strings.EqualFold(raw, "clear") {
		req.clear = true
		return
	}
	ext := strings.ToLower(filepath.Ext(raw))
	switch {
	case ext == figure.Ext:
		setFig(raw)
	case e.format(ext) != nil:
		setImg(raw)
	default:
		*warnings = append(*warnings, fmt.Sprintf("ignoring unrecognized argument %q", raw))
	}
}
