package figsave

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hellenic-development/figsave/pkg/figure"
	"github.com/hellenic-development/figsave/pkg/prefs"
	"github.com/hellenic-development/figsave/pkg/prompt"
	"github.com/hellenic-development/figsave/pkg/render"
)

// Version is the current figsave release.
const Version = "0.1.0"

// Sentinel errors the exporter returns for invalid inputs.
var (
	// ErrInvalidFigure means the first argument was nil or a closed figure.
	ErrInvalidFigure = errors.New("figsave: not a live figure")
	// ErrFormatTableMismatch means the extension table and the device flag
	// table differ in length. It indicates a packaging defect, not a
	// runtime condition, and is checked before any figure is touched.
	ErrFormatTableMismatch = errors.New("figsave: extension and device flag tables differ in length")
)

// defaultDPI is the render resolution when no resolution option is given.
const defaultDPI = 600

// Metadata keys for the per-figure cached filenames, and the preference
// key for the process-wide last-used directory.
const (
	metaFigureFile = "SavedFigureFile"
	metaImageFile  = "SavedImageFile"
	prefLastDir    = "LastFigureSaveDir"
)

// The default format tables: recognized image extensions and, index for
// index, the device flags the render primitive takes. The two slices must
// stay aligned; New verifies it.
var (
	defaultExtensions = []string{".pdf", ".jpg", ".png", ".emf", ".eps", ".tiff"}
	defaultDevices    = []string{
		render.DevicePDF,
		render.DeviceJPEG,
		render.DevicePNG,
		render.DeviceMeta,
		render.DeviceEPSC,
		render.DeviceTIFF,
	}
	formatNames = map[string]string{
		render.DevicePDF:  "vector PDF",
		render.DeviceJPEG: "JPEG raster",
		render.DevicePNG:  "PNG raster",
		render.DeviceMeta: "enhanced metafile",
		render.DeviceEPSC: "encapsulated PostScript (color)",
		render.DeviceTIFF: "TIFF raster",
	}
)

// defaultImageExt seeds the image save prompt when the figure has no
// cached image path.
const defaultImageExt = ".png"

// Logger receives progress and warning messages. A nil Logger means
// silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Config wires the exporter's collaborators. Zero fields get defaults:
// the canvas renderer, the headless prompter, an in-memory preference
// store, no logging, and the default format tables.
type Config struct {
	Renderer render.Renderer
	Prompter prompt.Prompter
	Prefs    prefs.Store
	Logger   Logger

	// Extensions and Devices override the format tables. They are
	// parallel, aligned by index, and must have equal length.
	Extensions []string
	Devices    []string
}

// format pairs one recognized image extension with its device flag.
type format struct {
	ext    string
	device string
}

// Exporter writes figures to disk in the editable format and as rendered
// images. Construct with New.
type Exporter struct {
	renderer render.Renderer
	prompter prompt.Prompter
	prefs    prefs.Store
	logger   Logger
	formats  []format
}

// New validates the configuration and returns an Exporter. A format table
// length mismatch fails with ErrFormatTableMismatch.
func New(cfg Config) (*Exporter, error) {
	exts, devices := cfg.Extensions, cfg.Devices
	if exts == nil && devices == nil {
		exts, devices = defaultExtensions, defaultDevices
	}
	if len(exts) != len(devices) {
		return nil, fmt.Errorf("%w: %d extensions, %d device flags", ErrFormatTableMismatch, len(exts), len(devices))
	}

	e := &Exporter{
		renderer: cfg.Renderer,
		prompter: cfg.Prompter,
		prefs:    cfg.Prefs,
		logger:   cfg.Logger,
		formats:  make([]format, 0, len(exts)),
	}
	for i := range exts {
		e.formats = append(e.formats, format{ext: strings.ToLower(exts[i]), device: devices[i]})
	}
	if e.renderer == nil {
		e.renderer = render.Canvas{}
	}
	if e.prompter == nil {
		e.prompter = prompt.None{}
	}
	if e.prefs == nil {
		e.prefs = prefs.NewMemory()
	}
	return e, nil
}

// Result reports what an export produced. Aborted is true when the user
// cancelled a prompt; the export stops early with no error in that case,
// and any path resolved before the cancellation is still reported.
type Result struct {
	FigurePath string
	ImagePath  string
	DPI        int
	Aborted    bool
}

// Export writes fig twice: to the editable .fig format and to a rendered
// image sized to match the figure's on-screen dimensions. Paths come from
// the options, from the figure's cached preferences, or from interactive
// prompts, in that order. See the package documentation for the full
// resolution rules.
func (e *Exporter) Export(fig *figure.Figure, opts ...Option) (*Result, error) {
	if !fig.IsLive() {
		return nil, ErrInvalidFigure
	}

	req, warnings := e.resolveOptions(opts)
	for _, w := range warnings {
		e.logWarn("%s", w)
	}

	// Clear forces fresh prompts for this call; argument-supplied paths
	// still take priority below.
	if req.clear {
		fig.SetMeta(metaFigureFile, "")
		fig.SetMeta(metaImageFile, "")
	}

	res := &Result{DPI: req.dpi}

	figPath, err := e.resolveFigurePath(fig, req.figPath)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			res.Aborted = true
			return res, nil
		}
		return nil, err
	}

	if err := e.saveFigure(fig, figPath); err != nil {
		return nil, err
	}
	res.FigurePath = figPath

	imgPath, err := e.resolveImagePath(fig, req.imgPath, figPath)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			res.Aborted = true
			return res, nil
		}
		return nil, err
	}
	res.ImagePath = imgPath

	fig.SyncPaperToScreen()

	ok, err := e.prepareImageDir(fig, imgPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		res.Aborted = true
		return res, nil
	}

	if err := e.renderImage(fig, imgPath, req.dpi); err != nil {
		return nil, err
	}
	return res, nil
}

// resolveFigurePath picks the .fig destination: explicit option, cached
// figure preference, then an interactive prompt seeded with the last-used
// directory.
func (e *Exporter) resolveFigurePath(fig *figure.Figure, explicit string) (string, error) {
	if explicit != "" {
		return ensureExt(explicit, figure.Ext), nil
	}
	if cached := fig.Meta(metaFigureFile); cached != "" {
		return cached, nil
	}

	seed := e.prefs.Get(prefLastDir)
	if seed != "" {
		seed = filepath.Join(seed, defaultBaseName(fig)+figure.Ext)
	} else {
		seed = defaultBaseName(fig) + figure.Ext
	}
	chosen, err := e.prompter.SaveFile(prompt.SaveFileRequest{
		Title:   "Save figure as",
		Seed:    seed,
		Filters: []prompt.Filter{{Ext: figure.Ext, Description: "editable figure"}},
	})
	if err != nil {
		if errors.Is(err, prompt.ErrUnavailable) {
			return "", fmt.Errorf("figsave: no figure path given and no prompt available: %w", err)
		}
		return "", err
	}
	return ensureExt(chosen, figure.Ext), nil
}

// saveFigure creates the destination directory, persists the last-used
// directory preference, serializes the figure, and caches the path on the
// figure itself.
func (e *Exporter) saveFigure(fig *figure.Figure, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create figure directory %q: %w", dir, err)
	}
	if err := e.prefs.Set(prefLastDir, dir); err != nil {
		e.logWarn("could not persist last-used directory: %v", err)
	}
	e.logInfo("Saving figure to %s...", path)
	if err := fig.Save(path); err != nil {
		return err
	}
	fig.SetMeta(metaFigureFile, path)
	return nil
}

// resolveImagePath picks the image destination: explicit option, cached
// image preference, then an interactive prompt offering the format table
// as filters. The chosen path is cached on the figure before rendering.
func (e *Exporter) resolveImagePath(fig *figure.Figure, explicit, figPath string) (string, error) {
	path := explicit
	if path == "" {
		if cached := fig.Meta(metaImageFile); cached != "" && e.format(strings.ToLower(filepath.Ext(cached))) != nil {
			path = cached
		}
	}
	if path == "" {
		filters := make([]prompt.Filter, 0, len(e.formats))
		for _, f := range e.formats {
			filters = append(filters, prompt.Filter{Ext: f.ext, Description: formatNames[f.device]})
		}
		seed := strings.TrimSuffix(figPath, filepath.Ext(figPath)) + e.defaultExt()
		chosen, err := e.prompter.SaveFile(prompt.SaveFileRequest{
			Title:   "Save figure image as",
			Seed:    seed,
			Filters: filters,
		})
		if err != nil {
			if errors.Is(err, prompt.ErrUnavailable) {
				return "", fmt.Errorf("figsave: no image path given and no prompt available: %w", err)
			}
			return "", err
		}
		if e.format(strings.ToLower(filepath.Ext(chosen))) == nil {
			chosen += e.defaultExt()
		}
		path = chosen
	}
	fig.SetMeta(metaImageFile, path)
	return path, nil
}

// prepareImageDir confirms creation of a missing destination directory
// and removes any stale file at the target path. It returns false when
// the user declines directory creation; the cached image preference is
// cleared first so a later retry prompts again.
func (e *Exporter) prepareImageDir(fig *figure.Figure, path string) (bool, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("stat image directory %q: %w", dir, err)
		}
		create, err := e.prompter.Confirm(fmt.Sprintf("Directory %q does not exist. Create it?", dir))
		if err != nil {
			switch {
			case errors.Is(err, prompt.ErrUnavailable):
				// Headless with an explicit path into a new directory:
				// the path itself is the consent, create it.
				e.logInfo("Creating directory %s", dir)
				create = true
			case errors.Is(err, prompt.ErrCancelled):
				create = false
			default:
				return false, err
			}
		}
		if !create {
			fig.SetMeta(metaImageFile, "")
			return false, nil
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("create image directory %q: %w", dir, err)
		}
	}

	// Always a fresh write, never an overwrite in place.
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return false, fmt.Errorf("remove existing image %q: %w", path, err)
		}
	}
	return true, nil
}

// renderImage dispatches to the render primitive with the device flag the
// image extension selects. Render failures are logged with a hint and
// propagated unchanged to the caller.
func (e *Exporter) renderImage(fig *figure.Figure, path string, dpi int) error {
	f := e.format(strings.ToLower(filepath.Ext(path)))
	if f == nil {
		return fmt.Errorf("figsave: no device flag for image extension %q", filepath.Ext(path))
	}
	e.logInfo("Rendering %s (%s, %d dpi)...", path, formatNames[f.device], dpi)
	err := e.renderer.Render(fig, path, f.device, render.ResolutionFlag(dpi), render.FlagNoUI, render.FlagPainters)
	if err != nil {
		e.logError("render failed, target file may be open elsewhere: %v", err)
		return fmt.Errorf("render figure image: %w", err)
	}
	return nil
}

// format returns the table entry for ext, or nil when ext is not a
// recognized image extension.
func (e *Exporter) format(ext string) *format {
	for i := range e.formats {
		if e.formats[i].ext == ext {
			return &e.formats[i]
		}
	}
	return nil
}

// defaultExt is the extension the image prompt seeds with: the table's
// PNG entry when present, otherwise the first entry.
func (e *Exporter) defaultExt() string {
	for _, f := range e.formats {
		if f.ext == defaultImageExt {
			return f.ext
		}
	}
	if len(e.formats) > 0 {
		return e.formats[0].ext
	}
	return defaultImageExt
}

// ensureExt appends ext when path does not already end in it.
func ensureExt(path, ext string) string {
	if strings.EqualFold(filepath.Ext(path), ext) {
		return path
	}
	return path + ext
}

// defaultBaseName derives a prompt seed filename from the figure name.
func defaultBaseName(fig *figure.Figure) string {
	name := strings.TrimSpace(fig.Name)
	if name == "" {
		return "figure"
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "figure"
	}
	return b.String()
}

func (e *Exporter) logInfo(f string, a ...any) {
	if e.logger != nil {
		e.logger.Infof(f, a...)
	}
}

func (e *Exporter) logWarn(f string, a ...any) {
	if e.logger != nil {
		e.logger.Warnf(f, a...)
	}
}

func (e *Exporter) logError(f string, a ...any) {
	if e.logger != nil {
		e.logger.Errorf(f, a...)
	}
}
