package figsave

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hellenic-development/figsave/pkg/figure"
	"github.com/hellenic-development/figsave/pkg/prefs"
	"github.com/hellenic-development/figsave/pkg/prompt"
)

// fakeRenderer records render calls and writes a placeholder file so the
// on-disk outcome can be asserted.
type fakeRenderer struct {
	calls [][]string // dest followed by args, per call
	err   error
}

func (r *fakeRenderer) Render(fig *figure.Figure, dest string, args ...string) error {
	r.calls = append(r.calls, append([]string{dest}, args...))
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(dest, []byte("image"), 0644)
}

// scriptedPrompter serves queued answers and records how often it was
// consulted.
type scriptedPrompter struct {
	saveAnswers  []string // "" means cancel
	confirms     []bool
	saveCalls    int
	confirmCalls int
}

func (p *scriptedPrompter) SaveFile(req prompt.SaveFileRequest) (string, error) {
	p.saveCalls++
	if len(p.saveAnswers) == 0 {
		return "", prompt.ErrCancelled
	}
	answer := p.saveAnswers[0]
	p.saveAnswers = p.saveAnswers[1:]
	if answer == "" {
		return "", prompt.ErrCancelled
	}
	return answer, nil
}

func (p *scriptedPrompter) Confirm(string) (bool, error) {
	p.confirmCalls++
	if len(p.confirms) == 0 {
		return false, nil
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

// recordLogger captures warnings and errors for assertions.
type recordLogger struct {
	infos, warns, errs []string
}

func (l *recordLogger) Infof(f string, a ...any)  { l.infos = append(l.infos, fmt.Sprintf(f, a...)) }
func (l *recordLogger) Warnf(f string, a ...any)  { l.warns = append(l.warns, fmt.Sprintf(f, a...)) }
func (l *recordLogger) Errorf(f string, a ...any) { l.errs = append(l.errs, fmt.Sprintf(f, a...)) }

func newTestExporter(t *testing.T, cfg Config) *Exporter {
	t.Helper()
	if cfg.Renderer == nil {
		cfg.Renderer = &fakeRenderer{}
	}
	if cfg.Prefs == nil {
		cfg.Prefs = prefs.NewMemory()
	}
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return exp
}

func TestNew_FormatTableMismatch(t *testing.T) {
	_, err := New(Config{
		Extensions: []string{".png", ".pdf"},
		Devices:    []string{"-dpng"},
	})
	if !errors.Is(err, ErrFormatTableMismatch) {
		t.Fatalf("New() error = %v, want ErrFormatTableMismatch", err)
	}
}

func TestExport_InvalidFigure(t *testing.T) {
	exp := newTestExporter(t, Config{})

	if _, err := exp.Export(nil); !errors.Is(err, ErrInvalidFigure) {
		t.Errorf("Export(nil) error = %v, want ErrInvalidFigure", err)
	}

	fig := figure.New("f", 8, 6)
	fig.Close()
	if _, err := exp.Export(fig); !errors.Is(err, ErrInvalidFigure) {
		t.Errorf("Export(closed figure) error = %v, want ErrInvalidFigure", err)
	}
}

// permutations returns every ordering of opts.
func permutations(opts []Option) [][]Option {
	if len(opts) <= 1 {
		return [][]Option{append([]Option(nil), opts...)}
	}
	var out [][]Option
	for i := range opts {
		rest := make([]Option, 0, len(opts)-1)
		rest = append(rest, opts[:i]...)
		rest = append(rest, opts[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Option{opts[i]}, p...))
		}
	}
	return out
}

func TestExport_OptionOrderIndependence(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "a.fig")
	imgPath := filepath.Join(dir, "a.png")
	opts := []Option{
		FigureFile(figPath),
		ImageFile(imgPath),
		Resolution(300),
		Clear(),
	}

	for i, perm := range permutations(opts) {
		renderer := &fakeRenderer{}
		exp := newTestExporter(t, Config{Renderer: renderer})
		fig := figure.New("f", 8, 6)

		res, err := exp.Export(fig, perm...)
		if err != nil {
			t.Fatalf("permutation %d: Export() failed: %v", i, err)
		}
		if res.FigurePath != figPath || res.ImagePath != imgPath || res.DPI != 300 {
			t.Errorf("permutation %d: got (%q, %q, %d), want (%q, %q, 300)",
				i, res.FigurePath, res.ImagePath, res.DPI, figPath, imgPath)
		}
		if len(renderer.calls) != 1 {
			t.Fatalf("permutation %d: %d render calls, want 1", i, len(renderer.calls))
		}
		wantArgs := []string{imgPath, "-dpng", "-r300", "-noui", "-painters"}
		got := renderer.calls[0]
		if len(got) != len(wantArgs) {
			t.Fatalf("permutation %d: render args = %v, want %v", i, got, wantArgs)
		}
		for j := range wantArgs {
			if got[j] != wantArgs[j] {
				t.Errorf("permutation %d: render arg %d = %q, want %q", i, j, got[j], wantArgs[j])
			}
		}
	}
}

func TestExport_ExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "out", "curve.fig")
	imgPath := filepath.Join(dir, "out", "curve.png")

	exp := newTestExporter(t, Config{})
	fig := figure.New("curve", 8, 6)

	res, err := exp.Export(fig, FigureFile(figPath), ImageFile(imgPath))
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if res.Aborted {
		t.Fatal("Export() aborted unexpectedly")
	}

	for _, path := range []string{figPath, imgPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output file %s: %v", path, err)
		}
	}
	if got := fig.Meta("SavedImageFile"); got != imgPath {
		t.Errorf("cached image path = %q, want %q", got, imgPath)
	}
	if got := fig.Meta("SavedFigureFile"); got != figPath {
		t.Errorf("cached figure path = %q, want %q", got, figPath)
	}
	if got := fig.FilePath; got != figPath {
		t.Errorf("figure FilePath = %q, want %q", got, figPath)
	}
}

func TestExport_ReusesCachedPaths(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "curve.fig")
	imgPath := filepath.Join(dir, "curve.png")

	prompter := &scriptedPrompter{}
	exp := newTestExporter(t, Config{Prompter: prompter})
	fig := figure.New("curve", 8, 6)

	if _, err := exp.Export(fig, FigureFile(figPath), ImageFile(imgPath)); err != nil {
		t.Fatalf("first Export() failed: %v", err)
	}

	// Second export with no path arguments must reuse the cached paths
	// without prompting.
	res, err := exp.Export(fig)
	if err != nil {
		t.Fatalf("second Export() failed: %v", err)
	}
	if prompter.saveCalls != 0 {
		t.Errorf("prompter consulted %d times, want 0", prompter.saveCalls)
	}
	if res.FigurePath != figPath || res.ImagePath != imgPath {
		t.Errorf("second export paths = (%q, %q), want (%q, %q)",
			res.FigurePath, res.ImagePath, figPath, imgPath)
	}
}

func TestExport_ClearWithExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	firstFig := filepath.Join(dir, "first.fig")
	firstImg := filepath.Join(dir, "first.png")
	secondFig := filepath.Join(dir, "second.fig")
	secondImg := filepath.Join(dir, "second.png")

	exp := newTestExporter(t, Config{})
	fig := figure.New("f", 8, 6)

	if _, err := exp.Export(fig, FigureFile(firstFig), ImageFile(firstImg)); err != nil {
		t.Fatalf("first Export() failed: %v", err)
	}

	// Clear resets the cache but argument-supplied paths still apply.
	res, err := exp.Export(fig, Clear(), FigureFile(secondFig), ImageFile(secondImg))
	if err != nil {
		t.Fatalf("second Export() failed: %v", err)
	}
	if res.FigurePath != secondFig || res.ImagePath != secondImg {
		t.Errorf("export paths = (%q, %q), want (%q, %q)",
			res.FigurePath, res.ImagePath, secondFig, secondImg)
	}
	if got := fig.Meta("SavedImageFile"); got != secondImg {
		t.Errorf("cached image path = %q, want %q", got, secondImg)
	}
}

func TestExport_RenderFailure(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "f.fig")
	imgPath := filepath.Join(dir, "f.png")

	errBoom := errors.New("boom")
	renderer := &fakeRenderer{err: errBoom}
	logger := &recordLogger{}
	exp := newTestExporter(t, Config{Renderer: renderer, Logger: logger})
	fig := figure.New("f", 8, 6)

	_, err := exp.Export(fig, FigureFile(figPath), ImageFile(imgPath))
	if !errors.Is(err, errBoom) {
		t.Fatalf("Export() error = %v, want wrapped %v", err, errBoom)
	}
	if len(logger.errs) == 0 {
		t.Error("expected a diagnostic log before propagating the render error")
	}
	// The image path was cached at resolution time; the failed render
	// must not change it further.
	if got := fig.Meta("SavedImageFile"); got != imgPath {
		t.Errorf("cached image path after render failure = %q, want %q", got, imgPath)
	}
}

func TestExport_ResolutionFlag(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{name: "explicit 300", opts: []Option{Resolution(300)}, want: "-r300"},
		{name: "default 600", opts: nil, want: "-r600"},
		{name: "loose numeric argument", opts: []Option{Arg("150")}, want: "-r150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			renderer := &fakeRenderer{}
			exp := newTestExporter(t, Config{Renderer: renderer})
			fig := figure.New("f", 8, 6)

			opts := append([]Option{
				FigureFile(filepath.Join(dir, "f.fig")),
				ImageFile(filepath.Join(dir, "f.png")),
			}, tt.opts...)
			if _, err := exp.Export(fig, opts...); err != nil {
				t.Fatalf("Export() failed: %v", err)
			}
			args := renderer.calls[0]
			found := false
			for _, a := range args {
				if a == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("render args %v missing %q", args, tt.want)
			}
		})
	}
}

func TestExport_PromptCancelled(t *testing.T) {
	prompter := &scriptedPrompter{saveAnswers: []string{""}}
	renderer := &fakeRenderer{}
	exp := newTestExporter(t, Config{Prompter: prompter, Renderer: renderer})
	fig := figure.New("f", 8, 6)

	res, err := exp.Export(fig)
	if err != nil {
		t.Fatalf("Export() after cancel returned error %v, want nil", err)
	}
	if !res.Aborted {
		t.Error("Result.Aborted = false, want true after cancelled prompt")
	}
	if len(renderer.calls) != 0 {
		t.Errorf("renderer called %d times after cancel, want 0", len(renderer.calls))
	}
}

func TestExport_ImagePromptCancelled(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "f.fig")
	prompter := &scriptedPrompter{saveAnswers: []string{""}}
	renderer := &fakeRenderer{}
	exp := newTestExporter(t, Config{Prompter: prompter, Renderer: renderer})
	fig := figure.New("f", 8, 6)

	res, err := exp.Export(fig, FigureFile(figPath))
	if err != nil {
		t.Fatalf("Export() after cancel returned error %v, want nil", err)
	}
	if !res.Aborted {
		t.Error("Result.Aborted = false, want true")
	}
	// The editable file was already written before the image prompt.
	if _, err := os.Stat(figPath); err != nil {
		t.Errorf("expected figure file despite cancelled image prompt: %v", err)
	}
	if len(renderer.calls) != 0 {
		t.Errorf("renderer called %d times after cancel, want 0", len(renderer.calls))
	}
}

func TestExport_HeadlessMissingPathFails(t *testing.T) {
	exp := newTestExporter(t, Config{Prompter: prompt.None{}})
	fig := figure.New("f", 8, 6)

	if _, err := exp.Export(fig); !errors.Is(err, prompt.ErrUnavailable) {
		t.Errorf("headless Export() error = %v, want wrapped ErrUnavailable", err)
	}
}

func TestExport_UnrecognizedArgumentWarns(t *testing.T) {
	dir := t.TempDir()
	logger := &recordLogger{}
	exp := newTestExporter(t, Config{Logger: logger})
	fig := figure.New("f", 8, 6)

	_, err := exp.Export(fig,
		FigureFile(filepath.Join(dir, "f.fig")),
		ImageFile(filepath.Join(dir, "f.png")),
		Arg("notes.docx"),
	)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if len(logger.warns) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(logger.warns), logger.warns)
	}
}

func TestExport_DirectoryDeclined(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "f.fig")
	imgPath := filepath.Join(dir, "missing", "f.png")

	prompter := &scriptedPrompter{confirms: []bool{false}}
	renderer := &fakeRenderer{}
	exp := newTestExporter(t, Config{Prompter: prompter, Renderer: renderer})
	fig := figure.New("f", 8, 6)

	res, err := exp.Export(fig, FigureFile(figPath), ImageFile(imgPath))
	if err != nil {
		t.Fatalf("Export() returned error %v, want silent abort", err)
	}
	if !res.Aborted {
		t.Error("Result.Aborted = false, want true after declined directory creation")
	}
	// The cache resets so a later retry prompts again.
	if got := fig.Meta("SavedImageFile"); got != "" {
		t.Errorf("cached image path = %q, want cleared", got)
	}
	if len(renderer.calls) != 0 {
		t.Errorf("renderer called %d times, want 0", len(renderer.calls))
	}
}

func TestExport_ReplacesExistingImage(t *testing.T) {
	dir := t.TempDir()
	figPath := filepath.Join(dir, "f.fig")
	imgPath := filepath.Join(dir, "f.png")

	if err := os.WriteFile(imgPath, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	exp := newTestExporter(t, Config{})
	fig := figure.New("f", 8, 6)
	if _, err := exp.Export(fig, FigureFile(figPath), ImageFile(imgPath)); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	data, err := os.ReadFile(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "stale" {
		t.Error("existing image was not replaced by a fresh write")
	}
}

func TestExport_LastDirectoryPreference(t *testing.T) {
	dir := t.TempDir()
	store := prefs.NewMemory()
	exp := newTestExporter(t, Config{Prefs: store})
	fig := figure.New("f", 8, 6)

	_, err := exp.Export(fig,
		FigureFile(filepath.Join(dir, "f.fig")),
		ImageFile(filepath.Join(dir, "f.png")),
	)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if got := store.Get("LastFigureSaveDir"); got != dir {
		t.Errorf("LastFigureSaveDir = %q, want %q", got, dir)
	}
}
