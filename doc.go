// Package figsave exports an in-memory figure to disk twice: once in the
// native editable .fig format (re-loadable and re-editable later), and
// once as a rendered image sized to match the figure's on-screen
// dimensions exactly.
//
// The CLI lives in cmd/figsave; this root package exposes the exporter as
// a Go API so that callers can embed figure export in their own tools.
//
// # Quick start
//
//	fig := figure.New("helix", 8, 6)
//	fig.Plot3("helix", xs, ys, zs)
//
//	exp, err := figsave.New(figsave.Config{
//	    Prompter: prompt.Stdio(),
//	    Prefs:    prefs.NewFile(prefsPath),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := exp.Export(fig,
//	    figsave.FigureFile("out/helix.fig"),
//	    figsave.ImageFile("out/helix.png"),
//	    figsave.Resolution(300),
//	)
//
// # Path resolution
//
// Each of the two destinations is resolved in priority order: explicit
// option, the figure's cached preference from a previous export, then an
// interactive save prompt. Cancelling a prompt aborts the export silently
// (Result.Aborted is true, the error is nil), mirroring a dismissed save
// dialog. With no Prompter configured the exporter is headless: a missing
// path fails fast instead of prompting.
//
// Resolved paths are cached for reuse: the figure remembers its own .fig
// and image filenames in its metadata slots, and the preference store
// remembers the last-used directory across figures. The [Clear] option
// resets the per-figure cache before resolution, forcing fresh prompts
// for that call; it does not skip the export.
//
// # Formats
//
// The image format follows the destination extension: .pdf, .jpg, .png,
// .emf, .eps, or .tiff by default. The extension table and the render
// device flags are parallel, index-aligned tables; [New] rejects a
// mismatched pair with [ErrFormatTableMismatch].
//
// # Logging
//
// Pass a [Logger] implementation in [Config.Logger] to receive progress
// and warning messages. A nil Logger silences all output.
package figsave
