// Package render defines the figure render primitive: it turns an
// in-memory figure into an image file in the format selected by a device
// flag, at the resolution selected by an -r flag.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hellenic-development/figsave/pkg/figure"
)

// Device flags select the output format, print-driver style.
const (
	DevicePDF  = "-dpdf"  // vector PDF
	DeviceJPEG = "-djpeg" // JPEG raster
	DevicePNG  = "-dpng"  // PNG raster
	DeviceMeta = "-dmeta" // enhanced metafile
	DeviceEPSC = "-depsc" // encapsulated PostScript, color
	DeviceTIFF = "-dtiff" // TIFF raster
)

// Mode flags adjust how the render runs.
const (
	FlagNoUI     = "-noui"     // suppress interactive chrome during render
	FlagPainters = "-painters" // vector-consistent painter's algorithm
)

// DefaultDPI is the resolution used when no -r flag is given.
const DefaultDPI = 600

// ResolutionFlag formats a DPI value as an -r flag.
func ResolutionFlag(dpi int) string {
	return fmt.Sprintf("-r%d", dpi)
}

// Renderer writes fig to dest in the format and resolution the flag args
// select. Implementations fail on unknown flags.
type Renderer interface {
	Render(fig *figure.Figure, dest string, args ...string) error
}

// settings is the parsed form of a render flag list.
type settings struct {
	device   string
	dpi      int
	noUI     bool
	painters bool
}

func parseArgs(args []string) (settings, error) {
	s := settings{dpi: DefaultDPI}
	for _, arg := range args {
		switch {
		case arg == FlagNoUI:
			s.noUI = true
		case arg == FlagPainters:
			s.painters = true
		case strings.HasPrefix(arg, "-d"):
			if s.device != "" {
				return s, fmt.Errorf("render: conflicting device flags %q and %q", s.device, arg)
			}
			switch arg {
			case DevicePDF, DeviceJPEG, DevicePNG, DeviceMeta, DeviceEPSC, DeviceTIFF:
				s.device = arg
			default:
				return s, fmt.Errorf("render: unknown device flag %q", arg)
			}
		case strings.HasPrefix(arg, "-r"):
			dpi, err := strconv.Atoi(strings.TrimPrefix(arg, "-r"))
			if err != nil || dpi <= 0 {
				return s, fmt.Errorf("render: invalid resolution flag %q", arg)
			}
			s.dpi = dpi
		default:
			return s, fmt.Errorf("render: unknown flag %q", arg)
		}
	}
	if s.device == "" {
		return s, fmt.Errorf("render: no device flag given")
	}
	return s, nil
}
