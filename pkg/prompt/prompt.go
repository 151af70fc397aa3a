// Package prompt abstracts the interactive save dialogs the exporter falls
// back to when no explicit path is supplied. Cancellation and headless
// operation are explicit results, not control-flow exits.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ErrCancelled is returned when the user dismisses a prompt without
// choosing anything.
var ErrCancelled = errors.New("prompt: cancelled by user")

// ErrUnavailable is returned by prompter implementations that cannot
// interact with a user, such as None in headless runs.
var ErrUnavailable = errors.New("prompt: no interactive prompt available")

// Filter describes one selectable file type in a save dialog.
type Filter struct {
	Ext         string // ".png"
	Description string // "PNG raster"
}

// SaveFileRequest seeds a save dialog.
type SaveFileRequest struct {
	Title   string
	Seed    string   // suggested path, may be a bare directory
	Filters []Filter // empty = no filtering
}

// Prompter asks the user for file paths and confirmations.
type Prompter interface {
	// SaveFile returns the chosen path, ErrCancelled when dismissed, or
	// ErrUnavailable when no user can be asked.
	SaveFile(req SaveFileRequest) (string, error)
	// Confirm asks a yes/no question. Dismissal counts as "no".
	Confirm(question string) (bool, error)
}

// None is a Prompter for headless use: every prompt fails with
// ErrUnavailable so missing paths surface as errors instead of hanging.
type None struct{}

func (None) SaveFile(SaveFileRequest) (string, error) { return "", ErrUnavailable }
func (None) Confirm(string) (bool, error)             { return false, ErrUnavailable }

// Terminal is a line-oriented Prompter on an input/output stream pair,
// standing in for a GUI file picker. An empty answer cancels.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal returns a Terminal prompter reading from in and writing to
// out. Pass os.Stdin and os.Stdout for interactive CLI use.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Stdio returns a Terminal prompter bound to the process stdio.
func Stdio() *Terminal {
	return NewTerminal(os.Stdin, os.Stdout)
}

func (t *Terminal) SaveFile(req SaveFileRequest) (string, error) {
	cyan := color.New(color.FgCyan)
	if req.Title != "" {
		cyan.Fprintf(t.out, "%s\n", req.Title)
	}
	for _, f := range req.Filters {
		fmt.Fprintf(t.out, "  %-6s %s\n", f.Ext, f.Description)
	}
	if req.Seed != "" {
		fmt.Fprintf(t.out, "Save as [%s] (empty cancels): ", req.Seed)
	} else {
		fmt.Fprint(t.out, "Save as (empty cancels): ")
	}

	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		// Accepting the seed requires typing it; a bare Enter dismisses
		// the dialog, matching GUI save-dialog escape behavior.
		return "", ErrCancelled
	}
	return line, nil
}

func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", question)
	line, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read prompt answer: %w", err)
	}
	if err != nil && line == "" {
		// EOF with nothing typed behaves like a dismissed dialog.
		return "", ErrCancelled
	}
	return strings.TrimSpace(line), nil
}
