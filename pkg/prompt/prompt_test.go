package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTerminalSaveFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "typed path", input: "plots/curve.png\n", want: "plots/curve.png"},
		{name: "surrounding whitespace trimmed", input: "  curve.fig  \n", want: "curve.fig"},
		{name: "empty answer cancels", input: "\n", wantErr: ErrCancelled},
		{name: "immediate EOF cancels", input: "", wantErr: ErrCancelled},
		{name: "answer without trailing newline", input: "curve.pdf", want: "curve.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader(tt.input), &out)

			got, err := term.SaveFile(SaveFileRequest{
				Title:   "Save figure as",
				Seed:    "figure.fig",
				Filters: []Filter{{Ext: ".fig", Description: "editable figure"}},
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SaveFile() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SaveFile() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("SaveFile() = %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), ".fig") {
				t.Error("prompt output does not show the filter table")
			}
		})
	}
}

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes spelled out", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "default is no", input: "\n", want: false},
		{name: "garbage is no", input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader(tt.input), &out)
			got, err := term.Confirm("Create directory?")
			if err != nil {
				t.Fatalf("Confirm() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNoneIsUnavailable(t *testing.T) {
	if _, err := (None{}).SaveFile(SaveFileRequest{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("None.SaveFile error = %v, want ErrUnavailable", err)
	}
	if _, err := (None{}).Confirm("?"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("None.Confirm error = %v, want ErrUnavailable", err)
	}
}
