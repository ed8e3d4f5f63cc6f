// Package output delivers generated text to stdout, the clipboard or a file.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// ErrNoClipboard is returned when no clipboard tool is installed
var ErrNoClipboard = errors.New("no clipboard tool found (wl-copy, xclip, xsel, pbcopy)")

// systemClipboard shells out to whichever clipboard tool is installed
type systemClipboard struct{}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	cmd := clipboardCommand()
	if cmd == nil {
		return ErrNoClipboard
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func clipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Output Modes
// ============================================================================

// Mode represents where output goes
type Mode string

const (
	Print Mode = "print"
	Copy  Mode = "copy"
	File  Mode = "file"
)

// ParseMode accepts print, copy or file; anything else is an error
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", Print:
		return Print, nil
	case Copy, File:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (print, copy, file)", s)
	}
}

// Sink writes output according to a mode
type Sink struct {
	out       io.Writer
	clipboard Clipboard
}

// New creates a sink printing to stdout and copying via the system clipboard
func New() *Sink {
	return &Sink{out: os.Stdout, clipboard: &systemClipboard{}}
}

// WithWriter sets where printed output goes
func (s *Sink) WithWriter(w io.Writer) *Sink {
	s.out = w
	return s
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (s *Sink) WithClipboard(c Clipboard) *Sink {
	s.clipboard = c
	return s
}

// Emit delivers text. File mode writes to path; copy falls back to printing
// when no clipboard is available.
func (s *Sink) Emit(text string, mode Mode, path string) error {
	switch mode {
	case File:
		if path == "" {
			return fmt.Errorf("file output needs a path")
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	case Copy:
		if err := s.clipboard.Copy(text); err == nil {
			return nil
		}
		fallthrough
	default:
		_, err := fmt.Fprintln(s.out, text)
		return err
	}
}
