package output

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/natefinch/atomic"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// systemClipboard implements Clipboard using system commands
type systemClipboard struct {
	fallback io.Writer
}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	cmd := c.findClipboardCommand()
	if cmd == nil {
		// No clipboard tool found, just print
		_, err := io.WriteString(c.fallback, text)
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the appropriate clipboard command for the system
func (c *systemClipboard) findClipboardCommand() *exec.Cmd {
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

// commandExists checks if a command is available in PATH
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Sink
// ============================================================================

// Mode represents where converted output goes
type Mode string

const (
	ModePrint Mode = "print"
	ModeFile  Mode = "file"
	ModeCopy  Mode = "copy"
)

// ParseMode validates a mode name; empty means print
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case "", ModePrint:
		return ModePrint, nil
	case ModeFile, ModeCopy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (supported: print, file, copy)", s)
	}
}

// Sink delivers rendered output according to its mode
type Sink struct {
	mode      Mode
	path      string
	writer    io.Writer
	clipboard Clipboard
}

// NewSink creates a sink. path is only used in file mode.
func NewSink(mode Mode, path string) *Sink {
	return &Sink{
		mode:      mode,
		path:      path,
		writer:    os.Stdout,
		clipboard: &systemClipboard{fallback: os.Stdout},
	}
}

// WithWriter sets the destination for print mode (useful for testing)
func (s *Sink) WithWriter(w io.Writer) *Sink {
	s.writer = w
	return s
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (s *Sink) WithClipboard(c Clipboard) *Sink {
	s.clipboard = c
	return s
}

// Mode returns the configured mode
func (s *Sink) Mode() Mode {
	return s.mode
}

// Write delivers content. File writes replace the target atomically.
func (s *Sink) Write(content string) error {
	switch s.mode {
	case ModeFile:
		if s.path == "" {
			return fmt.Errorf("file output needs a path")
		}
		if err := atomic.WriteFile(s.path, strings.NewReader(content)); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
		return nil
	case ModeCopy:
		if err := s.clipboard.Copy(content); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		return nil
	default: // print
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		_, err := io.WriteString(s.writer, content)
		return err
	}
}
