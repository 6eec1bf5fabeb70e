package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/gubarz/mdline/internal/config"
	"github.com/gubarz/mdline/internal/markdown"
	"github.com/gubarz/mdline/internal/richtext"
	"github.com/gubarz/mdline/internal/termrender"
	"github.com/gubarz/mdline/internal/watch"
)

// ============================================================================
// Messages
// ============================================================================

// reloadMsg asks the model to re-read and re-render the file
type reloadMsg struct{}

// renderedMsg carries a finished rendering back to the model
type renderedMsg struct {
	content string
	err     error
}

// editorClosedMsg reports that the external viewer exited
type editorClosedMsg struct {
	err error
}

// Loader renders the previewed document at the given width
type Loader func(width int) (string, error)

// FileLoader reads path and renders it for the terminal
func FileLoader(path string, opts markdown.Options, styles *termrender.StyleManager) Loader {
	return func(width int) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		doc, err := richtext.FromMarkdown(string(data), opts)
		if err != nil {
			return "", err
		}
		return termrender.New(width).WithStyles(styles).Render(doc), nil
	}
}

// ============================================================================
// Preview Model
// ============================================================================

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// previewModel is the Bubble Tea model for the scrollable document preview
type previewModel struct {
	path     string
	load     Loader
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	err      error
	quitting bool
	renders  int
}

func newPreviewModel(path string, load Loader) previewModel {
	return previewModel{path: path, load: load}
}

// Init implements tea.Model. Rendering waits for the first WindowSizeMsg.
func (m previewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := max(msg.Height-2, 1) // title + footer
		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		return m, m.render()

	case reloadMsg:
		return m, m.render()

	case editorClosedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("open %s: %w", filepath.Base(m.path), msg.err)
			return m, nil
		}
		// The file may have been edited
		return m, m.render()

	case renderedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.viewport.SetContent(msg.content)
			m.renders++
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.render()
		case "o":
			return m, openFileCmd(m.path)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// render returns a command that runs the loader off the update loop
func (m previewModel) render() tea.Cmd {
	if !m.ready {
		return nil
	}
	load, width := m.load, m.viewport.Width
	return func() tea.Msg {
		content, err := load(width)
		return renderedMsg{content: content, err: err}
	}
}

// View implements tea.Model
func (m previewModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(filepath.Base(m.path)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m previewModel) renderFooter() string {
	if m.err != nil {
		return errStyle.Render(truncateString(m.err.Error(), m.width))
	}
	help := "↑/↓ scroll • r reload • o open • q quit"
	pct := fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)
	gap := max(m.width-lipgloss.Width(help)-lipgloss.Width(pct), 1)
	return footerStyle.Render(help + strings.Repeat(" ", gap) + pct)
}

// ============================================================================
// Run Preview
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	// If stdout is captured (piped or inside $()), talk to /dev/tty instead
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// PreviewOptions configures RunPreview
type PreviewOptions struct {
	Markdown markdown.Options
	Watch    bool
	Debounce time.Duration
	Logger   *slog.Logger
}

// RunPreview shows path in a scrollable full-screen view until the user quits
func RunPreview(path string, opts PreviewOptions) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()

	// Styles read colours after getTTY sets up the renderer
	styles := termrender.DefaultStyles()
	styles.LoadFromConfig()

	m := newPreviewModel(path, FileLoader(path, opts.Markdown, styles))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))

	if opts.Watch {
		w, err := watch.New(path, opts.Debounce, logger)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := w.Run(ctx, func() { p.Send(reloadMsg{}) }); err != nil {
				logger.Error("watch stopped", "err", err)
			}
		}()
	}

	_, err := p.Run()
	return err
}

// ============================================================================
// Helpers
// ============================================================================

// viewerCommand builds the command that opens the file in the configured
// editor or the system default
func viewerCommand(filePath string) *exec.Cmd {
	if editor := config.GetEditor(); editor != "" {
		return exec.Command(editor, filePath)
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", filePath)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", filePath)
	default: // linux, freebsd, etc.
		return exec.Command("xdg-open", filePath)
	}
}

// openFileCmd suspends the program while the viewer runs
func openFileCmd(filePath string) tea.Cmd {
	return tea.ExecProcess(viewerCommand(filePath), func(err error) tea.Msg {
		return editorClosedMsg{err: err}
	})
}

// truncateString truncates a string to maxLen with ellipsis
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 3 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
