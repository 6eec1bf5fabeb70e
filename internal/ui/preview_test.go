package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/gubarz/mdline/internal/markdown"
	"github.com/gubarz/mdline/internal/termrender"
)

// step feeds msg to the model and runs any returned command once
func step(t *testing.T, m previewModel, msg tea.Msg) (previewModel, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm := next.(previewModel)
	if cmd == nil {
		return pm, nil
	}
	return pm, cmd()
}

func TestPreviewRendersAfterResize(t *testing.T) {
	var widths []int
	load := func(width int) (string, error) {
		widths = append(widths, width)
		return "rendered body", nil
	}

	m := newPreviewModel("/tmp/notes.md", load)
	if got := m.View(); got != "loading..." {
		t.Fatalf("View before resize = %q", got)
	}

	m, msg := step(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if _, ok := msg.(renderedMsg); !ok {
		t.Fatalf("resize should trigger a render, got %T", msg)
	}
	m, _ = step(t, m, msg)

	view := m.View()
	for _, want := range []string{"notes.md", "rendered body", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if len(widths) != 1 || widths[0] != 60 {
		t.Errorf("loader widths = %v, want [60]", widths)
	}
	if m.renders != 1 {
		t.Errorf("renders = %d, want 1", m.renders)
	}
}

func TestPreviewReloadAndError(t *testing.T) {
	fail := false
	load := func(width int) (string, error) {
		if fail {
			return "", errors.New("read failed")
		}
		return "ok", nil
	}

	m := newPreviewModel("doc.md", load)
	m, msg := step(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, _ = step(t, m, msg)

	fail = true
	m, msg = step(t, m, reloadMsg{})
	m, _ = step(t, m, msg)

	if m.err == nil {
		t.Fatal("expected render error to be kept")
	}
	if !strings.Contains(m.View(), "read failed") {
		t.Errorf("footer should show the error:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "ok") {
		t.Errorf("last good content should stay visible:\n%s", m.View())
	}
}

func TestPreviewQuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	}

	for _, key := range keys {
		t.Run(key.String(), func(t *testing.T) {
			m := newPreviewModel("doc.md", func(int) (string, error) { return "", nil })
			m, msg := step(t, m, key)
			if _, ok := msg.(tea.QuitMsg); !ok {
				t.Errorf("key %q returned %T, want tea.QuitMsg", key.String(), msg)
			}
			if m.View() != "" {
				t.Errorf("view after quit = %q", m.View())
			}
		})
	}
}

func TestPreviewOpenKeyStartsViewer(t *testing.T) {
	m := newPreviewModel("doc.md", func(int) (string, error) { return "x", nil })
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	if cmd == nil {
		t.Fatal("o should return a command that runs the viewer")
	}
}

func TestPreviewEditorClosed(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantRender bool
		wantErr    string
	}{
		{name: "clean exit re-renders", wantRender: true},
		{name: "failure shows in footer", err: errors.New("exit status 1"), wantErr: "open doc.md: exit status 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPreviewModel("/tmp/doc.md", func(int) (string, error) { return "x", nil })
			m, _ = step(t, m, tea.WindowSizeMsg{Width: 60, Height: 10})

			m, msg := step(t, m, editorClosedMsg{err: tt.err})
			_, rendered := msg.(renderedMsg)
			if rendered != tt.wantRender {
				t.Errorf("rendered = %v, want %v (msg %T)", rendered, tt.wantRender, msg)
			}
			if tt.wantErr == "" {
				if m.err != nil {
					t.Errorf("unexpected error %v", m.err)
				}
				return
			}
			if m.err == nil || m.err.Error() != tt.wantErr {
				t.Errorf("err = %v, want %q", m.err, tt.wantErr)
			}
			if !strings.Contains(m.View(), tt.wantErr) {
				t.Errorf("footer should show the error:\n%s", m.View())
			}
		})
	}
}

func TestViewerCommandUsesConfiguredEditor(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("editor", "nano")

	c := viewerCommand("/tmp/doc.md")
	want := []string{"nano", "/tmp/doc.md"}
	if strings.Join(c.Args, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", c.Args, want)
	}
}

func TestRenderBeforeResizeIsNoop(t *testing.T) {
	m := newPreviewModel("doc.md", func(int) (string, error) { return "x", nil })
	if cmd := m.render(); cmd != nil {
		t.Error("render before the first resize should be nil")
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n- item"), 0o644); err != nil {
		t.Fatal(err)
	}

	load := FileLoader(path, markdown.Options{}, termrender.DefaultStyles())
	out, err := load(40)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "item") {
		t.Errorf("unexpected render:\n%s", out)
	}

	_, err = FileLoader(filepath.Join(t.TempDir(), "missing.md"), markdown.Options{}, termrender.DefaultStyles())(40)
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer message", 8, "a lon..."},
		{"tiny", 2, "tiny"},
		{"héllo wörld", 8, "héllo..."},
		{"日本語のテキスト", 6, "日本語..."},
		{"héllo", 5, "héllo"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}
