package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ============================================================================
// Article Item
// ============================================================================

// Item is one article offered by the picker
type Item struct {
	Path   string
	Title  string
	Slug   string
	Status string
	Type   string
}

// matches checks if the item contains every search word (case-insensitive)
func (it Item) matches(words []string) bool {
	hay := strings.ToLower(it.Title + " " + it.Slug + " " + filepath.Base(it.Path))
	for _, w := range words {
		if !strings.Contains(hay, w) {
			return false
		}
	}
	return true
}

// ============================================================================
// Debounce
// ============================================================================

// filterMsg triggers filtering after debounce
type filterMsg struct{}

func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return filterMsg{}
	})
}

// ============================================================================
// Picker Model
// ============================================================================

// pickerModel is the Bubble Tea model for choosing articles to publish
type pickerModel struct {
	width     int
	height    int
	textInput textinput.Model

	items    []Item
	filtered []int // indexes into items
	marked   map[int]bool
	cursor   int
	offset   int

	done     bool
	quitting bool
}

func newPickerModel(items []Item) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	m := pickerModel{
		textInput: ti,
		items:     items,
		marked:    make(map[int]bool),
	}
	m.filter()
	return m
}

// Init implements tea.Model
func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	case filterMsg:
		m.filter()
		return m, nil
	}

	prev := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() != prev {
		return m, tea.Batch(cmd, debounceFilter())
	}
	return m, cmd
}

// handleKey processes navigation and selection keys; anything else goes to
// the filter input
func (m *pickerModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit, true
	case "enter":
		if len(m.marked) == 0 && m.cursor < len(m.filtered) {
			m.marked[m.filtered[m.cursor]] = true
		}
		m.done = len(m.marked) > 0
		return tea.Quit, true
	case "tab":
		m.toggle()
		m.moveCursor(1)
		return nil, true
	case "ctrl+a":
		m.toggleAll()
		return nil, true
	case "up", "ctrl+p":
		m.moveCursor(-1)
		return nil, true
	case "down", "ctrl+n":
		m.moveCursor(1)
		return nil, true
	case "pgup":
		m.moveCursor(-10)
		return nil, true
	case "pgdown":
		m.moveCursor(10)
		return nil, true
	}
	return nil, false
}

func (m *pickerModel) toggle() {
	if m.cursor >= len(m.filtered) {
		return
	}
	idx := m.filtered[m.cursor]
	if m.marked[idx] {
		delete(m.marked, idx)
	} else {
		m.marked[idx] = true
	}
}

// toggleAll marks every visible item, or clears them if all are marked
func (m *pickerModel) toggleAll() {
	all := true
	for _, idx := range m.filtered {
		if !m.marked[idx] {
			all = false
			break
		}
	}
	for _, idx := range m.filtered {
		if all {
			delete(m.marked, idx)
		} else {
			m.marked[idx] = true
		}
	}
}

func (m *pickerModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
}

func (m *pickerModel) filter() {
	words := strings.Fields(strings.ToLower(m.textInput.Value()))
	m.filtered = m.filtered[:0]
	for i, it := range m.items {
		if it.matches(words) {
			m.filtered = append(m.filtered, i)
		}
	}
	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
}

// Selection returns the marked items in their original order
func (m pickerModel) Selection() []Item {
	if !m.done {
		return nil
	}
	var out []Item
	for i, it := range m.items {
		if m.marked[i] {
			out = append(out, it)
		}
	}
	return out
}

// ============================================================================
// Rendering
// ============================================================================

// View implements tea.Model
func (m pickerModel) View() string {
	if m.quitting || m.done {
		return ""
	}
	width := max(m.width, 80)
	height := max(m.height, 20)

	preview := m.renderPreview(width)
	const inputLines = 3
	listHeight := max(height-countLines(preview)-inputLines, 3)
	list := m.renderList(listHeight, width)
	padding := max(height-countLines(preview)-countLines(list)-inputLines, 0)

	var b strings.Builder
	b.WriteString(preview)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(m.renderInput(width))
	return b.String()
}

func (m pickerModel) renderPreview(width int) string {
	var b strings.Builder
	if m.cursor < len(m.filtered) {
		it := m.items[m.filtered[m.cursor]]
		b.WriteString(styles.PreviewTitle.Render(it.Title))
		b.WriteString("\n")
		b.WriteString(styles.PreviewPath.Render(it.Path))
		b.WriteString("\n")
		b.WriteString(styles.Meta.Render(fmt.Sprintf("%s · /%s/", it.Type, it.Slug)))
		b.WriteString("\n")
	} else {
		b.WriteString("\n\n\n")
	}
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	return b.String()
}

func (m *pickerModel) renderList(height, width int) string {
	if len(m.filtered) == 0 {
		return ""
	}
	start, end := scrollWindow(m.cursor, len(m.filtered), height, &m.offset)

	var b strings.Builder
	for i := start; i < end; i++ {
		idx := m.filtered[i]
		b.WriteString(m.renderItem(m.items[idx], m.marked[idx], i == m.cursor, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m pickerModel) renderItem(it Item, marked, current bool, width int) string {
	cursor := "  "
	if current {
		cursor = styles.Cursor.Render("> ")
	}
	mark := styles.Dim.Render("○ ")
	if marked {
		mark = styles.Mark.Render("● ")
	}

	status := styles.Status(it.Status).Render(fmt.Sprintf("%-9s", it.Status))
	title := truncateString(it.Title, max(width-lipgloss.Width(status)-8, 10))
	titleStyle := styles.Title
	if current {
		titleStyle = styles.WithSelection(titleStyle)
	}
	return cursor + mark + status + " " + titleStyle.Render(title)
}

func (m pickerModel) renderInput(width int) string {
	var b strings.Builder
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d · %d selected", len(m.filtered), len(m.items), len(m.marked))))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("Tab toggle • Ctrl+A all • Enter publish • ESC exit"))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// ============================================================================
// Run
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	if fi, _ := os.Stdout.Stat(); fi != nil && fi.Mode()&os.ModeCharDevice != 0 {
		return os.Stdin, os.Stdout, func() {}
	}

	var closers []func()
	out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		out = os.Stderr
	} else {
		closers = append(closers, func() { out.Close() })
	}
	in, err = os.OpenFile("/dev/tty", os.O_RDONLY, 0)
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

// RunPicker shows the article picker and returns the chosen items. A nil
// slice with a nil error means the user backed out.
func RunPicker(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no articles found")
	}

	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()
	RefreshStyles()

	p := tea.NewProgram(newPickerModel(items), tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(pickerModel).Selection(), nil
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	*offset = clamp(*offset, 0, max(0, total-height))

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString shortens s to maxLen runes with an ellipsis
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
