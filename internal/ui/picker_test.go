package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/postmd/internal/publish"
)

func testItems() []Item {
	return []Item{
		{Path: "/a/go-tips.md", Title: "Go Tips", Slug: "go-tips", Status: "draft", Type: "post"},
		{Path: "/a/about.md", Title: "About", Slug: "about", Status: "published", Type: "page"},
		{Path: "/a/rust.md", Title: "Rust Notes", Slug: "rust-notes", Status: "draft", Type: "post"},
	}
}

func send(m pickerModel, msgs ...tea.Msg) pickerModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(pickerModel)
	}
	return m
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func titles(items []Item) string {
	var out []string
	for _, it := range items {
		out = append(out, it.Title)
	}
	return strings.Join(out, ",")
}

func TestPickerSelection(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
		want string
	}{
		{"enter picks cursor", []tea.Msg{key(tea.KeyDown), key(tea.KeyEnter)}, "About"},
		{"tab marks several", []tea.Msg{key(tea.KeyTab), key(tea.KeyDown), key(tea.KeyTab), key(tea.KeyEnter)}, "Go Tips,Rust Notes"},
		{"tab twice unmarks", []tea.Msg{key(tea.KeyTab), key(tea.KeyUp), key(tea.KeyTab), key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyEnter)}, "Rust Notes"},
		{"ctrl+a marks all", []tea.Msg{key(tea.KeyCtrlA), key(tea.KeyEnter)}, "Go Tips,About,Rust Notes"},
		{"esc backs out", []tea.Msg{key(tea.KeyTab), key(tea.KeyEsc)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := send(newPickerModel(testItems()), tt.keys...)
			if got := titles(m.Selection()); got != tt.want {
				t.Errorf("Selection() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickerFilter(t *testing.T) {
	m := send(newPickerModel(testItems()), typed("rust"), filterMsg{})
	if len(m.filtered) != 1 || m.items[m.filtered[0]].Title != "Rust Notes" {
		t.Fatalf("filtered = %v", m.filtered)
	}
	m = send(m, key(tea.KeyCtrlA), key(tea.KeyEnter))
	if got := titles(m.Selection()); got != "Rust Notes" {
		t.Errorf("Selection() = %q", got)
	}
}

func TestPickerView(t *testing.T) {
	m := send(newPickerModel(testItems()), tea.WindowSizeMsg{Width: 100, Height: 20})
	view := m.View()
	for _, want := range []string{"Go Tips", "About", "3/3 · 0 selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	sum := publish.Summary{}
	sum.Outcomes = []publish.Outcome{
		{Slug: "go-tips", Action: publish.ActionCreate, Message: "https://blog/go-tips/"},
		{File: "broken.md", Action: publish.ActionFail, Message: "no title"},
	}
	sum.Created, sum.Failed = 1, 1

	out := RenderSummary(sum)
	for _, want := range []string{"go-tips", "broken.md", "no title", "2 articles: created 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("abcdef", 4); got != "abc…" {
		t.Errorf("got %q", got)
	}
	if got := truncateString("abc", 4); got != "abc" {
		t.Errorf("got %q", got)
	}
}
