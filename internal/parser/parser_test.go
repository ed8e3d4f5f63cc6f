package parser

import (
	"reflect"
	"testing"
)

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "nothing here", "nothing here"},
		{"bold stars", "Hello **world**", "Hello <strong>world</strong>"},
		{"bold underscores", "__x__ y", "<strong>x</strong> y"},
		{"italic", "an *em* and _em_", "an <em>em</em> and <em>em</em>"},
		{"non greedy", "**a** and **b**", "<strong>a</strong> and <strong>b</strong>"},
		{"link", "see [docs](https://example.com)", `see <a href="https://example.com">docs</a>`},
		{"inline code", "run `go test`", "run <code>go test</code>"},
		{"unmatched markers", "2 * 3 = 6", "2 * 3 = 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatInline(tt.in); got != tt.want {
				t.Errorf("FormatInline(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`a < b && c > "d" 'e'`)
	want := `a &lt; b &amp;&amp; c &gt; &quot;d&quot; 'e'`
	if got != want {
		t.Errorf("EscapeHTML() = %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Block
	}{
		{
			name: "h1 dropped and bold paragraph",
			body: "# Title\n## Intro\nHello **world**",
			want: []Block{
				{Kind: BlockHeading, Level: 2, Text: "Intro"},
				{Kind: BlockParagraph, Text: "Hello <strong>world</strong>"},
			},
		},
		{
			name: "blank line splits same-type lists",
			body: "- a\n- b\n\n- c",
			want: []Block{
				{Kind: BlockList, Items: []string{"a", "b"}},
				{Kind: BlockList, Items: []string{"c"}},
			},
		},
		{
			name: "switching list kind closes list",
			body: "1. one\n2. two\n* three",
			want: []Block{
				{Kind: BlockList, Ordered: true, Items: []string{"one", "two"}},
				{Kind: BlockList, Items: []string{"three"}},
			},
		},
		{
			name: "code block escapes and keeps markers literal",
			body: "```go\nif a < b {\n**not bold**\n```",
			want: []Block{
				{
					Kind:  BlockCode,
					Lines: []string{"if a < b {", "**not bold**"},
					Text:  "if a &lt; b {<br>**not bold**",
				},
			},
		},
		{
			name: "fence closes open list",
			body: "- a\n```\nx\n```",
			want: []Block{
				{Kind: BlockList, Items: []string{"a"}},
				{Kind: BlockCode, Lines: []string{"x"}, Text: "x"},
			},
		},
		{
			name: "unterminated fence dropped",
			body: "para\n```\nlost",
			want: []Block{
				{Kind: BlockParagraph, Text: "para"},
			},
		},
		{
			name: "quote rule and crlf",
			body: "> quoted *text*\r\n---\r\n***",
			want: []Block{
				{Kind: BlockQuote, Text: "quoted <em>text</em>"},
				{Kind: BlockRule},
				{Kind: BlockRule},
			},
		},
		{
			name: "paragraph flushes list",
			body: "- a\ntext",
			want: []Block{
				{Kind: BlockList, Items: []string{"a"}},
				{Kind: BlockParagraph, Text: "text"},
			},
		},
		{
			name: "indented markers stay paragraph text",
			body: "  - x\n  1. one\n  > q\n  ```\nafter",
			want: []Block{
				{Kind: BlockParagraph, Text: "- x"},
				{Kind: BlockParagraph, Text: "1. one"},
				{Kind: BlockParagraph, Text: FormatInline("> q")},
				{Kind: BlockParagraph, Text: "```"},
				{Kind: BlockParagraph, Text: "after"},
			},
		},
		{
			name: "indented line inside fence kept verbatim",
			body: "```\n  - x\n```",
			want: []Block{
				{Kind: BlockCode, Lines: []string{"  - x"}, Text: "  - x"},
			},
		},
		{
			name: "images become placeholders",
			body: "![Alt](./img/a.png)\n![[b.jpg|300]]",
			want: []Block{
				{Kind: BlockImage, Text: "Alt", Src: "./img/a.png", Alt: "Alt"},
				{Kind: BlockImage, Text: "", Src: "b.jpg"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.body, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() =\n%#v\nwant\n%#v", got, tt.want)
			}
		})
	}
}

func TestParseImageHandler(t *testing.T) {
	var seen []string
	handler := func(src, alt string) string {
		seen = append(seen, src)
		return "[" + src + "]"
	}

	blocks := Parse("intro\n![a](x.png)\n![b](https://cdn/y.png)", handler)

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if blocks[1].Text != "[x.png]" || blocks[2].Text != "[https://cdn/y.png]" {
		t.Errorf("placeholders = %q, %q", blocks[1].Text, blocks[2].Text)
	}
	if !reflect.DeepEqual(seen, []string{"x.png", "https://cdn/y.png"}) {
		t.Errorf("handler calls = %v", seen)
	}
}

func TestRenderHTML(t *testing.T) {
	blocks := []Block{
		{Kind: BlockHeading, Level: 3, Text: "Sub"},
		{Kind: BlockParagraph, Text: "p"},
		{Kind: BlockList, Ordered: true, Items: []string{"a", "b"}},
		{Kind: BlockCode, Text: "x<br>y"},
		{Kind: BlockRule},
		{Kind: BlockImage, Text: "【a.png】"},
	}
	want := "<h2>Sub</h2>\n<p>p</p>\n<ol><li>a</li><li>b</li></ol>\n<blockquote>x<br>y</blockquote>\n<hr>\n<p>【a.png】</p>"
	if got := RenderHTML(blocks); got != want {
		t.Errorf("RenderHTML() =\n%s\nwant\n%s", got, want)
	}
}
