package parser

import "strings"

// RenderHTML writes blocks as the restricted HTML accepted by the X article
// editor: one element per line, all headings as <h2>, code as a blockquote.
func RenderHTML(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, renderBlock(b))
	}
	return strings.Join(parts, "\n")
}

func renderBlock(b Block) string {
	switch b.Kind {
	case BlockHeading:
		return "<h2>" + b.Text + "</h2>"
	case BlockQuote:
		return "<blockquote>" + b.Text + "</blockquote>"
	case BlockCode:
		return "<blockquote>" + b.Text + "</blockquote>"
	case BlockRule:
		return "<hr>"
	case BlockImage:
		return "<p>" + b.Text + "</p>"
	case BlockList:
		tag := "ul"
		if b.Ordered {
			tag = "ol"
		}
		var sb strings.Builder
		sb.WriteString("<" + tag + ">")
		for _, item := range b.Items {
			sb.WriteString("<li>" + item + "</li>")
		}
		sb.WriteString("</" + tag + ">")
		return sb.String()
	default:
		return "<p>" + b.Text + "</p>"
	}
}
