// Package parser turns a Markdown body into a flat sequence of blocks.
//
// It understands a deliberately small subset: headings, paragraphs, flat
// ordered and unordered lists, blockquotes, fenced code, horizontal rules and
// images that sit alone on a line.
package parser

import (
	"regexp"
	"strings"
)

// BlockKind identifies the variant held by a Block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockQuote
	BlockCode
	BlockRule
	BlockImage
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockList:
		return "list"
	case BlockQuote:
		return "blockquote"
	case BlockCode:
		return "code"
	case BlockRule:
		return "rule"
	case BlockImage:
		return "image"
	}
	return "unknown"
}

// Block is one structural unit of the body. Which fields are meaningful
// depends on Kind.
type Block struct {
	Kind BlockKind

	Level int    // Heading: 2..6
	Text  string // Heading, Paragraph, Blockquote: inline-formatted; Code: escaped lines joined by <br>; Image: placeholder

	Ordered bool     // List
	Items   []string // List: inline-formatted items

	Lines []string // Code: raw lines

	Src string // Image: target as written
	Alt string // Image
}

// ImageFunc returns the placeholder text emitted for an image-only line.
type ImageFunc func(src, alt string) string

var (
	headingRe   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	imageLineRe = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)$`)
	embedLineRe = regexp.MustCompile(`^!\[\[([^\]|]+)(?:\|[^\]]*)?\]\]$`)
	unorderedRe = regexp.MustCompile(`^[-*]\s+(.+)$`)
	orderedRe   = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	ruleRe      = regexp.MustCompile(`^[-*_]{3,}\s*$`)
)

// ============================================================================
// State machine
// ============================================================================

type state int

const (
	stateDefault state = iota
	stateCode
	stateList
)

// machine is the parser accumulator. step never mutates its receiver's
// state in place; it returns the successor.
type machine struct {
	state   state
	ordered bool
	items   []string
	code    []string
	blocks  []Block
	images  ImageFunc
}

// Parse folds body line by line into blocks. images may be nil, in which
// case image lines carry their alt text as placeholder.
func Parse(body string, images ImageFunc) []Block {
	if images == nil {
		images = func(_, alt string) string { return alt }
	}

	m := machine{images: images}
	for _, line := range strings.Split(body, "\n") {
		m = m.step(strings.TrimRight(line, "\r"))
	}
	return m.finish()
}

// step folds one line. Fences, quotes and list markers only count at column
// zero; an indented "- x" is paragraph text.
func (m machine) step(line string) machine {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(line, "```") {
		if m.state == stateCode {
			return m.closeCode()
		}
		m = m.flushList()
		m.state = stateCode
		m.code = nil
		return m
	}

	if m.state == stateCode {
		m.code = append(m.code, line)
		return m
	}

	if trimmed == "" {
		return m.flushList()
	}

	if match := imageLineRe.FindStringSubmatch(trimmed); match != nil {
		m = m.flushList()
		alt, src := match[1], strings.TrimSpace(match[2])
		return m.emit(Block{Kind: BlockImage, Text: m.images(src, alt), Src: src, Alt: alt})
	}

	if match := embedLineRe.FindStringSubmatch(trimmed); match != nil {
		m = m.flushList()
		src := strings.TrimSpace(match[1])
		return m.emit(Block{Kind: BlockImage, Text: m.images(src, ""), Src: src})
	}

	if match := headingRe.FindStringSubmatch(trimmed); match != nil {
		m = m.flushList()
		level := len(match[1])
		if level == 1 {
			return m
		}
		return m.emit(Block{Kind: BlockHeading, Level: level, Text: FormatInline(strings.TrimSpace(match[2]))})
	}

	if strings.HasPrefix(line, "> ") {
		m = m.flushList()
		return m.emit(Block{Kind: BlockQuote, Text: FormatInline(strings.TrimSpace(line[2:]))})
	}

	if match := unorderedRe.FindStringSubmatch(line); match != nil {
		return m.listItem(false, match[1])
	}

	if match := orderedRe.FindStringSubmatch(line); match != nil {
		return m.listItem(true, match[1])
	}

	if ruleRe.MatchString(trimmed) {
		m = m.flushList()
		return m.emit(Block{Kind: BlockRule})
	}

	m = m.flushList()
	return m.emit(Block{Kind: BlockParagraph, Text: FormatInline(trimmed)})
}

// listItem appends to the open list, or closes a list of the other kind and
// starts a new one.
func (m machine) listItem(ordered bool, text string) machine {
	if m.state == stateList && m.ordered != ordered {
		m = m.flushList()
	}
	if m.state != stateList {
		m.state = stateList
		m.ordered = ordered
		m.items = nil
	}
	m.items = append(m.items, FormatInline(text))
	return m
}

func (m machine) flushList() machine {
	if m.state != stateList {
		return m
	}
	m = m.emit(Block{Kind: BlockList, Ordered: m.ordered, Items: m.items})
	m.state = stateDefault
	m.items = nil
	return m
}

func (m machine) closeCode() machine {
	escaped := make([]string, len(m.code))
	for i, line := range m.code {
		escaped[i] = EscapeHTML(line)
	}
	m = m.emit(Block{Kind: BlockCode, Lines: m.code, Text: strings.Join(escaped, "<br>")})
	m.state = stateDefault
	m.code = nil
	return m
}

func (m machine) emit(b Block) machine {
	m.blocks = append(m.blocks, b)
	return m
}

// finish flushes an open list. Lines of an unterminated fence are dropped.
func (m machine) finish() []Block {
	m = m.flushList()
	return m.blocks
}
