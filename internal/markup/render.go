// Package markup converts GitHub-flavored markdown into Jira wiki markup.
// Issue bodies and comments are written in markdown; the ticketing system
// renders wiki markup, so every body crossing the bridge goes through
// Render exactly once.
package markup

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// Render converts a markdown document into Jira wiki markup. It is a pure
// function; unknown constructs degrade to their plain text content rather
// than failing.
func Render(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var buf strings.Builder
	r := &renderer{source: src}
	if err := r.blocks(&buf, doc, ""); err != nil {
		return "", fmt.Errorf("failed to render markup: %w", err)
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}

type renderer struct {
	source []byte
}

// blocks renders the block-level children of node. listPrefix carries the
// accumulated marker for nested lists ("" outside lists).
func (r *renderer) blocks(buf *strings.Builder, node ast.Node, listPrefix string) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if err := r.block(buf, child, listPrefix); err != nil {
			return err
		}
	}
	return nil
}

// block renders a single block-level node.
func (r *renderer) block(buf *strings.Builder, child ast.Node, listPrefix string) error {
	switch n := child.(type) {
	case *ast.Heading:
		fmt.Fprintf(buf, "h%d. %s\n\n", n.Level, r.inlines(n))
	case *ast.Paragraph:
		buf.WriteString(r.inlines(n))
		buf.WriteString("\n\n")
	case *ast.TextBlock:
		buf.WriteString(r.inlines(n))
		buf.WriteString("\n")
	case *ast.FencedCodeBlock:
		r.codeBlock(buf, n, string(n.Language(r.source)))
	case *ast.CodeBlock:
		r.codeBlock(buf, n, "")
	case *ast.Blockquote:
		var inner strings.Builder
		if err := r.blocks(&inner, n, listPrefix); err != nil {
			return err
		}
		quoted := strings.TrimRight(inner.String(), "\n")
		if strings.ContainsRune(quoted, '\n') {
			fmt.Fprintf(buf, "{quote}\n%s\n{quote}\n\n", quoted)
		} else {
			fmt.Fprintf(buf, "bq. %s\n\n", quoted)
		}
	case *ast.List:
		marker := "*"
		if n.IsOrdered() {
			marker = "#"
		}
		if err := r.list(buf, n, listPrefix+marker); err != nil {
			return err
		}
		if listPrefix == "" {
			buf.WriteString("\n")
		}
	case *ast.ThematicBreak:
		buf.WriteString("----\n\n")
	case *ast.HTMLBlock:
		// wiki markup has no HTML passthrough; keep the raw text
		for i := 0; i < n.Lines().Len(); i++ {
			line := n.Lines().At(i)
			buf.Write(line.Value(r.source))
		}
		buf.WriteString("\n")
	default:
		// unknown block: fall back to its inline text
		content := r.inlines(child)
		if content != "" {
			buf.WriteString(content)
			buf.WriteString("\n\n")
		}
	}
	return nil
}

func (r *renderer) codeBlock(buf *strings.Builder, node interface {
	Lines() *text.Segments
}, language string) {
	if language != "" {
		fmt.Fprintf(buf, "{code:%s}\n", language)
	} else {
		buf.WriteString("{code}\n")
	}
	for i := 0; i < node.Lines().Len(); i++ {
		line := node.Lines().At(i)
		buf.Write(line.Value(r.source))
	}
	buf.WriteString("{code}\n\n")
}

func (r *renderer) list(buf *strings.Builder, list *ast.List, prefix string) error {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		// one bullet per item: the first text block gets the marker,
		// later paragraphs continue the same item on unmarked lines
		bulleted := false
		for part := item.FirstChild(); part != nil; part = part.NextSibling() {
			switch n := part.(type) {
			case *ast.List:
				marker := "*"
				if n.IsOrdered() {
					marker = "#"
				}
				if err := r.list(buf, n, prefix+marker); err != nil {
					return err
				}
			case *ast.TextBlock, *ast.Paragraph:
				if bulleted {
					fmt.Fprintf(buf, "%s\n", r.inlines(n))
				} else {
					fmt.Fprintf(buf, "%s %s\n", prefix, r.inlines(n))
					bulleted = true
				}
			default:
				var inner strings.Builder
				if err := r.block(&inner, part, prefix); err != nil {
					return err
				}
				content := strings.TrimRight(inner.String(), "\n")
				if content != "" {
					buf.WriteString(content)
					buf.WriteString("\n")
				}
			}
		}
	}
	return nil
}

// inlines renders the inline children of node.
func (r *renderer) inlines(node ast.Node) string {
	var buf strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		r.inline(&buf, child)
	}
	return buf.String()
}

func (r *renderer) inline(buf *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(r.source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteString("\n")
		}
	case *ast.String:
		buf.Write(n.Value)
	case *ast.Emphasis:
		delimiter := "_"
		if n.Level >= 2 {
			delimiter = "*"
		}
		buf.WriteString(delimiter)
		buf.WriteString(r.inlines(n))
		buf.WriteString(delimiter)
	case *ast.CodeSpan:
		buf.WriteString("{{")
		buf.WriteString(r.inlines(n))
		buf.WriteString("}}")
	case *ast.Link:
		label := r.inlines(n)
		destination := string(n.Destination)
		if label == "" || label == destination {
			fmt.Fprintf(buf, "[%s]", destination)
		} else {
			fmt.Fprintf(buf, "[%s|%s]", label, destination)
		}
	case *ast.AutoLink:
		fmt.Fprintf(buf, "[%s]", string(n.URL(r.source)))
	case *ast.Image:
		fmt.Fprintf(buf, "!%s!", string(n.Destination))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			segment := n.Segments.At(i)
			buf.Write(segment.Value(r.source))
		}
	default:
		buf.WriteString(r.inlines(node))
	}
}
