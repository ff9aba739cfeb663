package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown splits a markdown document into one record per heading section.
// Each record carries the heading hierarchy it sits under, formatted as
// "# H1 > ## H2". Text before the first heading gets an empty heading path.
type Markdown struct {
	parser goldmark.Markdown
}

// NewMarkdown creates a Markdown extractor with GFM tables and linkify enabled.
func NewMarkdown() *Markdown {
	return &Markdown{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Linkify),
		),
	}
}

// Extract implements Extractor.
func (m *Markdown) Extract(_ context.Context, path string) ([]Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sections := m.sections(content)
	records := make([]Record, 0, len(sections))
	for _, s := range sections {
		meta := sourceMeta(path)
		meta[MetaHeadingPath] = s.headingPath
		records = append(records, Record{Text: s.text, Metadata: meta})
	}
	return records, nil
}

type section struct {
	headingPath string
	text        string
}

type headingInfo struct {
	level int
	text  string
}

// sections walks the AST and groups body text under the nearest heading.
func (m *Markdown) sections(content []byte) []section {
	doc := m.parser.Parser().Parse(text.NewReader(content))

	var (
		out     []section
		stack   []headingInfo
		path    string
		current strings.Builder
	)

	flush := func() {
		body := strings.TrimSpace(current.String())
		if body != "" {
			out = append(out, section{headingPath: path, text: body})
		}
		current.Reset()
	}
	newline := func() {
		if current.Len() > 0 && !strings.HasSuffix(current.String(), "\n") {
			current.WriteByte('\n')
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			flush()
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingInfo{level: node.Level, text: nodeText(node, content)})
			path = headingPath(stack)
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			current.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				current.WriteByte('\n')
			}

		case *ast.String:
			current.Write(node.Value)

		case *ast.CodeSpan:
			current.WriteString(nodeText(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.AutoLink:
			current.Write(node.Label(content))

		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				current.Write(seg.Value(content))
			}

		case *ast.CodeBlock, *ast.FencedCodeBlock:
			newline()
			writeLines(&current, n, content)
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock:
			newline()
			writeLines(&current, n, content)
			if node.HasClosure() {
				current.Write(node.ClosureLine.Value(content))
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.List, *ast.ListItem, *east.Table:
			newline()

		case *east.TableHeader, *east.TableRow:
			newline()
			current.WriteString(tableRowText(n, content))
			current.WriteByte('\n')
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	flush()

	return out
}

// writeLines copies a block's raw source lines.
func writeLines(b *strings.Builder, n ast.Node, content []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(content))
	}
}

// headingPath formats the heading stack as "# A > ## B".
func headingPath(stack []headingInfo) string {
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", h.level), h.text)
	}
	return strings.Join(parts, " > ")
}

// nodeText concatenates the inline text below n.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(content))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// tableRowText joins the cells of a row with " | ".
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableCell); ok {
			cells = append(cells, nodeText(c, content))
		}
	}
	return strings.Join(cells, " | ")
}
