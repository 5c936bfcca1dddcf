package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Markup is dropped;
// code blocks keep their content.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	o := newOutline()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			o.heading(h.Level, markdownText(h, src))
			continue
		}
		o.paragraph(markdownText(n, src))
	}
	return o.tree(baseTitle(filename)), nil
}

func markdownText(n ast.Node, src []byte) string {
	var sb strings.Builder
	writeMarkdown(&sb, n, src)
	return sb.String()
}

// writeMarkdown appends the readable text under n. Each inline text is
// written once; block children end on a newline.
func writeMarkdown(sb *strings.Builder, n ast.Node, src []byte) {
	switch v := n.(type) {
	case *ast.Text:
		sb.Write(v.Segment.Value(src))
		if v.SoftLineBreak() || v.HardLineBreak() {
			sb.WriteByte('\n')
		}
		return
	case *ast.String:
		sb.Write(v.Value)
		return
	case *ast.AutoLink:
		sb.Write(v.URL(src))
		return
	case *ast.RawHTML, *ast.HTMLBlock, *ast.ThematicBreak:
		return
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(src))
		}
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeMarkdown(sb, c, src)
		if c.Type() == ast.TypeBlock && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
}
