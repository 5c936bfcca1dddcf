package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs styled as headings or as the
// document title open sections; everything else is body text. Table rows
// become "cell | cell" lines.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	o := newOutline()
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(v)
			if level := docxHeadingLevel(v); level > 0 {
				o.heading(level, text)
			} else {
				o.paragraph(text)
			}
		case *docx.Table:
			for _, row := range v.TableRows {
				o.paragraph(docxTableRow(row))
			}
		}
	}
	return o.tree(baseTitle(filename)), nil
}

// docxHeadingLevel reads "Heading1", "heading 2" and "Title" paragraph
// styles. Other styles are body text.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	return styleHeadingLevel(para.Properties.Style.Val)
}

func styleHeadingLevel(style string) int {
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if style == "title" {
		return 1
	}
	num, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(num)
	if err != nil || level < 1 || level > 9 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	return sb.String()
}

func docxTableRow(row *docx.WTableRow) string {
	var cells []string
	for _, cell := range row.TableCells {
		var parts []string
		for _, para := range cell.Paragraphs {
			if text := strings.TrimSpace(docxParagraphText(para)); text != "" {
				parts = append(parts, text)
			}
		}
		cells = append(cells, strings.Join(parts, " "))
	}
	return strings.Join(cells, " | ")
}
