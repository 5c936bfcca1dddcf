package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// line breaks inside a paragraph are kept.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	content := strings.ToValidUTF8(string(data), "\uFFFD")
	content = strings.TrimPrefix(content, "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	o := newOutline()
	var para []string
	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			o.paragraph(strings.Join(para, "\n"))
			para = para[:0]
			continue
		}
		para = append(para, line)
	}
	o.paragraph(strings.Join(para, "\n"))

	return o.tree(baseTitle(filename)), nil
}
