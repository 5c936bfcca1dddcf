package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Only the body is read; whitespace outside
// <pre> is collapsed and table rows become "cell | cell" lines.
type HTMLParser struct{}

var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"template": true, "svg": true, "nav": true,
}

var blockElements = map[string]bool{
	"p": true, "li": true, "blockquote": true, "dt": true, "dd": true,
	"figcaption": true, "caption": true, "td": true, "th": true,
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	start := findElement(doc, "body")
	if start == nil {
		start = doc
	}

	o := newOutline()
	walkHTML(o, start)
	return o.tree(baseTitle(filename)), nil
}

func walkHTML(o *outline, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		o.paragraph(collapseSpace(n.Data))
		return
	case html.ElementNode:
		switch {
		case skippedElements[n.Data]:
			return
		case headingLevel(n.Data) > 0:
			o.heading(headingLevel(n.Data), collapseSpace(htmlText(n)))
			return
		case n.Data == "tr":
			o.paragraph(tableRow(n))
			return
		case n.Data == "pre":
			o.paragraph(htmlText(n))
			return
		case blockElements[n.Data]:
			o.paragraph(collapseSpace(htmlText(n)))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(o, c)
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func tableRow(tr *html.Node) string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, collapseSpace(htmlText(c)))
		}
	}
	return strings.Join(cells, " | ")
}

// htmlText concatenates the text under n, skipping non-content elements.
func htmlText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && skippedElements[n.Data]:
			return
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
