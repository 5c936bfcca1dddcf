package parser

import (
	"path/filepath"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
)

// outline assembles a DocTree from headings and paragraphs in reading order.
// Paragraphs attach to the innermost open heading; those that come before
// any heading become a leading untitled node.
type outline struct {
	root  doctree.DocNode
	open  []section
	paras []string
}

type section struct {
	node  *doctree.DocNode
	level int
}

func newOutline() *outline {
	o := &outline{}
	o.open = []section{{node: &o.root}}
	return o
}

// heading opens a section at level (1 is outermost). Blank titles are ignored
// and their body stays with the enclosing section.
func (o *outline) heading(level int, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	o.flush()
	for len(o.open) > 1 && o.open[len(o.open)-1].level >= level {
		o.open = o.open[:len(o.open)-1]
	}
	node := &doctree.DocNode{Title: title}
	parent := o.open[len(o.open)-1].node
	parent.Children = append(parent.Children, node)
	o.open = append(o.open, section{node: node, level: level})
}

func (o *outline) paragraph(text string) {
	if text = strings.TrimSpace(text); text != "" {
		o.paras = append(o.paras, text)
	}
}

func (o *outline) flush() {
	if len(o.paras) == 0 {
		return
	}
	top := o.open[len(o.open)-1].node
	text := strings.Join(o.paras, "\n")
	if top.Text != "" {
		text = top.Text + "\n" + text
	}
	top.Text = text
	o.paras = o.paras[:0]
}

func (o *outline) tree(title string) *doctree.DocTree {
	o.flush()
	t := &doctree.DocTree{Title: title}
	if o.root.Text != "" {
		t.Children = append(t.Children, &doctree.DocNode{Text: o.root.Text})
	}
	t.Children = append(t.Children, o.root.Children...)
	return t
}

// baseTitle is the file name without directory or extension.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
