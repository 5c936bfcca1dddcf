package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
	dslipak "github.com/dslipak/pdf"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Each page with text becomes one node; pages
// that yield no text (scans, images) are dropped.
//
// Backends run in order until one produces text: ledongthuc/pdf page by
// page, dslipak/pdf, then pdftotext when FallbackPdftotext is set.
type PDFParser struct {
	FallbackPdftotext bool

	backends []pdfBackend // nil selects the default chain
}

type pdfBackend struct {
	name    string
	extract func(data []byte) ([]string, error)
}

func (p *PDFParser) chain() []pdfBackend {
	if p.backends != nil {
		return p.backends
	}
	chain := []pdfBackend{
		{name: "ledongthuc", extract: extractPDFPages},
		{name: "dslipak", extract: extractPDFPlain},
	}
	if p.FallbackPdftotext {
		chain = append(chain, pdfBackend{name: "pdftotext", extract: extractPdftotext})
	}
	return chain
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := p.extractPages(data)
	if err != nil {
		return nil, err
	}

	tree := &doctree.DocTree{Title: baseTitle(filename)}
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Text: page,
			Page: i + 1,
		})
	}
	return tree, nil
}

// extractPages returns the first backend result that carries any text. When
// some backend opened the file but none found text, the document is treated
// as image-only and yields no pages without error.
func (p *PDFParser) extractPages(data []byte) ([]string, error) {
	var errs []error
	opened := false
	for _, b := range p.chain() {
		pages, err := b.extract(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			continue
		}
		opened = true
		if hasText(pages) {
			return pages, nil
		}
	}
	if opened {
		return nil, nil
	}
	return nil, fmt.Errorf("extract pdf text: %w", errors.Join(errs...))
}

func hasText(pages []string) bool {
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			return true
		}
	}
	return false
}

// extractPDFPages returns the plain text of every page, in order. Pages the
// library cannot decode come back empty rather than failing the document.
func extractPDFPages(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf reader panic: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// extractPDFPlain reads the whole document as one block of text.
func extractPDFPlain(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf reader panic: %v", rec)
		}
	}()

	reader, err := dslipak.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, err
	}
	return []string{buf.String()}, nil
}

func extractPdftotext(data []byte) ([]string, error) {
	// pdftotext wants a real file.
	tmp, err := os.CreateTemp("", "docvoice-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.Command("pdftotext", "-layout", tmpPath, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds.
	return strings.Split(string(out), "\f"), nil
}
