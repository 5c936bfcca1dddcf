package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
)

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// SupportedExtensions lists file extensions with a dedicated parser.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extractor turns one uploaded document into plain text.
type Extractor struct {
	PDFFallbackPdftotext bool
}

// NewExtractor returns an Extractor.
func NewExtractor(pdfFallbackPdftotext bool) *Extractor {
	return &Extractor{PDFFallbackPdftotext: pdfFallbackPdftotext}
}

// Extract parses data according to filename's extension and flattens the
// result. Files with an unknown or missing extension are read as PDF, the
// format the upload form asks for. An empty string with a nil error means the
// document parsed but carried no text.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tree, err := e.parserFor(filename).Parse(bytes.NewReader(data), filename)
	if err != nil {
		return "", err
	}
	return tree.Text(), nil
}

func (e *Extractor) parserFor(filename string) Parser {
	p, err := ForFile(filename)
	if err != nil {
		p = &PDFParser{}
	}
	if pp, ok := p.(*PDFParser); ok {
		pp.FallbackPdftotext = e.PDFFallbackPdftotext
	}
	return p
}
