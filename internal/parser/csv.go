package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docvoice/internal/doctree"
)

// CSVParser handles CSV files. Each record becomes one comma-separated line,
// header included, so the prompt sees the table as written.
type CSVParser struct{}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	o := newOutline()
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		o.paragraph(csvLine(record))
	}
	return o.tree(baseTitle(filename)), nil
}

// csvLine joins trimmed fields, dropping trailing empty ones.
func csvLine(record []string) string {
	fields := make([]string, len(record))
	for i, f := range record {
		fields[i] = strings.TrimSpace(f)
	}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, ", ")
}
