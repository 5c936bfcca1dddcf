package parser

import (
	"bytes"
	"context"
	"testing"

	"github.com/fumiama/go-docx"
)

type extractCase struct {
	name  string
	input string
	want  string
}

func runExtractCases(t *testing.T, filename string, cases []extractCase) {
	t.Helper()
	e := NewExtractor(false)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), filename, []byte(tc.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMarkdownText(t *testing.T) {
	runExtractCases(t, "notes.md", []extractCase{
		{"heading and body", "# Title\n\nBody text.", "Title\nBody text.\n"},
		{"single paragraph", "Just one paragraph.", "Just one paragraph.\n"},
		{
			"preamble before first heading",
			"Intro paragraph before any heading.\n\n# Title\n\nBody text.",
			"Intro paragraph before any heading.\nTitle\nBody text.\n",
		},
		{
			"nested sections",
			"# A\n\npara a\n\n## B\n\npara b\n\n# C\n\npara c",
			"A\npara a\nB\npara b\nC\npara c\n",
		},
		{"paragraphs share a section", "# T\n\nfirst\n\nsecond", "T\nfirst\nsecond\n"},
		{"soft line break", "line one\nline two", "line one\nline two\n"},
		{
			"inline markup dropped",
			"Some **bold** and `code` and [a link](https://example.com).",
			"Some bold and code and a link.\n",
		},
		{"list items", "# Items\n\n- one\n- two\n", "Items\none\ntwo\n"},
		{"fenced code kept", "```\nx := 1\n```", "x := 1\n"},
		{"empty", "", ""},
	})
}

func TestHTMLText(t *testing.T) {
	runExtractCases(t, "page.html", []extractCase{
		{
			"preamble before first heading",
			"<p>Intro para.</p><h1>Title</h1><p>Body text.</p>",
			"Intro para.\nTitle\nBody text.\n",
		},
		{"loose text in div", "<div>Plain div text</div>", "Plain div text\n"},
		{"whitespace collapsed", "<p>  lots   of\n  space </p>", "lots of space\n"},
		{
			"table rows",
			"<table><tr><th>Name</th><th>Qty</th></tr><tr><td>Apples</td><td>3</td></tr></table>",
			"Name | Qty\nApples | 3\n",
		},
		{
			"head and scripts skipped",
			"<html><head><title>T</title></head><body><p>Shown<script>hidden()</script></p><style>p{}</style></body></html>",
			"Shown\n",
		},
		{"nested headings", "<h1>A</h1><p>a</p><h2>B</h2><p>b</p>", "A\na\nB\nb\n"},
	})
}

func TestCSVText(t *testing.T) {
	runExtractCases(t, "sales.csv", []extractCase{
		{"header and rows", "name,qty\napples,3\npears,5\n", "name, qty\napples, 3\npears, 5\n"},
		{"ragged rows", "a,b,c\n1,2\n", "a, b, c\n1, 2\n"},
		{"byte order mark", "\xEF\xBB\xBFcity,pop\nParis,2100000\n", "city, pop\nParis, 2100000\n"},
		{"trailing empty fields", "a,b,,\n", "a, b\n"},
		{"empty", "", ""},
	})
}

func TestPlainText(t *testing.T) {
	runExtractCases(t, "notes.txt", []extractCase{
		{"paragraphs", "First.\n\nSecond.", "First.\nSecond.\n"},
		{"line breaks kept", "line one\nline two\n\n\n\nnext", "line one\nline two\nnext\n"},
		{"crlf", "a\r\nb\r\n\r\nc\r\n", "a\nb\nc\n"},
		{"whitespace only lines", "a\n   \t\nb", "a\nb\n"},
		{"byte order mark", "\uFEFFhello", "hello\n"},
		{"invalid utf-8", "bad \xff byte", "bad \uFFFD byte\n"},
		{"empty", "", ""},
	})
}

func TestDOCXText(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Opening remarks.")
	w.AddParagraph().Style("Heading1").AddText("Budget")
	w.AddParagraph().AddText("First paragraph.")
	tbl := w.AddTable(2, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Item")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("Cost")
	tbl.TableRows[1].TableCells[0].AddParagraph().AddText("Rent")
	tbl.TableRows[1].TableCells[1].AddParagraph().AddText("900")
	w.AddParagraph().AddText("Closing paragraph.")
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	got, err := NewExtractor(false).Extract(context.Background(), "memo.docx", buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Opening remarks.\nBudget\nFirst paragraph.\nItem | Cost\nRent | 900\nClosing paragraph.\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStyleHeadingLevel(t *testing.T) {
	tests := map[string]int{
		"Heading1":  1,
		"heading 2": 2,
		"Heading 3": 3,
		"Title":     1,
		"Normal":    0,
		"HeadingX":  0,
		"Heading0":  0,
		"":          0,
	}
	for style, want := range tests {
		if got := styleHeadingLevel(style); got != want {
			t.Errorf("styleHeadingLevel(%q): expected %d, got %d", style, want, got)
		}
	}
}

func TestBaseTitle(t *testing.T) {
	tests := map[string]string{
		"report.pdf":        "report",
		"dir/notes.MD":      "notes",
		"archive.tar.gz":    "archive.tar",
		"upload":            "upload",
		"page.html":         "page",
		"../secret/doc.txt": "doc",
	}
	for in, want := range tests {
		if got := baseTitle(in); got != want {
			t.Errorf("baseTitle(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestOutlineDropsBlankHeadings(t *testing.T) {
	o := newOutline()
	o.paragraph("before")
	o.heading(1, "  ")
	o.paragraph("after")
	tree := o.tree("t")
	if got := tree.Text(); got != "before\nafter\n" {
		t.Errorf("expected blank heading to be ignored, got %q", got)
	}
	if tree.Title != "t" {
		t.Errorf("expected title t, got %q", tree.Title)
	}
}
