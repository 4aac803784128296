package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractFile reads one PDF and produces its text extract. Unreadable
// documents yield an invalid extract rather than an error so a single bad
// file never blocks a session.
func extractFile(path string) FileExtract {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return invalidExtract(name, fmt.Sprintf("could not read file: %v", err))
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return invalidExtract(name, fmt.Sprintf("not a readable PDF: %v", err))
	}

	text := extractText(path, pageCount)

	return FileExtract{
		Name:       name,
		FullText:   text,
		PageCount:  pageCount,
		TextLength: len(text),
		IsValid:    len(text) > minValidTextLength,
	}
}

// extractText pulls plain text from every page, delimited with page headers.
// Pages that fail extraction are annotated in place.
func extractText(path string, pageCount int) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Sprintf("[text extraction failed: %v]", err)
	}
	defer f.Close()

	total := reader.NumPage()
	if total > pageCount {
		total = pageCount
	}

	var sb strings.Builder
	for n := 1; n <= total; n++ {
		fmt.Fprintf(&sb, "--- PAGE %d ---\n", n)

		page := reader.Page(n)
		if page.V.IsNull() {
			sb.WriteString("[empty page]\n")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			fmt.Fprintf(&sb, "[page extraction failed: %v]\n", err)
			continue
		}

		sb.WriteString(strings.TrimSpace(text))
		sb.WriteString("\n")
	}

	return sb.String()
}

func invalidExtract(name, reason string) FileExtract {
	text := "[" + reason + "]"
	return FileExtract{
		Name:       name,
		FullText:   text,
		TextLength: len(text),
	}
}
