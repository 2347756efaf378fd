// Package export renders plan text to paginated PDF files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	margin     = 15.0
	lineHeight = 6.0
)

// WritePDF renders title and content to a PDF at path, creating parent
// directories as needed. Long lines wrap and pages break automatically.
// Lines wrapped in ** are set in bold.
func WritePDF(path, title, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	pdf := render(title, content)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func render(title, content string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(title, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.MultiCell(0, 10, tr(title), "", "L", false)
		pdf.Ln(4)
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			pdf.Ln(lineHeight / 2)
			continue
		}
		style := ""
		if text, ok := bold(line); ok {
			style, line = "B", text
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}
	return pdf
}

func bold(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") {
		return s[2 : len(s)-2], true
	}
	return line, false
}
