// Package parser checks uploaded hearing transcripts before analysis.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when a PDF has no extractable text, typically a scan.
var ErrNoText = errors.New("no text could be extracted from the PDF")

// ErrNotPDF is returned for uploads that are not PDF files.
var ErrNotPDF = errors.New("only PDF files are supported")

// Transcript is the extracted text of an uploaded PDF.
type Transcript struct {
	Filename string
	NumPages int
	Pages    []Page // non-empty pages only
}

// Page is the text of one PDF page, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// Text joins all pages with blank lines.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Pages))
	for _, p := range t.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// PreflightResult summarizes an upload that passed preflight.
type PreflightResult struct {
	Pages      int `json:"pages"`
	TextLength int `json:"text_length"`
}

// IsSupportedFile reports whether filename looks like a PDF.
func IsSupportedFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// Preflight verifies that data is a PDF with extractable text. The analysis
// service rejects such files anyway, so failing here saves a round trip.
func (p *PDFParser) Preflight(data []byte, filename string) (*PreflightResult, error) {
	if !IsSupportedFile(filename) || !bytes.HasPrefix(bytes.TrimLeft(data, "\r\n\t "), []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	t, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("preflight %s: %w", filename, err)
	}
	text := t.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	return &PreflightResult{Pages: t.NumPages, TextLength: len(text)}, nil
}
