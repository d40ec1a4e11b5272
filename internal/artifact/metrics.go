// Package artifact finalizes a layout.Document into a file format.
package artifact

import (
	"sync"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/dgallion1/casereport/internal/layout"
)

// FontFamily is the core PDF font used for every run.
const FontFamily = "Helvetica"

// HelveticaMetrics measures text with fpdf's built-in Helvetica tables, so the
// widths used for wrapping match what the PDF writer draws.
type HelveticaMetrics struct {
	mu    sync.Mutex
	pdf   *fpdf.Fpdf
	style layout.Style
}

// NewHelveticaMetrics returns metrics in millimetres.
func NewHelveticaMetrics() *HelveticaMetrics {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont(FontFamily, "", 10)
	return &HelveticaMetrics{
		pdf:   pdf,
		style: layout.Style{Size: 10},
	}
}

// Width implements layout.Metrics.
func (m *HelveticaMetrics) Width(text string, st layout.Style) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st != m.style {
		m.pdf.SetFont(FontFamily, fontStyle(st.Bold), st.Size)
		m.style = st
	}
	return m.pdf.GetStringWidth(Encode1252(text))
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// Encode1252 converts UTF-8 text to the Windows-1252 bytes expected by the
// core PDF fonts. Runes outside the code page become '?'.
func Encode1252(s string) string {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			buf = append(buf, byte(r))
			continue
		}
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			buf = append(buf, b)
		} else {
			buf = append(buf, '?')
		}
	}
	return string(buf)
}
