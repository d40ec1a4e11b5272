package artifact

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/casereport/internal/layout"
)

// DOCX writes documents with go-docx. Each layout line becomes a paragraph
// and each layout page ends with a page break, so the page structure the
// renderer chose survives even though Word reflows the text.
type DOCX struct{}

func (d *DOCX) Ext() string { return ".docx" }
func (d *DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (d *DOCX) Write(w io.Writer, doc *layout.Document) error {
	f := docx.New().WithDefaultTheme()

	for pi, page := range doc.Pages {
		var para *docx.Paragraph
		lineY := -1.0
		for _, run := range page.Runs {
			if para == nil || run.Y != lineY {
				para = f.AddParagraph()
				lineY = run.Y
			} else {
				// Separate runs that share a line, like a key and its value.
				run.Text = " " + run.Text
			}
			r := para.AddText(run.Text).Size(halfPoints(run.Size))
			if run.Bold {
				r.Bold()
			}
			preserveSpace(r)
		}
		if pi < len(doc.Pages)-1 {
			f.AddParagraph().AddPageBreaks()
		}
	}
	f.WithA4Page()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// halfPoints formats a point size the way w:sz expects it.
func halfPoints(size float64) string {
	return strconv.Itoa(int(size*2 + 0.5))
}

func preserveSpace(r *docx.Run) {
	for _, c := range r.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
}
