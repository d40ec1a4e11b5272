package artifact

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dgallion1/casereport/internal/layout"
)

// PDF writes documents with go-pdf/fpdf using the Helvetica core font.
type PDF struct {
	Author   string
	Creator  string
	Compress bool
	// CreatedAt fixes the creation date; zero uses the current time.
	CreatedAt time.Time
}

func (p *PDF) Ext() string         { return ".pdf" }
func (p *PDF) ContentType() string { return "application/pdf" }

func (p *PDF) Write(w io.Writer, doc *layout.Document) error {
	g := doc.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, g.Margin)
	pdf.SetCompression(p.Compress)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	if p.Author != "" {
		pdf.SetAuthor(p.Author, true)
	}
	if p.Creator != "" {
		pdf.SetCreator(p.Creator, true)
	}
	if !p.CreatedAt.IsZero() {
		pdf.SetCreationDate(p.CreatedAt)
		pdf.SetModificationDate(p.CreatedAt)
		pdf.SetCatalogSort(true)
	}

	var cur layout.Style
	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, run := range page.Runs {
			st := layout.Style{Size: run.Size, Bold: run.Bold}
			if st != cur {
				pdf.SetFont(FontFamily, fontStyle(run.Bold), run.Size)
				cur = st
			}
			pdf.Text(run.X, run.Y, Encode1252(run.Text))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("output pdf: %w", err)
	}
	return nil
}
