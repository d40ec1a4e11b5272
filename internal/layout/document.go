// Package layout composes directives into fixed-size pages of positioned
// text runs. It knows nothing about the output format; see package artifact.
package layout

// Geometry is the fixed page geometry of a render pass. Lengths are in
// millimetres, font sizes in points.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	LineHeight float64
	BodySize   float64
}

// A4 returns the default report geometry.
func A4() Geometry {
	return Geometry{
		PageWidth:  210,
		PageHeight: 297,
		Margin:     20,
		LineHeight: 6,
		BodySize:   10,
	}
}

// ContentWidth is the usable line width between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// Bottom is the lowest offset any run may occupy.
func (g Geometry) Bottom() float64 {
	return g.PageHeight - g.Margin
}

// Run is one piece of text placed at a baseline position on a page.
type Run struct {
	X    float64
	Y    float64
	Text string
	Size float64
	Bold bool
}

// Page is an ordered list of runs.
type Page struct {
	Runs []Run
}

// Document is the output artifact of a render pass.
type Document struct {
	Title    string
	Geometry Geometry
	Pages    []Page
}

// Text returns the text of every run on the page joined by newlines.
func (p Page) Text() string {
	n := 0
	for _, r := range p.Runs {
		n += len(r.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, r := range p.Runs {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, r.Text...)
	}
	return string(buf)
}
