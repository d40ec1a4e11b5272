package layout

import (
	"strings"
)

// Default heading sizes in points.
const (
	DefaultTitleSize    = 16
	DefaultSubtitleSize = 14
)

// Vertical reservations, in line heights, checked before each emission.
const (
	titleReserve    = 2.5
	titleAdvance    = 2
	subtitleReserve = 2
	subtitleAdvance = 1.5
)

const (
	// bodyReserve is the space a body line must find before the bottom margin.
	bodyReserve = 10
	// hangIndent offsets wrapped values and list text from their key or bullet.
	hangIndent = 5
	// DefaultSpacer is the gap between report sections.
	DefaultSpacer = 6
)

// Bullet is the glyph drawn in front of list items.
const Bullet = "•"

// Context is the render cursor together with the artifact it writes to.
// Each render pass owns its own Context; it is not safe for concurrent use.
type Context struct {
	geo     Geometry
	metrics Metrics
	y       float64
	doc     *Document
}

// New starts a render pass with one empty page and the cursor at the top margin.
func New(geo Geometry, m Metrics) *Context {
	return &Context{
		geo:     geo,
		metrics: m,
		y:       geo.Margin,
		doc: &Document{
			Geometry: geo,
			Pages:    []Page{{}},
		},
	}
}

// Y is the current vertical offset from the top of the page.
func (c *Context) Y() float64 { return c.y }

// Geometry returns the fixed page geometry.
func (c *Context) Geometry() Geometry { return c.geo }

// PageCount returns the number of pages started so far.
func (c *Context) PageCount() int { return len(c.doc.Pages) }

// Document returns the artifact built so far.
func (c *Context) Document() *Document { return c.doc }

// SetTitle records the document title used as artifact metadata.
func (c *Context) SetTitle(title string) { c.doc.Title = title }

// ensure starts a new page if h more units would cross the bottom margin.
func (c *Context) ensure(h float64) {
	if c.y+h > c.geo.Bottom() {
		c.newPage()
	}
}

func (c *Context) newPage() {
	c.doc.Pages = append(c.doc.Pages, Page{})
	c.y = c.geo.Margin
}

func (c *Context) emit(x float64, text string, st Style) {
	p := &c.doc.Pages[len(c.doc.Pages)-1]
	p.Runs = append(p.Runs, Run{X: x, Y: c.y, Text: text, Size: st.Size, Bold: st.Bold})
}

func (c *Context) advance(h float64) {
	c.y += h
	if c.y > c.geo.Bottom() {
		c.y = c.geo.Bottom()
	}
}

func (c *Context) body(bold bool) Style {
	return Style{Size: c.geo.BodySize, Bold: bold}
}

// Title emits a bold heading. size <= 0 selects DefaultTitleSize.
func (c *Context) Title(text string, size float64) {
	if size <= 0 {
		size = DefaultTitleSize
	}
	c.ensure(c.geo.LineHeight * titleReserve)
	c.emit(c.geo.Margin, text, Style{Size: size, Bold: true})
	c.advance(c.geo.LineHeight * titleAdvance)
}

// Subtitle emits a smaller bold heading. size <= 0 selects DefaultSubtitleSize.
func (c *Context) Subtitle(text string, size float64) {
	if size <= 0 {
		size = DefaultSubtitleSize
	}
	c.ensure(c.geo.LineHeight * subtitleReserve)
	c.emit(c.geo.Margin, text, Style{Size: size, Bold: true})
	c.advance(c.geo.LineHeight * subtitleAdvance)
}

// Text word-wraps text to the width left after indent and emits one run per
// line. Blank text emits nothing.
func (c *Context) Text(text string, indent float64, bold bool) {
	if strings.TrimSpace(text) == "" {
		return
	}
	st := c.body(bold)
	x := c.geo.Margin + indent
	for _, line := range Wrap(c.metrics, text, st, c.geo.ContentWidth()-indent) {
		c.line(x, line, st)
	}
}

// line emits one wrapped line. An empty line only advances the cursor, so it
// can never open a page that nothing is drawn on.
func (c *Context) line(x float64, text string, st Style) {
	if text != "" {
		c.ensure(bodyReserve)
		c.emit(x, text, st)
	}
	c.advance(c.geo.LineHeight)
}

// KeyValue emits "key: value". It does nothing when value is blank, which
// lets callers pass unknown fields unconditionally.
func (c *Context) KeyValue(key, value string, indent float64) {
	if strings.TrimSpace(value) == "" {
		return
	}
	bold, normal := c.body(true), c.body(false)
	x := c.geo.Margin + indent
	label := key + ":"
	keyW := c.metrics.Width(key+": ", bold)

	c.ensure(bodyReserve)
	if c.metrics.Width(value, normal) <= c.geo.ContentWidth()-indent-keyW && !strings.Contains(value, "\n") {
		c.emit(x, label, bold)
		c.emit(x+keyW, value, normal)
		c.advance(c.geo.LineHeight)
		return
	}

	c.emit(x, label, bold)
	c.advance(c.geo.LineHeight)
	for _, line := range Wrap(c.metrics, value, normal, c.geo.ContentWidth()-indent-hangIndent) {
		c.line(x+hangIndent, line, normal)
	}
}

// List emits one bulleted entry per non-blank item.
func (c *Context) List(items []string, indent float64) {
	st := c.body(false)
	x := c.geo.Margin + indent
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		lines := Wrap(c.metrics, item, st, c.geo.ContentWidth()-indent-hangIndent)
		for i, line := range lines {
			if i > 0 {
				c.line(x+hangIndent, line, st)
				continue
			}
			c.ensure(bodyReserve)
			c.emit(x, Bullet, st)
			if line != "" {
				c.emit(x+hangIndent, line, st)
			}
			c.advance(c.geo.LineHeight)
		}
	}
}

// Spacer advances the cursor without emitting anything. height <= 0 selects
// DefaultSpacer. It stops at the bottom margin rather than starting a page.
func (c *Context) Spacer(height float64) {
	if height <= 0 {
		height = DefaultSpacer
	}
	c.advance(height)
}

// PageBreak starts a new page unconditionally.
func (c *Context) PageBreak() {
	c.newPage()
}
