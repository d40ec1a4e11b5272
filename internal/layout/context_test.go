package layout

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

// monoMetrics gives every rune the same width regardless of style.
type monoMetrics struct{ perRune float64 }

func (m monoMetrics) Width(text string, _ Style) float64 {
	return float64(utf8.RuneCountInString(text)) * m.perRune
}

func newTestContext() *Context {
	return New(A4(), monoMetrics{perRune: 2})
}

func allRuns(doc *Document) []Run {
	var runs []Run
	for _, p := range doc.Pages {
		runs = append(runs, p.Runs...)
	}
	return runs
}

func TestNew_StartsAtTopMargin(t *testing.T) {
	c := newTestContext()
	if c.Y() != 20 {
		t.Errorf("expected cursor at 20, got %f", c.Y())
	}
	if c.PageCount() != 1 {
		t.Errorf("expected 1 page, got %d", c.PageCount())
	}
}

func TestKeyValue_BlankValueIsNoop(t *testing.T) {
	for _, v := range []string{"", "   ", "\t\n"} {
		c := newTestContext()
		before := c.Y()
		c.KeyValue("Name", v, 0)
		if c.Y() != before {
			t.Errorf("value %q: cursor moved from %f to %f", v, before, c.Y())
		}
		if n := len(allRuns(c.Document())); n != 0 {
			t.Errorf("value %q: expected no runs, got %d", v, n)
		}
	}
}

func TestKeyValue_SingleLine(t *testing.T) {
	c := newTestContext()
	c.KeyValue("Name", "John Doe", 5)

	runs := allRuns(c.Document())
	if len(runs) != 2 {
		t.Fatalf("expected key and value runs, got %d", len(runs))
	}
	if runs[0].Text != "Name:" || !runs[0].Bold {
		t.Errorf("expected bold key run, got %+v", runs[0])
	}
	if runs[1].Text != "John Doe" || runs[1].Bold {
		t.Errorf("expected normal value run, got %+v", runs[1])
	}
	// "Name: " is 6 runes at 2mm each.
	if runs[1].X != 20+5+12 {
		t.Errorf("expected value at x=37, got %f", runs[1].X)
	}
	if runs[0].Y != runs[1].Y {
		t.Error("expected key and value on the same line")
	}
	if c.Y() != 26 {
		t.Errorf("expected cursor advanced one line to 26, got %f", c.Y())
	}
}

func TestKeyValue_WrapsLongValue(t *testing.T) {
	c := newTestContext()
	value := strings.Repeat("word ", 60)
	c.KeyValue("Context", value, 5)

	runs := allRuns(c.Document())
	if len(runs) < 3 {
		t.Fatalf("expected key line plus several value lines, got %d runs", len(runs))
	}
	if runs[0].Text != "Context:" {
		t.Errorf("expected key run first, got %q", runs[0].Text)
	}
	for _, r := range runs[1:] {
		if r.X != 20+5+5 {
			t.Errorf("expected wrapped value at x=30, got %f", r.X)
		}
		if r.Y <= runs[0].Y {
			t.Errorf("expected wrapped value below key line, got y=%f", r.Y)
		}
	}
}

func TestText_WrapsAtIndent(t *testing.T) {
	c := newTestContext()
	c.Text(strings.Repeat("lorem ipsum ", 40), 10, false)

	runs := allRuns(c.Document())
	if len(runs) < 2 {
		t.Fatalf("expected more than one line, got %d", len(runs))
	}
	for i, r := range runs {
		if r.X != 30 {
			t.Errorf("line %d: expected x=30, got %f", i, r.X)
		}
		if w := (monoMetrics{perRune: 2}).Width(r.Text, Style{}); w > 170-10 {
			t.Errorf("line %d wider than available width: %f", i, w)
		}
	}
}

func TestText_BlankIsNoop(t *testing.T) {
	c := newTestContext()
	c.Text("  \n ", 0, false)
	if c.Y() != 20 || len(allRuns(c.Document())) != 0 {
		t.Error("expected blank text to emit nothing")
	}
}

func TestText_OverflowStartsNewPageAtTopMargin(t *testing.T) {
	c := newTestContext()
	var lines []string
	for i := range 50 {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	c.Text(strings.Join(lines, "\n"), 0, false)

	doc := c.Document()
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	// Lines start at 20 and advance 6; a line needs 10 units above 277.
	if n := len(doc.Pages[0].Runs); n != 42 {
		t.Errorf("expected 42 lines on page 1, got %d", n)
	}
	first := doc.Pages[1].Runs[0]
	if first.Y != 20 {
		t.Errorf("expected first run on new page at top margin, got %f", first.Y)
	}
	if first.Text != "line 42" {
		t.Errorf("expected %q to open page 2, got %q", "line 42", first.Text)
	}
}

func TestList_SkipsBlankItems(t *testing.T) {
	c := newTestContext()
	c.List([]string{"a", "", "b", "   "}, 0)

	var bullets, texts []string
	for _, r := range allRuns(c.Document()) {
		if r.Text == Bullet {
			bullets = append(bullets, r.Text)
			if r.X != 20 {
				t.Errorf("expected bullet at x=20, got %f", r.X)
			}
			continue
		}
		texts = append(texts, r.Text)
		if r.X != 25 {
			t.Errorf("expected item text at x=25, got %f", r.X)
		}
	}
	if len(bullets) != 2 {
		t.Errorf("expected 2 bullets, got %d", len(bullets))
	}
	if strings.Join(texts, ",") != "a,b" {
		t.Errorf("expected items a,b, got %v", texts)
	}
}

func TestList_BulletOnlyOnFirstLine(t *testing.T) {
	c := newTestContext()
	c.List([]string{strings.Repeat("evidence ", 30)}, 0)

	runs := allRuns(c.Document())
	bullets := 0
	for _, r := range runs {
		if r.Text == Bullet {
			bullets++
		}
	}
	if bullets != 1 {
		t.Errorf("expected one bullet for a wrapped item, got %d", bullets)
	}
	if len(runs) < 3 {
		t.Errorf("expected the item to wrap, got %d runs", len(runs))
	}
}

func TestTitleAndSubtitle(t *testing.T) {
	c := newTestContext()
	c.Title("HEADER", 0)
	c.Subtitle("Sub", 0)

	runs := allRuns(c.Document())
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Size != DefaultTitleSize || !runs[0].Bold {
		t.Errorf("unexpected title run: %+v", runs[0])
	}
	if runs[1].Size != DefaultSubtitleSize || runs[1].Y != 32 {
		t.Errorf("unexpected subtitle run: %+v", runs[1])
	}
	if c.Y() != 41 {
		t.Errorf("expected cursor at 41, got %f", c.Y())
	}
}

func TestTitle_BreaksWhenReserveMissing(t *testing.T) {
	c := newTestContext()
	c.Spacer(250) // cursor at 270, 15 more would pass 277
	c.Title("LATE", 18)
	if c.PageCount() != 2 {
		t.Fatalf("expected title to move to page 2, got %d pages", c.PageCount())
	}
	if r := c.Document().Pages[1].Runs[0]; r.Y != 20 {
		t.Errorf("expected title at top margin, got %f", r.Y)
	}
}

func TestSpacer_ClampsAtBottom(t *testing.T) {
	c := newTestContext()
	c.Spacer(1000)
	if c.Y() != 277 {
		t.Errorf("expected cursor clamped to 277, got %f", c.Y())
	}
	if c.PageCount() != 1 {
		t.Errorf("expected spacer not to add a page, got %d", c.PageCount())
	}
	c.Text("next", 0, false)
	if c.PageCount() != 2 {
		t.Errorf("expected text after full page to start page 2, got %d", c.PageCount())
	}
}

func TestPageBreak(t *testing.T) {
	c := newTestContext()
	c.Text("first", 0, false)
	c.PageBreak()
	if c.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", c.PageCount())
	}
	if c.Y() != 20 {
		t.Errorf("expected cursor reset to 20, got %f", c.Y())
	}
}

func TestCursorStaysInBand(t *testing.T) {
	c := newTestContext()
	geo := c.Geometry()
	long := strings.Repeat("statement from the hearing transcript ", 12)

	check := func(step string) {
		t.Helper()
		if c.Y() < geo.Margin || c.Y() > geo.Bottom() {
			t.Fatalf("%s: cursor %f outside [%f, %f]", step, c.Y(), geo.Margin, geo.Bottom())
		}
	}

	for i := range 40 {
		c.Title(fmt.Sprintf("SECTION %d", i), 16)
		check("title")
		c.KeyValue("Key", long, 5)
		check("keyvalue")
		c.List([]string{long, "short"}, 0)
		check("list")
		c.Text(long, 0, i%2 == 0)
		check("text")
		c.Subtitle("Sub", 12)
		check("subtitle")
		c.Spacer(float64(i))
		check("spacer")
	}

	if c.PageCount() < 2 {
		t.Fatalf("expected several pages, got %d", c.PageCount())
	}
	for pi, p := range c.Document().Pages {
		if len(p.Runs) == 0 {
			t.Errorf("page %d is empty", pi)
		}
		for _, r := range p.Runs {
			if r.Y < geo.Margin || r.Y > geo.Bottom() {
				t.Errorf("page %d: run %q at y=%f outside band", pi, r.Text, r.Y)
			}
		}
	}
}

func TestPage_Text(t *testing.T) {
	p := Page{Runs: []Run{{Text: "a"}, {Text: "b"}}}
	if got := p.Text(); got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
}

func TestText_TrailingNewlineNeverOpensEmptyPage(t *testing.T) {
	c := newTestContext()
	c.Spacer(245)
	c.Text("last line\n\n\n", 0, false)
	if c.PageCount() != 1 {
		t.Fatalf("expected trailing blank lines to stay on page 1, got %d pages", c.PageCount())
	}
	if c.Y() > c.Geometry().Bottom() {
		t.Errorf("cursor %f below bottom margin", c.Y())
	}

	c.List([]string{"item\n\n"}, 0)
	c.KeyValue("Key", "value that is long enough to wrap onto the next line of the page\n", 0)
	for i, p := range c.Document().Pages {
		if len(p.Runs) == 0 {
			t.Errorf("page %d has no runs", i+1)
		}
	}
}
