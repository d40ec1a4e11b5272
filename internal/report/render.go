package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/casereport/internal/casefile"
	"github.com/dgallion1/casereport/internal/layout"
)

// Generated dates use the short US form, e.g. 3/7/2024.
const dateLayout = "1/2/2006"

const (
	sectionIndent = 5
	headerGap     = 10
	batchHeadGap  = 15
)

// RenderSingleCase lays out the full report for one subject.
func (e *Exporter) RenderSingleCase(rec *casefile.Record) *Report {
	if rec == nil {
		rec = &casefile.Record{}
	}
	now := e.now()
	c := layout.New(e.geometry(), e.Metrics)
	c.SetTitle("Parole Hearing Case Summary: " + rec.Name())
	d := rec.Demographics

	c.Title("PAROLE HEARING CASE SUMMARY", 18)
	c.Text("Generated: "+now.Format(dateLayout), 0, false)
	c.Text("Source File: "+rec.Filename, 0, false)
	c.Spacer(headerGap)

	c.Title("CLIENT INFORMATION", 0)
	c.KeyValue("Name", d.ClientInfo.Name, 0)
	c.KeyValue("CDCR Number", d.ClientInfo.CDCRNumber, 0)
	c.KeyValue("Date of Birth", d.ClientInfo.DateOfBirth, 0)
	c.KeyValue("Contact Info", d.ClientInfo.ContactInfo, 0)
	c.Spacer(0)

	c.Title("CASE OVERVIEW", 0)
	c.Text(d.Introduction.ShortSummary, 0, false)
	c.KeyValue("Codefendants", d.Codefendants, 0)
	c.Spacer(0)

	ci := d.ConvictionInfo
	c.Title("CONVICTION INFORMATION", 0)
	c.KeyValue("Date of Crime", ci.DateOfCrime, 0)
	c.KeyValue("Location", ci.LocationOfCrime, 0)
	c.KeyValue("Date of Arrest", ci.DateOfArrest, 0)
	c.KeyValue("Charges", ci.Charges, 0)
	c.KeyValue("Date of Conviction", ci.DateOfConviction, 0)
	c.KeyValue("Sentence Length", ci.SentenceLength, 0)
	c.KeyValue("County", ci.County, 0)
	c.KeyValue("Trial or Plea", ci.TrialOrPlea, 0)
	c.Spacer(0)

	renderAttorneys(c, d.AttorneyInfo)
	c.Spacer(0)

	if len(d.EvidenceUsedToConvict) > 0 {
		c.Title("EVIDENCE USED TO CONVICT", 0)
		c.List(d.EvidenceUsedToConvict, 0)
		c.Spacer(0)
	}

	if !casefile.Blank(d.PotentialTheory) {
		c.Title("POTENTIAL THEORY", 0)
		c.Text(d.PotentialTheory, 0, false)
		c.Spacer(0)
	}

	ai := d.AppealInfo
	c.Title("APPEAL INFORMATION", 0)
	c.KeyValue("Direct Appeal Filed", ai.DirectAppealFiled, 0)
	c.KeyValue("Court Case Number", ai.AppellateCourtCaseNumber, 0)
	c.KeyValue("Date Decided", ai.DateDecided, 0)
	c.KeyValue("Result", ai.Result, 0)
	if len(ai.HabeasFilings) > 0 {
		c.Subtitle("Habeas Filings", 0)
		c.List(ai.HabeasFilings, 0)
	}
	c.Spacer(0)

	if len(d.NewEvidence) > 0 {
		c.Title("NEW EVIDENCE", 0)
		c.List(d.NewEvidence, 0)
		c.Spacer(0)
	}

	pd := d.PhysicalDescription
	c.Title("PHYSICAL DESCRIPTION", 0)
	c.KeyValue("Height", pd.Height, 0)
	c.KeyValue("Weight", pd.Weight, 0)
	c.KeyValue("Race", pd.Race, 0)
	c.KeyValue("Build", pd.Build, 0)
	c.KeyValue("Distinguishing Marks", pd.DistinguishingMarks, 0)
	c.Spacer(0)

	c.Title("VICTIM INFORMATION", 0)
	c.KeyValue("Name", d.VictimInfo.Name, 0)
	c.KeyValue("Relationship", d.VictimInfo.Relationship, 0)
	c.Spacer(0)

	c.Title("PRISON RECORD", 0)
	c.KeyValue("Conduct", d.PrisonRecord.Conduct, 0)
	c.KeyValue("Programming", d.PrisonRecord.Programming, 0)
	c.KeyValue("Support", d.PrisonRecord.Support, 0)
	c.Spacer(0)

	c.Title("HEARING SUMMARY", 0)
	c.Text(NormalizeMarkdown(rec.MarkdownSummary), 0, false)

	if rec.InnocenceAnalysis != nil {
		c.Spacer(0)
		renderInnocence(c, rec.InnocenceAnalysis)
	}

	return &Report{
		Document: c.Document(),
		Stem:     SingleStem(e.singlePrefix(), rec.Name(), now),
	}
}

func renderAttorneys(c *layout.Context, ai casefile.AttorneyInfo) {
	c.Title("LEGAL REPRESENTATION", 0)

	if cur := ai.Current; !casefile.Blank(cur.Name) {
		c.Subtitle("Current Attorney", 0)
		c.KeyValue("Name", cur.Name, sectionIndent)
		c.KeyValue("Title", cur.Title, sectionIndent)
		c.KeyValue("Firm", cur.Firm, sectionIndent)
		c.KeyValue("Address", cur.Address, sectionIndent)
		c.KeyValue("Phone", cur.Phone, sectionIndent)
		c.KeyValue("Email", cur.Email, sectionIndent)
		c.KeyValue("Present at Hearing", yesNo(cur.PresentAtHearing), sectionIndent)
		c.KeyValue("Context", cur.RepresentationContext, sectionIndent)
	}

	if tr := ai.Trial; !casefile.Blank(tr.Name) {
		c.Subtitle("Trial Attorney", 0)
		c.KeyValue("Name", tr.Name, sectionIndent)
		c.KeyValue("Address", tr.Address, sectionIndent)
		c.KeyValue("Phone", tr.Phone, sectionIndent)
		c.KeyValue("Case Number", tr.CaseNumber, sectionIndent)
		c.KeyValue("Appointed/Retained", tr.AppointedOrRetained, sectionIndent)
	}

	if ap := ai.Appellate; !casefile.Blank(ap.Name) {
		c.Subtitle("Appellate Attorney", 0)
		c.KeyValue("Name", ap.Name, sectionIndent)
		c.KeyValue("Address", ap.Address, sectionIndent)
		c.KeyValue("Phone", ap.Phone, sectionIndent)
		c.KeyValue("Case Numbers", ap.CaseNumbers, sectionIndent)
		c.KeyValue("Court Level", ap.CourtLevel, sectionIndent)
	}

	var other []string
	for _, o := range ai.Other {
		if casefile.Blank(o.Name) {
			continue
		}
		other = append(other, describeOther(o))
	}
	if len(other) > 0 {
		c.Subtitle("Other Representation", 0)
		c.List(other, sectionIndent)
	}
}

func describeOther(o casefile.OtherRepresentation) string {
	parts := []string{strings.TrimSpace(o.Name)}
	for _, s := range []string{o.Role, o.Organization} {
		if !casefile.Blank(s) {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	line := strings.Join(parts, ", ")
	if !casefile.Blank(o.CaseNumber) {
		line += " (Case " + strings.TrimSpace(o.CaseNumber) + ")"
	}
	return line
}

func renderInnocence(c *layout.Context, ia *casefile.InnocenceAnalysis) {
	s := ia.Summary
	c.Title("INNOCENCE ANALYSIS", 0)
	c.KeyValue("Overall Assessment", s.OverallAssessment, 0)
	c.KeyValue("Total Findings", strconv.Itoa(s.TotalFindings), 0)
	c.KeyValue("Innocence Indicators", strconv.Itoa(s.InnocenceIndicators), 0)
	c.KeyValue("Responsibility Pressure", strconv.Itoa(s.ResponsibilityPressure), 0)
	c.KeyValue("Consistency Issues", strconv.Itoa(s.ConsistencyIssues), 0)
	c.KeyValue("External Evidence", strconv.Itoa(s.ExternalEvidence), 0)

	if len(ia.Findings) > 0 {
		c.Subtitle("Findings", 0)
		items := make([]string, 0, len(ia.Findings))
		for _, f := range ia.Findings {
			items = append(items, describeFinding(f))
		}
		c.List(items, 0)
	}
	if !casefile.Blank(ia.Note) {
		c.Text(ia.Note, 0, false)
	}
}

func describeFinding(f casefile.InnocenceFinding) string {
	var b strings.Builder
	if f.Category != "" {
		fmt.Fprintf(&b, "[%s] ", strings.ReplaceAll(f.Category, "_", " "))
	}
	fmt.Fprintf(&b, "%q", strings.TrimSpace(f.Quote))
	if f.Speaker != "" {
		b.WriteString(" - " + f.Speaker)
	}
	if f.Page > 0 {
		fmt.Fprintf(&b, " (p. %d", f.Page)
		if f.Line > 0 {
			fmt.Fprintf(&b, ", l. %d", f.Line)
		}
		b.WriteString(")")
	}
	if !casefile.Blank(f.Significance) {
		b.WriteString(": " + strings.TrimSpace(f.Significance))
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// RenderCaseBatch lays out the one-page-per-subject overview of every record.
func (e *Exporter) RenderCaseBatch(recs []*casefile.Record) *Report {
	now := e.now()
	c := layout.New(e.geometry(), e.Metrics)
	c.SetTitle("Parole Hearing Cases Summary")

	c.Title("PAROLE HEARING CASES SUMMARY", 20)
	c.Text("Generated: "+now.Format(dateLayout), 0, false)
	c.Text(fmt.Sprintf("Total Cases: %d", len(recs)), 0, false)
	c.Spacer(batchHeadGap)

	for i, rec := range recs {
		if rec == nil {
			rec = &casefile.Record{}
		}
		d := rec.Demographics
		c.Title(fmt.Sprintf("CASE %d: %s", i+1, rec.Name()), 14)
		c.KeyValue("CDCR Number", d.ClientInfo.CDCRNumber, 0)
		c.KeyValue("Charges", d.ConvictionInfo.Charges, 0)
		c.KeyValue("Sentence", d.ConvictionInfo.SentenceLength, 0)
		c.Text(d.Introduction.ShortSummary, 0, false)
		c.Spacer(headerGap)

		if i < len(recs)-1 {
			c.PageBreak()
		}
	}

	return &Report{
		Document: c.Document(),
		Stem:     BatchStem(e.batchPrefix(), now),
	}
}
