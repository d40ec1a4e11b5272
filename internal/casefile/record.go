package casefile

import (
	"strings"
)

// Record is one subject's case file as returned by the analysis service.
type Record struct {
	ID                  int    `json:"id"`
	Success             bool   `json:"success"`
	Filename            string `json:"filename"`
	FileSize            int64  `json:"file_size"`
	ExtractedTextLength int    `json:"extracted_text_length"`
	MarkdownSummary     string `json:"markdown_summary"`
	SummaryType         string `json:"summary_type"`

	Demographics Demographics `json:"demographics"`

	InnocenceAnalysis *InnocenceAnalysis `json:"innocence_analysis,omitempty"`
	AnalysisType      string             `json:"analysis_type,omitempty"`

	// Set when one of the two analyses failed and the record is partial.
	ParoleSummaryError     string `json:"parole_summary_error,omitempty"`
	InnocenceAnalysisError string `json:"innocence_analysis_error,omitempty"`

	// ContentHash is the SHA-256 of the uploaded file. Not part of the wire format.
	ContentHash string `json:"-"`
}

// Demographics is the structured parole summary.
type Demographics struct {
	ClientInfo            ClientInfo          `json:"clientInfo"`
	Introduction          Introduction        `json:"introduction"`
	EvidenceUsedToConvict []string            `json:"evidenceUsedToConvict"`
	PotentialTheory       string              `json:"potentialTheory"`
	ConvictionInfo        ConvictionInfo      `json:"convictionInfo"`
	AppealInfo            AppealInfo          `json:"appealInfo"`
	AttorneyInfo          AttorneyInfo        `json:"attorneyInfo"`
	NewEvidence           []string            `json:"newEvidence"`
	Codefendants          string              `json:"codefendants"`
	PhysicalDescription   PhysicalDescription `json:"physicalDescription"`
	VictimInfo            VictimInfo          `json:"victimInfo"`
	PrisonRecord          PrisonRecord        `json:"prisonRecord"`
}

type ClientInfo struct {
	Name        string `json:"name"`
	CDCRNumber  string `json:"cdcrNumber"`
	DateOfBirth string `json:"dateOfBirth"`
	ContactInfo string `json:"contactInfo"`
}

type Introduction struct {
	ShortSummary string `json:"shortSummary"`
}

type ConvictionInfo struct {
	DateOfCrime      string `json:"dateOfCrime"`
	LocationOfCrime  string `json:"locationOfCrime"`
	DateOfArrest     string `json:"dateOfArrest"`
	Charges          string `json:"charges"`
	DateOfConviction string `json:"dateOfConviction"`
	SentenceLength   string `json:"sentenceLength"`
	County           string `json:"county"`
	TrialOrPlea      string `json:"trialOrPlea"`
}

type AppealInfo struct {
	DirectAppealFiled        string `json:"directAppealFiled"`
	AppellateCourtCaseNumber string `json:"appellateCourtCaseNumber"`
	DateDecided              string `json:"dateDecided"`
	Result                   string `json:"result"`
	// The service spells this key "habenasFilings".
	HabeasFilings []string `json:"habenasFilings"`
}

type AttorneyInfo struct {
	Current   CurrentAttorney       `json:"currentAttorneyForIncarceratedPerson"`
	Trial     TrialAttorney         `json:"trialAttorney"`
	Appellate AppellateAttorney     `json:"appellateAttorney"`
	Other     []OtherRepresentation `json:"otherLegalRepresentation"`
}

type CurrentAttorney struct {
	Name                  string `json:"name"`
	Title                 string `json:"title"`
	Firm                  string `json:"firm"`
	Address               string `json:"address"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	PresentAtHearing      bool   `json:"presentAtHearing"`
	RepresentationContext string `json:"representationContext"`
}

type TrialAttorney struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	Phone               string `json:"phone"`
	CaseNumber          string `json:"caseNumber"`
	AppointedOrRetained string `json:"appointedOrRetained"`
}

type AppellateAttorney struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	CaseNumbers string `json:"caseNumbers"`
	CourtLevel  string `json:"courtLevel"`
}

type OtherRepresentation struct {
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	CaseNumber   string `json:"caseNumber,omitempty"`
	Organization string `json:"organization,omitempty"`
}

type PhysicalDescription struct {
	Height              string `json:"height"`
	Weight              string `json:"weight"`
	Race                string `json:"race"`
	Build               string `json:"build"`
	DistinguishingMarks string `json:"distinguishingMarks"`
}

type VictimInfo struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

type PrisonRecord struct {
	Conduct     string `json:"conduct"`
	Programming string `json:"programming"`
	Support     string `json:"support"`
}

// InnocenceAnalysis is the result of the innocence-analysis endpoint.
type InnocenceAnalysis struct {
	Findings    []InnocenceFinding `json:"findings"`
	Summary     InnocenceSummary   `json:"summary"`
	RawAnalysis string             `json:"raw_analysis,omitempty"`
	Note        string             `json:"note,omitempty"`
}

// InnocenceFinding is one quoted passage flagged by the analysis.
type InnocenceFinding struct {
	Quote        string `json:"quote"`
	Speaker      string `json:"speaker"`
	Page         int    `json:"page"`
	Line         int    `json:"line"`
	Category     string `json:"category"`
	Significance string `json:"significance"`
}

type InnocenceSummary struct {
	TotalFindings          int    `json:"total_findings"`
	InnocenceIndicators    int    `json:"innocence_indicators"`
	ResponsibilityPressure int    `json:"responsibility_pressure"`
	ConsistencyIssues      int    `json:"consistency_issues"`
	ExternalEvidence       int    `json:"external_evidence"`
	OverallAssessment      string `json:"overall_assessment"`
}

// Blank reports whether s is empty or whitespace-only.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Name returns the subject's name.
func (r *Record) Name() string {
	return r.Demographics.ClientInfo.Name
}

// Partial reports whether one of the two analyses failed.
func (r *Record) Partial() bool {
	return r.ParoleSummaryError != "" || r.InnocenceAnalysisError != ""
}

// SidebarEntry is the condensed listing view of a record.
type SidebarEntry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CDCRNumber  string `json:"cdcrNumber"`
	DateOfBirth string `json:"dateOfBirth"`
	ContactInfo string `json:"contactInfo"`
	Status      string `json:"status"`
}

// Sidebar returns the listing view of the record.
func (r *Record) Sidebar() SidebarEntry {
	status := "complete"
	switch {
	case !r.Success:
		status = "failed"
	case r.Partial():
		status = "partial"
	}
	ci := r.Demographics.ClientInfo
	return SidebarEntry{
		ID:          r.ID,
		Name:        ci.Name,
		CDCRNumber:  ci.CDCRNumber,
		DateOfBirth: ci.DateOfBirth,
		ContactInfo: ci.ContactInfo,
		Status:      status,
	}
}
