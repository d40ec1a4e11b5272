package casefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParoleSummary is the body of a successful /pdf/parole-summary response.
type ParoleSummary struct {
	Success             bool         `json:"success"`
	Filename            string       `json:"filename"`
	FileSize            int64        `json:"file_size"`
	ExtractedTextLength int          `json:"extracted_text_length"`
	MarkdownSummary     string       `json:"markdown_summary"`
	Demographics        Demographics `json:"demographics"`
	SummaryType         string       `json:"summary_type"`
}

// InnocenceResult is the body of a successful /pdf/innocence-analysis response.
type InnocenceResult struct {
	Success             bool              `json:"success"`
	Filename            string            `json:"filename"`
	FileSize            int64             `json:"file_size"`
	ExtractedTextLength int               `json:"extracted_text_length"`
	InnocenceAnalysis   InnocenceAnalysis `json:"innocence_analysis"`
	AnalysisType        string            `json:"analysis_type"`
	Categories          []string          `json:"categories"`
}

// Decode reads either a single JSON record or an array of records.
func Decode(r io.Reader) ([]*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("no records in input")
	}

	if data[0] == '[' {
		var recs []*Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode record list: %w", err)
		}
		out := recs[:0]
		for _, rec := range recs {
			if rec != nil {
				out = append(out, rec)
			}
		}
		return out, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return []*Record{&rec}, nil
}

// Merge combines the two analysis responses into one record. A failure on one
// side is recorded on the record; failures on both sides are returned.
func Merge(parole *ParoleSummary, innocence *InnocenceResult, paroleErr, innocenceErr error) (*Record, error) {
	if parole == nil && paroleErr == nil {
		paroleErr = errors.New("no parole summary")
	}
	if innocence == nil && innocenceErr == nil {
		innocenceErr = errors.New("no innocence analysis")
	}
	if paroleErr != nil && innocenceErr != nil {
		return nil, fmt.Errorf("both analyses failed: parole summary: %v; innocence analysis: %w", paroleErr, innocenceErr)
	}

	rec := &Record{Success: true}
	if paroleErr != nil {
		rec.ParoleSummaryError = paroleErr.Error()
	} else {
		rec.Filename = parole.Filename
		rec.FileSize = parole.FileSize
		rec.ExtractedTextLength = parole.ExtractedTextLength
		rec.MarkdownSummary = parole.MarkdownSummary
		rec.SummaryType = parole.SummaryType
		rec.Demographics = parole.Demographics
	}

	if innocenceErr != nil {
		rec.InnocenceAnalysisError = innocenceErr.Error()
	} else {
		ia := innocence.InnocenceAnalysis
		rec.InnocenceAnalysis = &ia
		rec.AnalysisType = innocence.AnalysisType
		if rec.Filename == "" {
			rec.Filename = innocence.Filename
			rec.FileSize = innocence.FileSize
			rec.ExtractedTextLength = innocence.ExtractedTextLength
		}
	}
	return rec, nil
}
