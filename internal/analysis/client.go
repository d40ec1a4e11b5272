// Package analysis talks to the remote hearing-analysis service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/casereport/internal/casefile"
)

// Client calls the analysis service's PDF endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	stats      *Stats
}

func NewClient(baseURL string, timeout time.Duration, stats *Stats) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		stats: stats,
	}
}

// ProcessResult is the body of a /pdf/process response.
type ProcessResult struct {
	Success             bool   `json:"success"`
	Filename            string `json:"filename"`
	FileSize            int64  `json:"file_size"`
	ExtractedTextLength int    `json:"extracted_text_length"`
	MarkdownSummary     string `json:"markdown_summary"`
	SummaryType         string `json:"summary_type"`
}

// TextResult is the body of a /pdf/extract-text response.
type TextResult struct {
	Success       bool   `json:"success"`
	Filename      string `json:"filename"`
	FileSize      int64  `json:"file_size"`
	ExtractedText string `json:"extracted_text"`
}

// ParoleSummary requests the structured parole summary for a PDF.
func (c *Client) ParoleSummary(ctx context.Context, filename string, data []byte) (*casefile.ParoleSummary, error) {
	var out casefile.ParoleSummary
	if err := c.post(ctx, "/pdf/parole-summary", filename, data, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InnocenceAnalysis requests the innocence analysis for a PDF. Malformed
// findings are dropped.
func (c *Client) InnocenceAnalysis(ctx context.Context, filename string, data []byte) (*casefile.InnocenceResult, error) {
	var out casefile.InnocenceResult
	if err := c.post(ctx, "/pdf/innocence-analysis", filename, data, nil, &out); err != nil {
		return nil, err
	}
	kept := out.InnocenceAnalysis.Findings[:0]
	for i := range out.InnocenceAnalysis.Findings {
		if ValidateFinding(&out.InnocenceAnalysis.Findings[i]) {
			kept = append(kept, out.InnocenceAnalysis.Findings[i])
		}
	}
	out.InnocenceAnalysis.Findings = kept
	return &out, nil
}

// Process requests a free-form markdown summary. An empty prompt lets the
// service use its default; maxTokens <= 0 leaves the service default.
func (c *Client) Process(ctx context.Context, filename string, data []byte, prompt string, maxTokens int) (*ProcessResult, error) {
	fields := map[string]string{}
	if prompt != "" {
		fields["prompt"] = prompt
	}
	if maxTokens > 0 {
		fields["max_tokens"] = strconv.Itoa(maxTokens)
	}
	var out ProcessResult
	if err := c.post(ctx, "/pdf/process", filename, data, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractText asks the service for the PDF's plain text without analysis.
func (c *Client) ExtractText(ctx context.Context, filename string, data []byte) (*TextResult, error) {
	var out TextResult
	if err := c.post(ctx, "/pdf/extract-text", filename, data, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze runs both analyses concurrently and merges them into one record.
// When exactly one side fails the record is partial; when both fail both
// errors are returned joined, so IsRetryable still sees either one.
func (c *Client) Analyze(ctx context.Context, filename string, data []byte) (*casefile.Record, error) {
	var (
		wg           sync.WaitGroup
		parole       *casefile.ParoleSummary
		innocence    *casefile.InnocenceResult
		paroleErr    error
		innocenceErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		parole, paroleErr = c.ParoleSummary(ctx, filename, data)
	}()
	go func() {
		defer wg.Done()
		innocence, innocenceErr = c.InnocenceAnalysis(ctx, filename, data)
	}()
	wg.Wait()

	if paroleErr != nil && innocenceErr != nil {
		return nil, errors.Join(paroleErr, innocenceErr)
	}
	return casefile.Merge(parole, innocence, paroleErr, innocenceErr)
}

func (c *Client) post(ctx context.Context, path, filename string, data []byte, fields map[string]string, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.stats != nil {
		c.stats.Record(path, time.Since(start).Milliseconds())
	}
	if err != nil {
		return fmt.Errorf("analysis %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    errorDetail(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analysis %s status %d: %s", path, resp.StatusCode, errorDetail(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w (raw: %s)", path, err, truncate(string(respBody), 200))
	}
	return nil
}

// errorDetail pulls the "detail" message out of an error body, falling back
// to the raw body.
func errorDetail(body []byte) string {
	var e struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != nil {
		if s, ok := e.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(e.Detail); err == nil {
			return string(b)
		}
	}
	return truncate(strings.TrimSpace(string(body)), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether err wraps a *RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
