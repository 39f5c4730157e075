package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/restobooks/invoice-pipeline/constants"
)

// Config for the document-understanding client.
type Config struct {
	APIKey      string        // if empty, falls back to env EXTRACTION_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

// Client calls a chat/completions-style document-understanding endpoint and
// turns its free-form text response into typed invoices. It never retries;
// the chunk planner owns retry policy.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("EXTRACTION_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

const systemPrompt = "You are an invoice parser for restaurant supply invoices. " +
	"Return ONLY JSON matching the provided JSON Schema. " +
	"If the document contains more than one distinct invoice, return {\"invoices\": [...]} " +
	"with one object per invoice; otherwise return a single invoice object. " +
	"Use ISO-8601 dates (YYYY-MM-DD) when the date is unambiguous; otherwise copy the printed date text. " +
	"Copy vendor names and item descriptions exactly as printed. " +
	"Report every line item in document order with qty, unit_price and line_total. " +
	"Never output null. If a field is not present, omit it."

// Extract implements Extractor.
func (c *Client) Extract(ctx context.Context, doc []byte, mediaType string, note string) (*Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("extract.call.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"media_type", mediaType,
		"doc_bytes", len(doc),
		"has_note", note != "",
	)

	schema := BuildInvoiceJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserContent(doc, mediaType, note)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("extract.call.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("extract.call.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("decode service response: %w", ErrMalformedResponse)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("extract.call.no_choices", "req_id", rid, "raw", string(raw))
		return nil, fmt.Errorf("no choices in service response: %w", ErrEmptyResponse)
	}

	content := StripFences(cc.Choices[0].Message.Content)
	if content == "" {
		c.log.Error("extract.call.empty_content", "req_id", rid)
		return nil, ErrEmptyResponse
	}

	invoices, err := c.parseInvoices(rid, schema, []byte(content))
	if err != nil {
		return nil, err
	}

	c.log.Info("extract.call.ok",
		"req_id", rid,
		"invoices", len(invoices),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Invoices: invoices, RawText: content}, nil
}

// parseInvoices splits the envelope, validates each invoice against the
// schema (with one lenient sanitize retry), and unmarshals into RawInvoice.
func (c *Client) parseInvoices(rid string, schema map[string]any, content []byte) ([]RawInvoice, error) {
	blobs, err := SplitEnvelope(content)
	if err != nil {
		c.log.Error("extract.parse.envelope_error", "req_id", rid, "error", err)
		return nil, fmt.Errorf("%v: %w", err, ErrMalformedResponse)
	}

	out := make([]RawInvoice, 0, len(blobs))
	for i, blob := range blobs {
		data := []byte(blob)
		if err := ValidateJSONAgainstSchema(schema, data); err != nil {
			cleaned, dropped, sErr := SanitizeInvoiceJSON(data)
			if sErr != nil {
				c.log.Error("extract.parse.sanitize_failed", "req_id", rid, "index", i, "error", sErr)
				return nil, fmt.Errorf("sanitize invoice %d: %w", i, ErrMalformedResponse)
			}
			if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
				c.log.Error("extract.parse.schema_validation_failed",
					"req_id", rid, "index", i, "error", vErr, "content", string(data))
				return nil, fmt.Errorf("invoice %d does not match schema: %w", i, ErrMalformedResponse)
			}
			c.log.Warn("extract.parse.lenient_sanitize_applied", "req_id", rid, "index", i, "dropped", dropped)
			data = cleaned
		}

		var inv RawInvoice
		if err := json.Unmarshal(data, &inv); err != nil {
			c.log.Error("extract.parse.unmarshal_failed", "req_id", rid, "index", i, "error", err)
			return nil, fmt.Errorf("unmarshal invoice %d: %w", i, ErrMalformedResponse)
		}
		out = append(out, inv)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction service http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("extract.call.body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyServiceError(resp.StatusCode, string(raw))
	}
	return raw, nil
}

// buildUserContent assembles the multi-part user message: optional context
// note, then the document as a data URL (image part for images, file part
// for paginated documents).
func buildUserContent(doc []byte, mediaType, note string) []map[string]any {
	var parts []map[string]any
	if note != "" {
		parts = append(parts, map[string]any{"type": "text", "text": note})
	}
	dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(doc)
	if constants.MapMediaTypeToFormat(mediaType) == constants.IMAGE {
		parts = append(parts, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": dataURL},
		})
	} else {
		parts = append(parts, map[string]any{
			"type": "file",
			"file": map[string]any{"filename": "invoice.pdf", "file_data": dataURL},
		})
	}
	parts = append(parts, map[string]any{
		"type": "text",
		"text": "Extract the invoice data from the attached document. Return ONLY JSON that matches the provided schema.",
	})
	return parts
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
