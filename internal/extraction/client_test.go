package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
}

func TestExtractParsesSingleInvoice(t *testing.T) {
	payload := "```json\n" + `{
		"vendor": "Acme Foods",
		"invoice_number": "A100",
		"invoice_date": "2025-03-04",
		"total_amount": "12.50",
		"confidence": 0.92,
		"line_items": [
			{"item_code": "TOM-1", "description": "tomatoes", "qty": "2", "unit_price": "6.25", "line_total": "12.50"}
		]
	}` + "\n```"

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(chatResponse(payload)))
	})

	res, err := c.Extract(context.Background(), []byte("img"), "image/jpeg", "")
	require.NoError(t, err)
	require.Len(t, res.Invoices, 1)

	inv := res.Invoices[0]
	assert.Equal(t, "Acme Foods", inv.Vendor)
	assert.Equal(t, "A100", inv.InvoiceNumber)
	assert.Equal(t, 0.92, inv.Confidence)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "TOM-1", inv.LineItems[0].ItemCode)
	assert.True(t, inv.TotalAmount.Equal(inv.LineItems[0].LineTotal))
	assert.NotEmpty(t, res.RawText, "raw response text retained for audit")
}

func TestExtractParsesMultiInvoiceEnvelope(t *testing.T) {
	payload := `{"invoices":[
		{"vendor":"Acme","invoice_date":"2025-03-04","total_amount":"1.00","line_items":[]},
		{"vendor":"Valley","invoice_date":"2025-03-05","total_amount":"2.00","line_items":[]}
	]}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(payload)))
	})

	res, err := c.Extract(context.Background(), []byte("pdf"), "application/pdf", "pages 1 through 2")
	require.NoError(t, err)
	require.Len(t, res.Invoices, 2)
	assert.Equal(t, "Acme", res.Invoices[0].Vendor)
	assert.Equal(t, "Valley", res.Invoices[1].Vendor)
}

func TestExtractClassifies413AsPayloadTooLarge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Payload Too Large", http.StatusRequestEntityTooLarge)
	})

	_, err := c.Extract(context.Background(), []byte("pdf"), "application/pdf", "")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestExtractClassifiesOversizedErrorText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"This request exceeds the maximum content size."}}`))
	})

	_, err := c.Extract(context.Background(), []byte("pdf"), "application/pdf", "")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestExtractOtherServiceErrorIsNotTooLarge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"backend exploded"}}`))
	})

	_, err := c.Extract(context.Background(), []byte("pdf"), "application/pdf", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPayloadTooLarge)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractEmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse("```json\n```")))
	})

	_, err := c.Extract(context.Background(), []byte("img"), "image/png", "")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestExtractMalformedContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse("the invoice looks fine to me")))
	})

	_, err := c.Extract(context.Background(), []byte("img"), "image/png", "")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractAppliesLenientSanitize(t *testing.T) {
	// substantively valid response spoiled by an invented key and a null
	payload := `{
		"vendor": "Acme",
		"invoice_date": "2025-03-04",
		"total_amount": "1.00",
		"due_date": null,
		"reasoning": "...",
		"line_items": []
	}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(payload)))
	})

	res, err := c.Extract(context.Background(), []byte("img"), "image/png", "")
	require.NoError(t, err)
	require.Len(t, res.Invoices, 1)
	assert.Equal(t, "Acme", res.Invoices[0].Vendor)
	assert.Empty(t, res.Invoices[0].DueDate)
}
