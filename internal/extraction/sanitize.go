package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a markdown code-fence wrapper from a model response.
// Handles ```json ... ``` and bare ``` ... ``` plus surrounding prose-free
// whitespace. Text without fences is returned trimmed.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	// drop the info string ("json") up to the first newline
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		first := strings.TrimSpace(t[:i])
		if first == "" || !strings.ContainsAny(first, "{[") {
			t = t[i+1:]
		}
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// SplitEnvelope accepts either a single invoice object or an
// {"invoices": [...]} wrapper and returns one raw JSON blob per invoice,
// in document order.
func SplitEnvelope(data []byte) ([]json.RawMessage, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if arr, ok := probe["invoices"]; ok {
		var many []json.RawMessage
		if err := json.Unmarshal(arr, &many); err != nil {
			return nil, fmt.Errorf("decode invoices array: %w", err)
		}
		return many, nil
	}
	return []json.RawMessage{data}, nil
}

// allowedInvoiceKeys mirrors BuildInvoiceJSONSchema; anything else is noise
// the model invented and is removed before strict validation.
var allowedInvoiceKeys = map[string]struct{}{
	"vendor": {}, "invoice_number": {}, "invoice_date": {}, "due_date": {},
	"payment_terms": {}, "total_amount": {}, "confidence": {},
	"delivery_location": {}, "line_items": {},
}

var allowedLineKeys = map[string]struct{}{
	"item_code": {}, "description": {}, "qty": {}, "unit_price": {},
	"line_total": {}, "confidence": {},
}

// SanitizeInvoiceJSON drops null/empty optional fields and unknown keys so a
// response that is substantively fine still passes the strict
// additionalProperties=false schema. Returns the cleaned JSON and the list of
// touched keys for logging.
func SanitizeInvoiceJSON(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	for k, v := range m {
		if _, ok := allowedInvoiceKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		if v == nil {
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		}
	}
	for _, k := range []string{"vendor", "invoice_number", "invoice_date", "due_date", "payment_terms"} {
		if s, ok := m[k].(string); ok {
			t := strings.TrimSpace(s)
			if t == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = t
			}
		}
	}

	if loc, ok := m["delivery_location"].(map[string]any); ok {
		name, _ := loc["name"].(string)
		if strings.TrimSpace(name) == "" {
			delete(m, "delivery_location")
			dropped = append(dropped, "delivery_location(no name)")
		} else {
			for k, v := range loc {
				if v == nil {
					delete(loc, k)
					dropped = append(dropped, "delivery_location."+k+"(null)")
				}
			}
		}
	}

	if items, ok := m["line_items"].([]any); ok {
		for i, it := range items {
			li, ok := it.(map[string]any)
			if !ok {
				continue
			}
			for k, v := range li {
				if _, known := allowedLineKeys[k]; !known {
					delete(li, k)
					dropped = append(dropped, fmt.Sprintf("line_items[%d].%s(unknown)", i, k))
				} else if v == nil {
					delete(li, k)
					dropped = append(dropped, fmt.Sprintf("line_items[%d].%s(null)", i, k))
				}
			}
		}
	} else if _, present := m["line_items"]; !present {
		// a headerless continuation page sometimes yields no line_items key;
		// the schema requires it, so normalize to an empty list
		m["line_items"] = []any{}
		dropped = append(dropped, "line_items(missing->[])")
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}
