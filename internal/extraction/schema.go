package extraction

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We send it to the service as a structured-output constraint
// and also use it locally to validate what comes back. The response may be a
// single invoice object or {"invoices": [...]}; this schema describes one
// invoice — the envelope is handled before validation.
func BuildInvoiceJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"item_code":   map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"qty":         decimalProp(),
			"unit_price":  decimalProp(),
			"line_total":  decimalProp(),
			"confidence":  confidenceProp(),
		},
		"required": []string{"description", "qty", "unit_price", "line_total"},
	}

	deliveryLocation := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":       map[string]any{"type": "string", "minLength": 1},
			"address":    map[string]any{"type": "string"},
			"confidence": confidenceProp(),
		},
		"required": []string{"name"},
	}

	props := map[string]any{
		"vendor":            map[string]any{"type": "string", "minLength": 1},
		"invoice_number":    map[string]any{"type": "string"},
		"invoice_date":      map[string]any{"type": "string"},
		"due_date":          map[string]any{"type": "string"},
		"payment_terms":     map[string]any{"type": "string"},
		"total_amount":      decimalProp(),
		"confidence":        confidenceProp(),
		"delivery_location": deliveryLocation,
		"line_items":        map[string]any{"type": "array", "items": lineItem},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"vendor", "invoice_date", "total_amount", "line_items"},
	}
}

func decimalProp() map[string]any {
	// models return money both quoted and bare; accept either
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string", "pattern": `^-?\d+(\.\d+)?$`},
			map[string]any{"type": "number"},
		},
	}
}

func confidenceProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
