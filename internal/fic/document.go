package fic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fic-expenses/pkg/models"
)

// decodeDocument converts a received document and keeps its raw form.
func decodeDocument(raw json.RawMessage) (models.Expense, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.Expense{}, nil
	}
	var w wireExpense
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Expense{}, fmt.Errorf("decode expense: %w", err)
	}
	e := w.toModel()
	e.Document = append(json.RawMessage(nil), raw...)
	return e, nil
}

// encodeDocument builds an update payload for e. When e was fetched, the
// modelled fields are merged onto the fetched document.
func encodeDocument(e models.Expense) (json.RawMessage, error) {
	patch, err := json.Marshal(fromModel(e))
	if err != nil {
		return nil, fmt.Errorf("encode expense: %w", err)
	}
	if len(bytes.TrimSpace(e.Document)) == 0 {
		return patch, nil
	}

	base, err := decodeAny(e.Document)
	if err != nil {
		return nil, fmt.Errorf("fetched document: %w", err)
	}
	over, err := decodeAny(patch)
	if err != nil {
		return nil, err
	}

	merged, err := json.Marshal(mergeJSON(base, over))
	if err != nil {
		return nil, fmt.Errorf("encode expense: %w", err)
	}
	return merged, nil
}

// decodeAny keeps numbers as json.Number so amounts are not reformatted.
func decodeAny(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// mergeJSON overlays patch onto base. Objects merge key by key and arrays
// element by element; anything else in patch replaces base.
func mergeJSON(base, patch interface{}) interface{} {
	switch p := patch.(type) {
	case map[string]interface{}:
		b, ok := base.(map[string]interface{})
		if !ok {
			return p
		}
		out := make(map[string]interface{}, len(b)+len(p))
		for k, v := range b {
			out[k] = v
		}
		for k, v := range p {
			out[k] = mergeJSON(b[k], v)
		}
		return out
	case []interface{}:
		b, _ := base.([]interface{})
		out := make([]interface{}, len(p))
		for i, v := range p {
			if i < len(b) {
				out[i] = mergeJSON(b[i], v)
			} else {
				out[i] = v
			}
		}
		return out
	default:
		return patch
	}
}
