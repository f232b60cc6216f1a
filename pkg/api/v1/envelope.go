package v1

import (
	"bytes"
	"encoding/json"
)

// Response is the single envelope every client call resolves to.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Accepted reports whether the backend accepted the call.
func (r *Response[T]) Accepted() bool {
	return r != nil && r.Success
}

// Pagination mirrors the list metadata computed by the backend.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Page is a list payload. Backends name the slice after the resource
// ("admins", "faqs", ...) so decoding takes the first array-valued field.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &p.Items)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if raw, ok := fields["pagination"]; ok {
		if err := json.Unmarshal(raw, &p.Pagination); err != nil {
			return err
		}
	}
	if raw, ok := fields["items"]; ok {
		return json.Unmarshal(raw, &p.Items)
	}
	for key, raw := range fields {
		if key == "pagination" {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			return json.Unmarshal(raw, &p.Items)
		}
	}
	return nil
}
