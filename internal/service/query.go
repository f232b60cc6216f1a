package service

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is one query-string pair.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered query string. Pairs are encoded in insertion order.
type Query struct {
	params []Param
}

// Add appends key=value unless value is empty.
func (q *Query) Add(key, value string) *Query {
	if value == "" {
		return q
	}
	q.params = append(q.params, Param{Key: key, Value: value})
	return q
}

// AddInt appends key=n unless n is zero.
func (q *Query) AddInt(key string, n int) *Query {
	if n == 0 {
		return q
	}
	return q.Add(key, strconv.Itoa(n))
}

func (q *Query) Len() int {
	return len(q.params)
}

// Encode renders "?k=v&..." or "" for an empty query.
func (q *Query) Encode() string {
	if len(q.params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range q.params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// ListParams are the common list filters. Zero values are left out.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	Category  string
	StartDate string
	EndDate   string
	SortBy    string
	SortOrder string
	// Extra is appended after the fixed fields, in order.
	Extra []Param
}

func (p ListParams) Query() *Query {
	q := &Query{}
	q.AddInt("page", p.Page).
		AddInt("limit", p.Limit).
		Add("search", p.Search).
		Add("status", p.Status).
		Add("category", p.Category).
		Add("startDate", p.StartDate).
		Add("endDate", p.EndDate).
		Add("sortBy", p.SortBy).
		Add("sortOrder", p.SortOrder)
	for _, e := range p.Extra {
		q.Add(e.Key, e.Value)
	}
	return q
}

func (p ListParams) Encode() string {
	return p.Query().Encode()
}

// Key renders the params as cache-key parts in the same order as the query.
func (p ListParams) Key() []string {
	q := p.Query()
	out := make([]string, 0, q.Len())
	for _, kv := range q.params {
		out = append(out, kv.Key+"="+kv.Value)
	}
	return out
}

func withQuery(path string, q *Query) string {
	return path + q.Encode()
}
