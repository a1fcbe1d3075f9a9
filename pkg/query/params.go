package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// reserved keys control pagination and projection and are never treated as
// filters.
var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// FieldPolicy optionally restricts the field names accepted for select/sort.
// A nil policy passes every field through to storage verbatim.
type FieldPolicy struct {
	Allowed map[string]bool
}

// NewFieldPolicy builds a policy allowing exactly the given fields. An empty
// list yields a nil policy, which allows everything.
func NewFieldPolicy(fields []string) *FieldPolicy {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return &FieldPolicy{Allowed: m}
}

func (p *FieldPolicy) permits(field string) bool {
	if p == nil || p.Allowed == nil {
		return true
	}
	return p.Allowed[strings.TrimPrefix(field, "-")]
}

// ListParams is the structured form of a list request's query string.
type ListParams struct {
	// Filter maps field names to either a plain equality value (string) or a
	// map[Op]float64 of merged range comparisons.
	Filter map[string]any
	Select []string
	Sort   []string
	Page   int
	Limit  int
}

// Page is a pagination cursor in the response metadata.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the optional next/prev cursors. Keys are absent, not
// null, when not applicable.
type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// ListResult is what the list/filter/paginate adapter hands back to handlers.
type ListResult struct {
	Items      []map[string]any
	Total      int64
	Filtered   int64
	Pagination Pagination
}

// ParseListParams partitions a raw query string into reserved controls and
// filter parameters, translating comparison expressions along the way.
// Malformed comparisons abort the whole request with ErrInvalidQuery.
func ParseListParams(values url.Values, policy *FieldPolicy) (ListParams, error) {
	p := ListParams{
		Filter: map[string]any{},
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}

	for key, vals := range values {
		if reserved[key] {
			continue
		}
		val := ""
		if len(vals) > 0 {
			val = vals[0]
		}

		if field, op, ok := ParseBracketKey(key); ok {
			num, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return ListParams{}, ErrInvalidQuery
			}
			mergeComparison(p.Filter, Comparison{Field: field, Op: op, Value: num})
			continue
		}

		// Raw operator forms arrive split around '=' in unpredictable ways
		// ("tuition>=5000" parses as key "tuition>" value "5000"), so the
		// original expression is reassembled before tokenizing.
		expr := key
		if val != "" {
			expr = key + "=" + val
		}
		if strings.ContainsAny(expr, "<>") {
			cmp, err := ParseComparison(expr)
			if err != nil {
				return ListParams{}, err
			}
			mergeComparison(p.Filter, cmp)
			continue
		}

		p.Filter[key] = val
	}

	if raw := values.Get("select"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" && policy.permits(f) {
				p.Select = append(p.Select, f)
			}
		}
	}
	if raw := values.Get("sort"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" && policy.permits(f) {
				p.Sort = append(p.Sort, f)
			}
		}
	}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n > 0 {
		p.Limit = n
	}

	return p, nil
}

func mergeComparison(filter map[string]any, cmp Comparison) {
	ops, ok := filter[cmp.Field].(map[Op]float64)
	if !ok {
		ops = map[Op]float64{}
		filter[cmp.Field] = ops
	}
	ops[cmp.Op] = cmp.Value
}

// PaginationFor computes the next/prev cursors for a window over filtered
// matching documents.
func PaginationFor(page, limit int, filtered int64) Pagination {
	var pg Pagination
	if int64(page*limit) < filtered {
		pg.Next = &Page{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		pg.Prev = &Page{Page: page - 1, Limit: limit}
	}
	return pg
}
