package query

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidQuery is returned for filter expressions that do not contain a
// recognized comparison operator or carry a non-numeric value.
var ErrInvalidQuery = errors.New("invalid comparison query")

// Op identifies a range comparison operator.
type Op string

const (
	OpGT  Op = "gt"
	OpGTE Op = "gte"
	OpLT  Op = "lt"
	OpLTE Op = "lte"
)

var bracketOps = map[string]Op{
	"gt":  OpGT,
	"gte": OpGTE,
	"lt":  OpLT,
	"lte": OpLTE,
}

// Comparison is a single range predicate on one field. Only numeric values are
// supported; string range queries are not.
type Comparison struct {
	Field string
	Op    Op
	Value float64
}

// ParseComparison tokenizes a single-field expression of the form
// field<op>value, where <op> is one of >=, >, <=, <. The operator is located by
// position and matched longest-first, so "tuition<=5000" always selects <=,
// never a bare <.
func ParseComparison(expr string) (Comparison, error) {
	idx := strings.IndexAny(expr, "<>")
	if idx < 0 {
		return Comparison{}, ErrInvalidQuery
	}

	opLen := 1
	if idx+1 < len(expr) && expr[idx+1] == '=' {
		opLen = 2
	}

	var op Op
	switch expr[idx : idx+opLen] {
	case ">=":
		op = OpGTE
	case ">":
		op = OpGT
	case "<=":
		op = OpLTE
	case "<":
		op = OpLT
	}

	field := strings.TrimSpace(expr[:idx])
	raw := strings.TrimSpace(expr[idx+opLen:])
	if field == "" || raw == "" {
		return Comparison{}, ErrInvalidQuery
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Comparison{}, ErrInvalidQuery
	}

	return Comparison{Field: field, Op: op, Value: value}, nil
}

// ParseBracketKey recognizes the qs-style form "tuition[gte]" and returns the
// field name and operator. ok is false when the key carries no bracket suffix.
func ParseBracketKey(key string) (field string, op Op, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	op, known := bracketOps[key[open+1:len(key)-1]]
	if !known {
		return "", "", false
	}
	return key[:open], op, true
}
