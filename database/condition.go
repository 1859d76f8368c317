package database

import (
	"strconv"
	"strings"

	"flatdb/dberror"
	"flatdb/schema"
	"flatdb/storage"
)

// Operator is a comparison operator of a Condition.
type Operator string

const (
	Eq Operator = "="
	Ne Operator = "!="
	Lt Operator = "<"
	Gt Operator = ">"
	Le Operator = "<="
	Ge Operator = ">="
)

// ParseOperator accepts the six operators, plus "<>" and "==".
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.TrimSpace(s)); op {
	case Eq, Ne, Lt, Gt, Le, Ge:
		return op, nil
	case "<>":
		return Ne, nil
	case "==":
		return Eq, nil
	}
	return "", dberror.New("", dberror.ErrInvalidCondition, "unknown operator %q", s)
}

// Condition compares one column with a literal.
type Condition struct {
	Column string
	Op     Operator
	Value  string
}

// Where is a conjunction of conditions. An empty Where matches every row.
type Where []Condition

// IsNumber reports whether s is a non-empty run of digits, '.' and '-'
// that parses as a number.
func IsNumber(s string) bool {
	if s == "" || strings.Trim(s, "0123456789.-") != "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// CheckCondition evaluates field op value. Equality compares the strings
// verbatim. Ordering operators compare as numbers and are false unless
// both sides are numbers.
func CheckCondition(field string, op Operator, value string) bool {
	switch op {
	case Eq:
		return field == value
	case Ne:
		return field != value
	}
	if !IsNumber(field) || !IsNumber(value) {
		return false
	}
	a, _ := strconv.ParseFloat(field, 64)
	b, _ := strconv.ParseFloat(value, 64)
	switch op {
	case Lt:
		return a < b
	case Gt:
		return a > b
	case Le:
		return a <= b
	case Ge:
		return a >= b
	}
	return false
}

// matcher evaluates a Where against raw rows of one layout.
type matcher struct {
	layout  *storage.Layout
	columns []int
	conds   Where
}

func (w Where) bind(layout *storage.Layout) (*matcher, error) {
	m := &matcher{layout: layout, columns: make([]int, len(w)), conds: w}
	for i, c := range w {
		if _, err := ParseOperator(string(c.Op)); err != nil {
			return nil, err
		}
		idx := layout.Table().ColumnIndex(c.Column)
		if idx < 0 {
			return nil, dberror.New("", dberror.ErrColumnNotFound, "column '%s' in condition", c.Column)
		}
		m.columns[i] = idx
	}
	return m, nil
}

func (m *matcher) match(raw []byte) bool {
	for i, c := range m.conds {
		op, _ := ParseOperator(string(c.Op))
		if !CheckCondition(m.layout.DecodeField(raw, m.columns[i]), op, c.Value) {
			return false
		}
	}
	return true
}

// valuesMatch compares two stored values the way foreign keys and joins do:
// numerically for numeric kinds, verbatim otherwise.
func valuesMatch(numeric bool, a, b string) bool {
	if !numeric {
		return a == b
	}
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return false
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return false
	}
	return x == y
}

func numericPair(a, b schema.Kind) bool {
	return a.Numeric() && b.Numeric()
}
