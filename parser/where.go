package parser

import (
	"regexp"
	"strings"
	"unicode"

	"flatdb/database"
)

var conditionRe = regexp.MustCompile(`(?s)^([\w.]+)\s*(<=|>=|!=|<>|==|=|<|>)\s*(.*)$`)

// ParseWhere parses "c op v [AND c op v ...]". Columns may be qualified
// with a table name, which is dropped.
func ParseWhere(s string) (database.Where, error) {
	var where database.Where
	for _, part := range splitAnd(s) {
		matches := conditionRe.FindStringSubmatch(strings.TrimSpace(part))
		if matches == nil {
			return nil, syntaxError("invalid condition %q", part)
		}
		op, err := database.ParseOperator(matches[2])
		if err != nil {
			return nil, err
		}
		where = append(where, database.Condition{
			Column: unqualify(matches[1]),
			Op:     op,
			Value:  parseValue(matches[3]),
		})
	}
	return where, nil
}

// splitAnd splits s on the keyword AND outside quotes.
func splitAnd(s string) []string {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case isKeywordAt(s, i, "AND"):
			parts = append(parts, s[start:i])
			start = i + 3
			i += 2
		}
	}
	return append(parts, s[start:])
}

func isKeywordAt(s string, i int, word string) bool {
	if i+len(word) > len(s) || !strings.EqualFold(s[i:i+len(word)], word) {
		return false
	}
	before := i == 0 || unicode.IsSpace(rune(s[i-1]))
	after := i+len(word) == len(s) || unicode.IsSpace(rune(s[i+len(word)]))
	return before && after
}
