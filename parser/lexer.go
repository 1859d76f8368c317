package parser

import (
	"strings"
	"unicode"
)

// splitList splits s on commas that are outside quotes and parentheses.
func splitList(s string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" || len(parts) > 0 {
		parts = append(parts, last)
	}
	return parts
}

// parseValue strips matching quotes. An unquoted NULL is the empty value.
func parseValue(str string) string {
	str = strings.TrimSpace(str)
	if len(str) >= 2 && (str[0] == '\'' || str[0] == '"') && str[len(str)-1] == str[0] {
		return str[1 : len(str)-1]
	}
	if strings.EqualFold(str, "NULL") {
		return ""
	}
	return str
}

func parseValues(str string) []string {
	parts := splitList(str)
	values := make([]string, len(parts))
	for i, part := range parts {
		values[i] = parseValue(part)
	}
	return values
}

// tokenize splits s into words. Parentheses and commas are tokens of their
// own and quoted strings stay whole, quotes included.
func tokenize(s string) []string {
	var (
		toks  []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
				flush()
			}
		case r == '\'' || r == '"':
			flush()
			quote = r
			cur.WriteRune(r)
		case r == '(' || r == ')' || r == ',':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// cursor walks the tokens of a clause.
type cursor struct {
	toks []string
	pos  int
}

func newCursor(s string) *cursor {
	return &cursor{toks: tokenize(s)}
}

func (c *cursor) done() bool { return c.pos >= len(c.toks) }

func (c *cursor) peek() string {
	if c.done() {
		return ""
	}
	return c.toks[c.pos]
}

func (c *cursor) next() string {
	t := c.peek()
	if !c.done() {
		c.pos++
	}
	return t
}

// accept consumes words if the next tokens match them case-insensitively.
func (c *cursor) accept(words ...string) bool {
	if c.pos+len(words) > len(c.toks) {
		return false
	}
	for i, w := range words {
		if !strings.EqualFold(c.toks[c.pos+i], w) {
			return false
		}
	}
	c.pos += len(words)
	return true
}

func (c *cursor) expect(words ...string) error {
	if !c.accept(words...) {
		return syntaxError("expected %s near %q", strings.Join(words, " "), c.peek())
	}
	return nil
}

// name consumes an identifier.
func (c *cursor) name() (string, error) {
	t := c.next()
	if t == "" || t == "(" || t == ")" || t == "," {
		return "", syntaxError("expected a name near %q", t)
	}
	return t, nil
}

func (c *cursor) rest() string {
	return strings.Join(c.toks[c.pos:], " ")
}

// unqualify drops a "table." prefix from a column reference.
func unqualify(column string) string {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		return column[i+1:]
	}
	return column
}
