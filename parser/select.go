package parser

import (
	"regexp"
	"strings"

	"flatdb/database"
)

var (
	selectRe    = regexp.MustCompile(`(?is)^SELECT\s+(.+?)\s+FROM\s+(\w+)(.*)$`)
	joinRe      = regexp.MustCompile(`(?is)^\s+(?:INNER\s+)?JOIN\s+(\w+)\s+ON\s+(\w+)\.(\w+)\s*=\s*(\w+)\.(\w+)$`)
	tailRe      = regexp.MustCompile(`(?is)^(?:\s+WHERE\s+(.+?))?(?:\s+ORDER\s+BY\s+(.+))?$`)
	aggregateRe = regexp.MustCompile(`(?i)^(COUNT|SUM|AVG|MIN|MAX)\s*\(\s*(\*|[\w.]+)\s*\)$`)
)

func (p *Parser) parseSelect(sql string) (*Statement, error) {
	// SELECT * FROM users
	// SELECT Name, Age FROM users WHERE Age > 21 AND Name != 'Bob' ORDER BY Age DESC
	// SELECT SUM(Age) FROM users WHERE Age > 21
	// SELECT * FROM users JOIN posts ON users.id = posts.user_id
	matches := selectRe.FindStringSubmatch(sql)
	if len(matches) != 4 {
		return nil, syntaxError("invalid SELECT syntax")
	}
	list, table, tail := strings.TrimSpace(matches[1]), matches[2], matches[3]

	if joinRe.MatchString(tail) {
		return p.parseJoin(table, list, tail)
	}

	stmt := &Statement{Type: Select, Name: table}
	clauses := tailRe.FindStringSubmatch(tail)
	if clauses == nil {
		return nil, syntaxError("invalid SELECT syntax near %q", strings.TrimSpace(tail))
	}
	if clauses[1] != "" {
		where, err := ParseWhere(clauses[1])
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	if clauses[2] != "" {
		keys, err := ParseOrderBy(clauses[2])
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = keys
	}

	if agg := aggregateRe.FindStringSubmatch(list); agg != nil {
		if len(stmt.OrderBy) > 0 {
			return nil, syntaxError("ORDER BY has no meaning for %s", strings.ToUpper(agg[1]))
		}
		stmt.Type = Aggregate
		stmt.Func = strings.ToUpper(agg[1])
		stmt.Column = unqualify(agg[2])
		if stmt.Column == "*" && stmt.Func != "COUNT" {
			return nil, syntaxError("%s(*) is not supported", stmt.Func)
		}
		return stmt, nil
	}

	stmt.Fields = parseFields(list)
	return stmt, nil
}

func (p *Parser) parseJoin(left, list, tail string) (*Statement, error) {
	matches := joinRe.FindStringSubmatch(tail)
	right := matches[1]
	cond := &JoinCondition{
		LeftTable:   matches[2],
		LeftColumn:  matches[3],
		RightTable:  matches[4],
		RightColumn: matches[5],
	}
	// ON may name the tables in either order
	if cond.LeftTable == right && cond.RightTable == left {
		cond = &JoinCondition{
			LeftTable:   left,
			LeftColumn:  cond.RightColumn,
			RightTable:  right,
			RightColumn: cond.LeftColumn,
		}
	}
	if cond.LeftTable != left {
		return nil, syntaxError("join condition references unknown table '%s'", cond.LeftTable)
	}
	if cond.RightTable != right {
		return nil, syntaxError("join condition references unknown table '%s'", cond.RightTable)
	}

	return &Statement{
		Type:   Join,
		Name:   left,
		Fields: parseFields(list),
		Join:   cond,
	}, nil
}

// parseFields returns nil for "*", meaning every column.
func parseFields(list string) []string {
	if list == "*" {
		return nil
	}
	fields := splitList(list)
	for i, f := range fields {
		fields[i] = unqualify(f)
	}
	return fields
}

// ParseOrderBy parses "c [ASC|DESC], ...".
func ParseOrderBy(s string) ([]database.SortKey, error) {
	var keys []database.SortKey
	for _, item := range splitList(s) {
		words := strings.Fields(item)
		if len(words) == 0 || len(words) > 2 {
			return nil, syntaxError("invalid ORDER BY item %q", item)
		}
		key := database.SortKey{Column: unqualify(words[0])}
		if len(words) == 2 {
			switch strings.ToUpper(words[1]) {
			case "ASC":
			case "DESC":
				key.Desc = true
			default:
				return nil, syntaxError("invalid sort direction %q", words[1])
			}
		}
		keys = append(keys, key)
	}
	return keys, nil
}
