package migration

import (
	"fmt"
	"strings"

	"github.com/eleven-am/schemaviz/internal/driver"
)

// Renderer turns one migration into the SQL that applies it.
type Renderer interface {
	Render(m *Migration) (string, error)
}

// SQLRenderer renders a migration the way it would be applied to an empty
// database: a header naming the migration followed by its statements,
// wrapped in a transaction when the dialect supports transactional DDL.
type SQLRenderer struct {
	Driver driver.Driver
}

func (r SQLRenderer) Render(m *Migration) (string, error) {
	stmts, err := m.Stmts()
	if err != nil {
		return "", fmt.Errorf("failed to split statements: %w", err)
	}

	var body []string
	for _, stmt := range stmts {
		stmt = stripLeadingComments(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		body = append(body, stmt)
	}
	if len(body) == 0 {
		return "", nil
	}

	var sb strings.Builder
	if r.Driver.Transactional() {
		sb.WriteString("BEGIN;\n")
	}
	sb.WriteString("--\n-- " + describe(m) + "\n--\n")
	for _, stmt := range body {
		sb.WriteString(stmt)
		sb.WriteString("\n")
	}
	if r.Driver.Transactional() {
		sb.WriteString("COMMIT;\n")
	}

	return sb.String(), nil
}

func describe(m *Migration) string {
	desc := strings.TrimSpace(strings.ReplaceAll(m.Description, "_", " "))
	if desc == "" {
		return m.Key.String()
	}
	return strings.ToUpper(desc[:1]) + desc[1:]
}

func stripLeadingComments(stmt string) string {
	lines := strings.Split(strings.TrimSpace(stmt), "\n")
	for len(lines) > 0 {
		line := strings.TrimSpace(lines[0])
		if line != "" && !strings.HasPrefix(line, "--") {
			break
		}
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
