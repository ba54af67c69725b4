package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// anonymousName matches system-generated constraint names (DB2 style).
// Constraints with such names are emitted without a CONSTRAINT clause.
var anonymousName = regexp.MustCompile(`^SQL\d{15}$`)

// FormatIdent formats an object name for use in SQL. Names consisting
// entirely of identifier characters (and not starting with a digit) are
// emitted unquoted in upper case; anything else is wrapped in double
// quotes with embedded quotes doubled.
func FormatIdent(name string) string {
	if name == "" {
		return `""`
	}
	if isPlainIdent(name) {
		return strings.ToUpper(name)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isPlainIdent(name string) bool {
	for i, c := range name {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c == '#' || c == '$' || c == '@' || c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// QuoteString formats a string literal for SQL. Single quotes are doubled.
// Carriage returns and line feeds are rewritten as concatenated hex
// literal segments so the resulting statement stays on a single line.
func QuoteString(s string) string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, "'"+strings.ReplaceAll(cur.String(), "'", "''")+"'")
			cur.Reset()
		}
	}
	for _, c := range s {
		if c == '\r' || c == '\n' {
			flush()
			parts = append(parts, fmt.Sprintf("X'%02X'", c))
			continue
		}
		cur.WriteRune(c)
	}
	flush()
	if len(parts) == 0 {
		return "''"
	}
	return strings.Join(parts, " || ")
}

// FormatSize renders a byte count with a binary K/M/G/T suffix when the
// value divides evenly; otherwise the plain number is returned. Used when
// emitting variable-size datatype lengths.
func FormatSize(value int) string {
	if value == 0 {
		return "0"
	}
	suffixes := []string{"", "K", "M", "G", "T", "P", "E"}
	index := 0
	v := value
	for v >= 1024 && v%1024 == 0 && index < len(suffixes)-1 {
		v /= 1024
		index++
	}
	return fmt.Sprintf("%d%s", v, suffixes[index])
}

// identifier tokens are used as map keys and filename stems; they combine
// the entity kind with enough qualifiers to never collide across kinds.
func schemaIdent(schema string) string { return "schema_" + schema }

func tablespaceIdent(name string) string { return "tbspace_" + name }

func datatypeIdent(schema, name string) string {
	return fmt.Sprintf("datatype_%s_%s", schema, name)
}

func relationIdent(schema, name string) string {
	return fmt.Sprintf("relation_%s_%s", schema, name)
}

func indexIdent(schema, name string) string {
	return fmt.Sprintf("index_%s_%s", schema, name)
}

func constraintIdent(schema, table, name string) string {
	return fmt.Sprintf("constraint_%s_%s_%s", schema, table, name)
}

func fieldIdent(schema, relation, name string) string {
	return fmt.Sprintf("field_%s_%s_%s", schema, relation, name)
}

func routineIdent(schema, specificName string) string {
	return fmt.Sprintf("routine_%s_%s", schema, specificName)
}

func paramIdent(schema, specificName string, position int) string {
	return fmt.Sprintf("param_%s_%s_%d", schema, specificName, position)
}

func triggerIdent(schema, name string) string {
	return fmt.Sprintf("trigger_%s_%s", schema, name)
}
