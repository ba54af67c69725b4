// Package source extracts catalog rows from live databases and from XML
// dump files. Every extractor produces the same flat row set, which the
// catalog package then reconciles into an object graph; extractors never
// cross-reference anything themselves.
package source

import (
	"context"

	"github.com/catadoc/catadoc/internal/catalog"
)

// Source is a provider of catalog rows.
type Source interface {
	// Extract reads the entire catalog. The returned row set is
	// self-contained: every type, parent and reference it mentions is
	// declared by one of its own rows.
	Extract(ctx context.Context) (*catalog.RowSet, error)
}

// timingCode maps the ANSI information_schema ACTION_TIMING strings to
// trigger time codes.
func timingCode(s string) catalog.TriggerTime {
	switch s {
	case "BEFORE":
		return catalog.TriggerBefore
	case "AFTER":
		return catalog.TriggerAfter
	case "INSTEAD OF":
		return catalog.TriggerInsteadOf
	}
	return catalog.TriggerTime(s)
}

// eventCode maps EVENT_MANIPULATION strings to trigger event codes.
func eventCode(s string) catalog.TriggerEvent {
	switch s {
	case "INSERT":
		return catalog.TriggerInsert
	case "UPDATE":
		return catalog.TriggerUpdate
	case "DELETE":
		return catalog.TriggerDelete
	}
	return catalog.TriggerEvent(s)
}

// orientationCode maps ACTION_ORIENTATION strings to granularity codes.
func orientationCode(s string) catalog.TriggerGranularity {
	switch s {
	case "ROW":
		return catalog.TriggerPerRow
	case "STATEMENT":
		return catalog.TriggerPerStatement
	}
	return catalog.TriggerGranularity(s)
}

// ruleCode maps referential_constraints rule strings to FK rule codes.
func ruleCode(s string) catalog.FKRule {
	switch s {
	case "NO ACTION":
		return catalog.FKNoAction
	case "CASCADE":
		return catalog.FKCascade
	case "SET NULL", "SET DEFAULT":
		return catalog.FKSetNull
	case "RESTRICT":
		return catalog.FKRestrict
	}
	return catalog.FKRule(s)
}

// typeRegistry collects the datatype names an extraction encounters so
// the row set can declare them all under the engine's system schema.
// Types in fixedSizes are emitted with that size and therefore render
// without a length; everything else is treated as variably sized.
type typeRegistry struct {
	schema     string
	fixedSizes map[string]int
	seen       map[string]bool
	order      []string
}

func newTypeRegistry(schema string, fixedSizes map[string]int) *typeRegistry {
	return &typeRegistry{
		schema:     schema,
		fixedSizes: fixedSizes,
		seen:       map[string]bool{},
	}
}

func (r *typeRegistry) add(name string) {
	if !r.seen[name] {
		r.seen[name] = true
		r.order = append(r.order, name)
	}
}

func (r *typeRegistry) rows() []catalog.DatatypeRow {
	rows := make([]catalog.DatatypeRow, 0, len(r.order))
	for _, name := range r.order {
		row := catalog.DatatypeRow{Schema: r.schema, Name: name, System: true}
		if size, ok := r.fixedSizes[name]; ok {
			s := size
			row.Size = &s
		}
		rows = append(rows, row)
	}
	return rows
}
