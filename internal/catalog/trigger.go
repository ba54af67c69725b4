package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// Trigger fires on a relation. The target relation arrives as a
// (schema, name) pair and is resolved by the link pass; Dependencies
// proxies the relations the trigger body reads.
type Trigger struct {
	objectAttrs
	schema *Schema

	Time        TriggerTime
	Event       TriggerEvent
	Granularity TriggerGranularity
	SQL         string

	relationSchema string
	relationName   string
	relation       Relation

	Dependencies *RelationRefs
}

func newTrigger(s *Schema, b *buckets, row TriggerRow, log *zap.Logger) *Trigger {
	tr := &Trigger{
		objectAttrs:    newAttrs(row.Name, row.Owner, row.System, row.Created, row.Description),
		schema:         s,
		Time:           row.Time,
		Event:          row.Event,
		Granularity:    row.Granularity,
		relationSchema: row.RelationSchema,
		relationName:   row.RelationName,
		Dependencies:   newRelationRefs(s.db, b.triggerDeps[relKey{row.Schema, row.Name}]),
	}
	if row.SQL != nil {
		tr.SQL = *row.SQL
	}
	log.Debug("building trigger", zap.String("trigger", tr.QualifiedName()))
	return tr
}

func (tr *Trigger) link(db *Database) error {
	s, ok := db.Schemas[tr.relationSchema]
	if !ok {
		return fmt.Errorf("trigger %s: relation schema %s: %w", tr.QualifiedName(), tr.relationSchema, ErrMissingRef)
	}
	rel, ok := s.Relations[tr.relationName]
	if !ok {
		return fmt.Errorf("trigger %s: relation %s.%s: %w", tr.QualifiedName(), tr.relationSchema, tr.relationName, ErrMissingRef)
	}
	tr.relation = rel
	return nil
}

func (tr *Trigger) Schema() *Schema     { return tr.schema }
func (tr *Trigger) Database() *Database { return tr.schema.db }

// Relation returns the relation the trigger fires on.
func (tr *Trigger) Relation() Relation { return tr.relation }

func (tr *Trigger) Identifier() string    { return triggerIdent(tr.schema.name, tr.name) }
func (tr *Trigger) QualifiedName() string { return tr.schema.name + "." + tr.name }
func (tr *Trigger) TypeName() string      { return "Trigger" }

func (tr *Trigger) CreateSQL() string {
	if tr.SQL == "" {
		return ""
	}
	return tr.SQL + ";"
}

func (tr *Trigger) DropSQL() string {
	return fmt.Sprintf("DROP TRIGGER %s.%s;", FormatIdent(tr.schema.name), FormatIdent(tr.name))
}
