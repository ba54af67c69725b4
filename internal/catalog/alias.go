package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// Alias is an alternate name (synonym) for another relation. It has no
// fields of its own: field access delegates to the relation at the end
// of the alias chain.
type Alias struct {
	relationAttrs

	baseSchema string
	baseName   string
	base       Relation
}

func newAlias(schema *Schema, b *buckets, row AliasRow, log *zap.Logger) *Alias {
	a := &Alias{
		relationAttrs: relationAttrs{
			objectAttrs: newAttrs(row.Name, row.Owner, row.System || schema.System(), row.Created, row.Description),
			schema:      schema,
		},
		baseSchema: row.BaseSchema,
		baseName:   row.BaseName,
	}
	log.Debug("building alias", zap.String("alias", a.QualifiedName()))
	a.dependents = newRelationRefs(schema.db, b.relationDependents[relKey{schema.name, row.Name}])
	return a
}

func (a *Alias) link(db *Database) error {
	s, ok := db.Schemas[a.baseSchema]
	if !ok {
		return fmt.Errorf("alias %s: base schema %s: %w", a.QualifiedName(), a.baseSchema, ErrMissingRef)
	}
	base, ok := s.Relations[a.baseName]
	if !ok {
		return fmt.Errorf("alias %s: base relation %s.%s: %w", a.QualifiedName(), a.baseSchema, a.baseName, ErrMissingRef)
	}
	a.base = base
	return nil
}

// Base returns the relation the alias points at directly.
func (a *Alias) Base() Relation { return a.base }

// FinalBase resolves a chain of aliases down to the table or view at the
// end.
func (a *Alias) FinalBase() Relation {
	var r Relation = a
	for {
		next, ok := r.(*Alias)
		if !ok {
			return r
		}
		r = next.base
	}
}

func (a *Alias) Fields() map[string]*Field { return a.FinalBase().Fields() }
func (a *Alias) FieldList() []*Field       { return a.FinalBase().FieldList() }
func (a *Alias) TypeName() string          { return "Alias" }

func (a *Alias) CreateSQL() string {
	return fmt.Sprintf("CREATE ALIAS %s.%s FOR %s.%s;",
		FormatIdent(a.schema.name), FormatIdent(a.name),
		FormatIdent(a.baseSchema), FormatIdent(a.baseName))
}

func (a *Alias) DropSQL() string {
	return fmt.Sprintf("DROP ALIAS %s.%s;", FormatIdent(a.schema.name), FormatIdent(a.name))
}
