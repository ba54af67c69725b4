package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// View is a stored query with a field list. Besides the common reverse
// dependents it also tracks its own dependencies: the relations its
// query reads.
type View struct {
	relationAttrs

	ReadOnly bool
	SQL      string

	fields    map[string]*Field
	fieldList []*Field

	Dependencies *RelationRefs
	Triggers     *TriggerRefs
}

func newView(schema *Schema, b *buckets, row ViewRow, log *zap.Logger) *View {
	v := &View{
		relationAttrs: relationAttrs{
			objectAttrs: newAttrs(row.Name, row.Owner, row.System || schema.System(), row.Created, row.Description),
			schema:      schema,
		},
		fields: map[string]*Field{},
	}
	if row.ReadOnly != nil {
		v.ReadOnly = *row.ReadOnly
	}
	if row.SQL != nil {
		v.SQL = *row.SQL
	}
	log.Debug("building view", zap.String("view", v.QualifiedName()))

	key := relKey{schema.name, row.Name}
	for _, fr := range b.fields[key] {
		f := newField(v, fr, log)
		v.fields[fr.Name] = f
		v.fieldList = append(v.fieldList, f)
	}
	for i, f := range v.fieldList {
		f.pos = i
	}
	v.dependents = newRelationRefs(schema.db, b.relationDependents[key])
	v.Dependencies = newRelationRefs(schema.db, b.relationDependencies[key])
	v.Triggers = newTriggerRefs(schema.db, b.relationTriggers[key])
	return v
}

func (v *View) link(db *Database) error {
	for _, f := range v.fieldList {
		if err := f.link(db); err != nil {
			return err
		}
	}
	return nil
}

func (v *View) Fields() map[string]*Field { return v.fields }
func (v *View) FieldList() []*Field       { return v.fieldList }
func (v *View) TypeName() string          { return "View" }

func (v *View) CreateSQL() string {
	if v.SQL == "" {
		return ""
	}
	return v.SQL + ";"
}

func (v *View) DropSQL() string {
	return fmt.Sprintf("DROP VIEW %s.%s;", FormatIdent(v.schema.name), FormatIdent(v.name))
}
