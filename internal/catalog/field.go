package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Field is one column of a relation. Its datatype arrives as a name pair
// and becomes a direct reference during the link pass.
type Field struct {
	objectAttrs
	relation Relation
	pos      int

	// Position is the 1-based declaration position within the relation.
	Position int
	Nullable bool
	Identity bool

	Generated Generation
	// Default holds the default value expression, or the generation
	// expression for generated fields. Empty means none.
	Default string

	Cardinality     *int64
	NullCardinality *int64
	Codepage        *int

	typeSchema string
	typeName   string
	size       *int
	scale      *int
	datatype   *Datatype
}

func newField(relation Relation, row FieldRow, log *zap.Logger) *Field {
	f := &Field{
		objectAttrs:     newAttrs(row.Name, nil, relation.System(), nil, row.Description),
		relation:        relation,
		Position:        row.Position,
		Nullable:        row.Nullable,
		Generated:       row.Generated,
		Cardinality:     row.Cardinality,
		NullCardinality: row.NullCardinality,
		Codepage:        row.Codepage,
		typeSchema:      row.TypeSchema,
		typeName:        row.TypeName,
		size:            row.Size,
		scale:           row.Scale,
	}
	if row.Identity != nil {
		f.Identity = *row.Identity
	}
	if row.Default != nil {
		f.Default = *row.Default
	}
	log.Debug("building field", zap.String("field", f.QualifiedName()))
	return f
}

func (f *Field) link(db *Database) error {
	s, ok := db.Schemas[f.typeSchema]
	if !ok {
		return fmt.Errorf("field %s: datatype schema %s: %w", f.QualifiedName(), f.typeSchema, ErrMissingRef)
	}
	dt, ok := s.Datatypes[f.typeName]
	if !ok {
		return fmt.Errorf("field %s: datatype %s.%s: %w", f.QualifiedName(), f.typeSchema, f.typeName, ErrMissingRef)
	}
	f.datatype = dt
	return nil
}

func (f *Field) Relation() Relation  { return f.relation }
func (f *Field) Schema() *Schema     { return f.relation.Schema() }
func (f *Field) Database() *Database { return f.relation.Database() }
func (f *Field) TypeName() string    { return "Field" }
func (f *Field) Datatype() *Datatype { return f.datatype }

func (f *Field) Identifier() string {
	return fieldIdent(f.relation.Schema().Name(), f.relation.Name(), f.name)
}

func (f *Field) QualifiedName() string {
	return f.relation.QualifiedName() + "." + f.name
}

// Size returns the field's declared length, or nil when the datatype has
// a fixed size.
func (f *Field) Size() *int {
	if f.datatype != nil && f.datatype.VariableSize {
		return f.size
	}
	return nil
}

// Scale returns the field's declared scale, or nil when the datatype has
// a fixed scale.
func (f *Field) Scale() *int {
	if f.datatype != nil && f.datatype.VariableScale {
		return f.scale
	}
	return nil
}

// Key returns the primary key this field is a member of, or nil.
func (f *Field) Key() *UniqueKey {
	t, ok := f.relation.(*Table)
	if !ok || t.PrimaryKey == nil {
		return nil
	}
	for _, kf := range t.PrimaryKey.Fields {
		if kf == f {
			return t.PrimaryKey
		}
	}
	return nil
}

// KeyIndex returns the field's position within the primary key, or -1.
func (f *Field) KeyIndex() int {
	key := f.Key()
	if key == nil {
		return -1
	}
	for i, kf := range key.Fields {
		if kf == f {
			return i
		}
	}
	return -1
}

// DatatypeStr renders the field's datatype with any length and scale in
// parentheses, as it would appear in DDL.
func (f *Field) DatatypeStr() string {
	var s string
	if f.datatype.System() {
		s = FormatIdent(f.datatype.Name())
	} else {
		s = FormatIdent(f.datatype.Schema().Name()) + "." + FormatIdent(f.datatype.Name())
	}
	if f.datatype.VariableSize && f.size != nil {
		s += "(" + FormatSize(*f.size)
		if f.datatype.VariableScale && f.scale != nil {
			s += fmt.Sprintf(",%d", *f.scale)
		}
		s += ")"
	}
	return s
}

// Prototype is the chunk of SQL defining this field in a CREATE TABLE or
// ALTER TABLE ADD COLUMN statement.
func (f *Field) Prototype() string {
	items := []string{FormatIdent(f.name), f.DatatypeStr()}
	if !f.Nullable {
		items = append(items, "NOT NULL")
	}
	switch f.Generated {
	case NotGenerated:
		if f.Default != "" {
			items = append(items, "WITH DEFAULT "+f.Default)
		}
	default:
		items = append(items, fmt.Sprintf("GENERATED %s AS (%s)", f.Generated.Keyword(), f.Default))
	}
	return strings.Join(items, " ")
}

func (f *Field) CreateSQL() string {
	if _, ok := f.relation.(*Table); !ok {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s.%s ADD COLUMN %s;",
		FormatIdent(f.relation.Schema().Name()), FormatIdent(f.relation.Name()), f.Prototype())
}

func (f *Field) DropSQL() string {
	if _, ok := f.relation.(*Table); !ok {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s.%s DROP COLUMN %s;",
		FormatIdent(f.relation.Schema().Name()), FormatIdent(f.relation.Name()), FormatIdent(f.name))
}

// Next returns the field after this one in declaration order, or nil.
func (f *Field) Next() *Field { return nextIn(f.relation.FieldList(), f.pos) }

// Prior returns the field before this one in declaration order, or nil.
func (f *Field) Prior() *Field { return priorIn(f.relation.FieldList(), f.pos) }
