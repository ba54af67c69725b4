package catalog

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Table is a base table: fields in declaration order, constraints, and
// proxies for the indexes and triggers that apply to it.
type Table struct {
	relationAttrs

	LastStats   *time.Time
	Cardinality *int64
	SizeBytes   *int64

	fields    map[string]*Field
	fieldList []*Field

	Constraints    map[string]Constraint
	ConstraintList []Constraint

	UniqueKeys    map[string]*UniqueKey
	UniqueKeyList []*UniqueKey
	// PrimaryKey is the table's single primary key, or nil. It is also
	// present in UniqueKeys and Constraints under its own name.
	PrimaryKey *UniqueKey

	ForeignKeys    map[string]*ForeignKey
	ForeignKeyList []*ForeignKey

	Checks    map[string]*Check
	CheckList []*Check

	// Indexes and Triggers resolve through the canonical schema maps;
	// the owning schema of an index may differ from the table's.
	Indexes  *IndexRefs
	Triggers *TriggerRefs

	tablespaceName string
	tablespace     *Tablespace
}

func newTable(schema *Schema, b *buckets, row TableRow, log *zap.Logger) (*Table, error) {
	t := &Table{
		relationAttrs: relationAttrs{
			objectAttrs: newAttrs(row.Name, row.Owner, row.System || schema.System(), row.Created, row.Description),
			schema:      schema,
		},
		LastStats:      row.LastStats,
		Cardinality:    row.Cardinality,
		SizeBytes:      row.Size,
		fields:         map[string]*Field{},
		Constraints:    map[string]Constraint{},
		UniqueKeys:     map[string]*UniqueKey{},
		ForeignKeys:    map[string]*ForeignKey{},
		Checks:         map[string]*Check{},
		tablespaceName: row.Tablespace,
	}
	log.Debug("building table", zap.String("table", t.QualifiedName()))

	key := relKey{schema.name, row.Name}
	for _, fr := range b.fields[key] {
		if _, dup := t.fields[fr.Name]; dup {
			return nil, fmt.Errorf("field %s.%s: %w", t.QualifiedName(), fr.Name, ErrDuplicateName)
		}
		f := newField(t, fr, log)
		t.fields[fr.Name] = f
		t.fieldList = append(t.fieldList, f)
	}
	for i, f := range t.fieldList {
		f.pos = i
	}

	for _, kr := range b.uniqueKeys[key] {
		if _, dup := t.Constraints[kr.Name]; dup {
			return nil, fmt.Errorf("constraint %s.%s: %w", t.QualifiedName(), kr.Name, ErrDuplicateName)
		}
		uk := newUniqueKey(t, b, kr, log)
		if uk.Primary {
			if t.PrimaryKey != nil {
				return nil, fmt.Errorf("table %s: keys %s and %s: %w",
					t.QualifiedName(), t.PrimaryKey.name, uk.name, ErrDuplicatePrimaryKey)
			}
			t.PrimaryKey = uk
		}
		t.UniqueKeys[kr.Name] = uk
		t.UniqueKeyList = append(t.UniqueKeyList, uk)
		t.Constraints[kr.Name] = uk
	}
	for _, kr := range b.foreignKeys[key] {
		if _, dup := t.Constraints[kr.Name]; dup {
			return nil, fmt.Errorf("constraint %s.%s: %w", t.QualifiedName(), kr.Name, ErrDuplicateName)
		}
		fk := newForeignKey(t, b, kr, log)
		t.ForeignKeys[kr.Name] = fk
		t.ForeignKeyList = append(t.ForeignKeyList, fk)
		t.Constraints[kr.Name] = fk
	}
	for _, cr := range b.checks[key] {
		if _, dup := t.Constraints[cr.Name]; dup {
			return nil, fmt.Errorf("constraint %s.%s: %w", t.QualifiedName(), cr.Name, ErrDuplicateName)
		}
		ck := newCheck(t, b, cr, log)
		t.Checks[cr.Name] = ck
		t.CheckList = append(t.CheckList, ck)
		t.Constraints[cr.Name] = ck
	}
	for _, c := range t.Constraints {
		t.ConstraintList = append(t.ConstraintList, c)
	}
	sortByName(t.ConstraintList, func(c Constraint) string { return c.Name() })

	t.dependents = newRelationRefs(schema.db, b.relationDependents[key])
	t.Indexes = newIndexRefs(schema.db, b.tableIndexes[key])
	t.Triggers = newTriggerRefs(schema.db, b.relationTriggers[key])
	return t, nil
}

func (t *Table) link(db *Database) error {
	// An empty tablespace name is legal: not every engine has them.
	if t.tablespaceName != "" {
		ts, ok := db.Tablespaces[t.tablespaceName]
		if !ok {
			return fmt.Errorf("table %s: tablespace %s: %w", t.QualifiedName(), t.tablespaceName, ErrMissingRef)
		}
		t.tablespace = ts
	}
	for _, f := range t.fieldList {
		if err := f.link(db); err != nil {
			return err
		}
	}
	for _, c := range t.ConstraintList {
		if err := c.link(db); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) Fields() map[string]*Field { return t.fields }
func (t *Table) FieldList() []*Field       { return t.fieldList }
func (t *Table) TypeName() string          { return "Table" }

// Tablespace returns the tablespace the table's data is stored in.
func (t *Table) Tablespace() *Tablespace { return t.tablespace }

func (t *Table) CreateSQL() string {
	elements := make([]string, 0, len(t.fieldList)+len(t.ConstraintList))
	for _, f := range t.fieldList {
		elements = append(elements, "\t"+f.Prototype())
	}
	for _, c := range t.ConstraintList {
		elements = append(elements, "\t"+c.Prototype())
	}
	in := ""
	if t.tablespaceName != "" {
		in = " IN " + FormatIdent(t.tablespaceName)
	}
	return fmt.Sprintf("CREATE TABLE %s.%s (\n%s\n)%s;",
		FormatIdent(t.schema.name),
		FormatIdent(t.name),
		strings.Join(elements, ",\n"),
		in)
}

func (t *Table) DropSQL() string {
	return fmt.Sprintf("DROP TABLE %s.%s;", FormatIdent(t.schema.name), FormatIdent(t.name))
}
