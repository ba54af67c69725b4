package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Constraint is a table-owned rule: a unique (or primary) key, a foreign
// key, or a check.
type Constraint interface {
	Object
	SQLGenerating

	Table() *Table
	// Prototype is the constraint clause as it appears inside a CREATE
	// TABLE or ALTER TABLE ADD statement.
	Prototype() string

	link(db *Database) error
}

// constraintAttrs carries what every constraint shares. Anonymous marks
// system-generated names (SQL + 15 digits); anonymous constraints are
// emitted without a CONSTRAINT clause.
type constraintAttrs struct {
	objectAttrs
	table     *Table
	anonymous bool
}

func (c *constraintAttrs) Table() *Table       { return c.table }
func (c *constraintAttrs) Schema() *Schema     { return c.table.schema }
func (c *constraintAttrs) Database() *Database { return c.table.schema.db }

func (c *constraintAttrs) Identifier() string {
	return constraintIdent(c.table.schema.name, c.table.name, c.name)
}

func (c *constraintAttrs) QualifiedName() string {
	return c.table.QualifiedName() + "." + c.name
}

func (c *constraintAttrs) createSQL(prototype string) string {
	return fmt.Sprintf("ALTER TABLE %s.%s ADD %s;",
		FormatIdent(c.table.schema.name), FormatIdent(c.table.name), prototype)
}

func (c *constraintAttrs) DropSQL() string {
	return fmt.Sprintf("ALTER TABLE %s.%s DROP CONSTRAINT %s;",
		FormatIdent(c.table.schema.name), FormatIdent(c.table.name), FormatIdent(c.name))
}

// UniqueKey is a unique constraint over an ordered field list. Primary
// marks the table's primary key, of which there is at most one.
type UniqueKey struct {
	constraintAttrs

	Primary bool

	fieldNames []string
	Fields     []*Field
}

func newUniqueKey(table *Table, b *buckets, row UniqueKeyRow, log *zap.Logger) *UniqueKey {
	uk := &UniqueKey{
		constraintAttrs: constraintAttrs{
			objectAttrs: newAttrs(row.Name, row.Owner, row.System || table.System(), row.Created, row.Description),
			table:       table,
			anonymous:   anonymousName.MatchString(row.Name),
		},
		Primary: row.Primary,
	}
	for _, cr := range b.uniqueKeyCols[constKey{table.schema.name, table.name, row.Name}] {
		uk.fieldNames = append(uk.fieldNames, cr.Field)
	}
	log.Debug("building unique key", zap.String("key", uk.QualifiedName()))
	return uk
}

func (uk *UniqueKey) link(db *Database) error {
	for _, name := range uk.fieldNames {
		f, ok := uk.table.fields[name]
		if !ok {
			return fmt.Errorf("key %s: field %s: %w", uk.QualifiedName(), name, ErrMissingRef)
		}
		uk.Fields = append(uk.Fields, f)
	}
	return nil
}

func (uk *UniqueKey) TypeName() string {
	if uk.Primary {
		return "Primary Key"
	}
	return "Unique Key"
}

func (uk *UniqueKey) Prototype() string {
	names := make([]string, len(uk.fieldNames))
	for i, n := range uk.fieldNames {
		names[i] = FormatIdent(n)
	}
	keyword := "UNIQUE"
	if uk.Primary {
		keyword = "PRIMARY KEY"
	}
	sql := fmt.Sprintf("%s (%s)", keyword, strings.Join(names, ", "))
	if !uk.anonymous {
		sql = fmt.Sprintf("CONSTRAINT %s %s", FormatIdent(uk.name), sql)
	}
	return sql
}

func (uk *UniqueKey) CreateSQL() string { return uk.createSQL(uk.Prototype()) }

// FieldPair is one (local, referenced) field pairing of a foreign key.
type FieldPair struct {
	Field    *Field
	RefField *Field
}

// ForeignKey references a unique key in another (possibly the same)
// table. The referenced table and key arrive as names and are resolved
// by the link pass.
type ForeignKey struct {
	constraintAttrs

	DeleteRule FKRule
	UpdateRule FKRule

	refSchema  string
	refTable   string
	refKeyName string
	pairNames  [][2]string

	RefTable *Table
	RefKey   *UniqueKey
	Fields   []FieldPair
}

func newForeignKey(table *Table, b *buckets, row ForeignKeyRow, log *zap.Logger) *ForeignKey {
	fk := &ForeignKey{
		constraintAttrs: constraintAttrs{
			objectAttrs: newAttrs(row.Name, row.Owner, row.System || table.System(), row.Created, row.Description),
			table:       table,
			anonymous:   anonymousName.MatchString(row.Name),
		},
		DeleteRule: row.DeleteRule,
		UpdateRule: row.UpdateRule,
		refSchema:  row.RefSchema,
		refTable:   row.RefTable,
		refKeyName: row.RefKey,
	}
	for _, cr := range b.foreignKeyCols[constKey{table.schema.name, table.name, row.Name}] {
		fk.pairNames = append(fk.pairNames, [2]string{cr.Field, cr.RefField})
	}
	log.Debug("building foreign key", zap.String("key", fk.QualifiedName()))
	return fk
}

func (fk *ForeignKey) link(db *Database) error {
	s, ok := db.Schemas[fk.refSchema]
	if !ok {
		return fmt.Errorf("foreign key %s: referenced schema %s: %w", fk.QualifiedName(), fk.refSchema, ErrMissingRef)
	}
	rt, ok := s.Tables[fk.refTable]
	if !ok {
		return fmt.Errorf("foreign key %s: referenced table %s.%s: %w", fk.QualifiedName(), fk.refSchema, fk.refTable, ErrMissingRef)
	}
	rk, ok := rt.UniqueKeys[fk.refKeyName]
	if !ok {
		return fmt.Errorf("foreign key %s: referenced key %s of %s: %w", fk.QualifiedName(), fk.refKeyName, rt.QualifiedName(), ErrMissingRef)
	}
	fk.RefTable = rt
	fk.RefKey = rk
	for _, pair := range fk.pairNames {
		local, ok := fk.table.fields[pair[0]]
		if !ok {
			return fmt.Errorf("foreign key %s: field %s: %w", fk.QualifiedName(), pair[0], ErrMissingRef)
		}
		ref, ok := rt.fields[pair[1]]
		if !ok {
			return fmt.Errorf("foreign key %s: referenced field %s.%s: %w", fk.QualifiedName(), rt.QualifiedName(), pair[1], ErrMissingRef)
		}
		fk.Fields = append(fk.Fields, FieldPair{Field: local, RefField: ref})
	}
	return nil
}

func (fk *ForeignKey) TypeName() string { return "Foreign Key" }

func (fk *ForeignKey) Prototype() string {
	local := make([]string, len(fk.pairNames))
	ref := make([]string, len(fk.pairNames))
	for i, pair := range fk.pairNames {
		local[i] = FormatIdent(pair[0])
		ref[i] = FormatIdent(pair[1])
	}
	sql := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s.%s(%s)",
		strings.Join(local, ", "),
		FormatIdent(fk.refSchema), FormatIdent(fk.refTable),
		strings.Join(ref, ", "))
	sql += " ON DELETE " + fk.DeleteRule.Keyword()
	sql += " ON UPDATE " + fk.UpdateRule.Keyword()
	if !fk.anonymous {
		sql = fmt.Sprintf("CONSTRAINT %s %s", FormatIdent(fk.name), sql)
	}
	return sql
}

func (fk *ForeignKey) CreateSQL() string { return fk.createSQL(fk.Prototype()) }

// Check is a check constraint: an SQL expression over the fields it
// names.
type Check struct {
	constraintAttrs

	Expression string

	fieldNames []string
	Fields     []*Field
}

func newCheck(table *Table, b *buckets, row CheckRow, log *zap.Logger) *Check {
	ck := &Check{
		constraintAttrs: constraintAttrs{
			objectAttrs: newAttrs(row.Name, row.Owner, row.System || table.System(), row.Created, row.Description),
			table:       table,
			anonymous:   anonymousName.MatchString(row.Name),
		},
	}
	if row.Expression != nil {
		ck.Expression = *row.Expression
	}
	for _, cr := range b.checkCols[constKey{table.schema.name, table.name, row.Name}] {
		ck.fieldNames = append(ck.fieldNames, cr.Field)
	}
	log.Debug("building check", zap.String("check", ck.QualifiedName()))
	return ck
}

func (ck *Check) link(db *Database) error {
	for _, name := range ck.fieldNames {
		f, ok := ck.table.fields[name]
		if !ok {
			return fmt.Errorf("check %s: field %s: %w", ck.QualifiedName(), name, ErrMissingRef)
		}
		ck.Fields = append(ck.Fields, f)
	}
	return nil
}

func (ck *Check) TypeName() string { return "Check Constraint" }

func (ck *Check) Prototype() string {
	sql := fmt.Sprintf("CHECK (%s)", ck.Expression)
	if !ck.anonymous {
		sql = fmt.Sprintf("CONSTRAINT %s %s", FormatIdent(ck.name), sql)
	}
	return sql
}

func (ck *Check) CreateSQL() string { return ck.createSQL(ck.Prototype()) }
