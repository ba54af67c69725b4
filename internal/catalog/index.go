package catalog

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// IndexColumn is one column of an index: the indexed field and its sort
// order. Include-only columns carry OrderInclude.
type IndexColumn struct {
	Field *Field
	Order IndexOrder
}

// Index covers a table. Indexes live in a schema namespace of their own,
// separate from relations; the covered table and the containing
// tablespace are resolved by the link pass.
type Index struct {
	objectAttrs
	schema *Schema

	Unique      bool
	LastStats   *time.Time
	Cardinality *int64
	SizeBytes   *int64

	tableSchema    string
	tableName      string
	table          *Table
	tablespaceName string
	tablespace     *Tablespace

	colRows []IndexColRow
	Columns []IndexColumn
}

func newIndex(s *Schema, b *buckets, row IndexRow, log *zap.Logger) *Index {
	ix := &Index{
		objectAttrs:    newAttrs(row.Name, row.Owner, row.System, row.Created, row.Description),
		schema:         s,
		Unique:         row.Unique,
		LastStats:      row.LastStats,
		Cardinality:    row.Cardinality,
		SizeBytes:      row.Size,
		tableSchema:    row.TableSchema,
		tableName:      row.TableName,
		tablespaceName: row.Tablespace,
		colRows:        b.indexCols[relKey{row.Schema, row.Name}],
	}
	log.Debug("building index", zap.String("index", ix.QualifiedName()))
	return ix
}

func (ix *Index) link(db *Database) error {
	s, ok := db.Schemas[ix.tableSchema]
	if !ok {
		return fmt.Errorf("index %s: table schema %s: %w", ix.QualifiedName(), ix.tableSchema, ErrMissingRef)
	}
	t, ok := s.Tables[ix.tableName]
	if !ok {
		return fmt.Errorf("index %s: table %s.%s: %w", ix.QualifiedName(), ix.tableSchema, ix.tableName, ErrMissingRef)
	}
	ix.table = t
	// An empty tablespace name is legal: not every engine has them.
	if ix.tablespaceName != "" {
		ts, ok := db.Tablespaces[ix.tablespaceName]
		if !ok {
			return fmt.Errorf("index %s: tablespace %s: %w", ix.QualifiedName(), ix.tablespaceName, ErrMissingRef)
		}
		ix.tablespace = ts
	}
	for _, cr := range ix.colRows {
		f, ok := t.fields[cr.Field]
		if !ok {
			return fmt.Errorf("index %s: field %s.%s: %w", ix.QualifiedName(), t.QualifiedName(), cr.Field, ErrMissingRef)
		}
		ix.Columns = append(ix.Columns, IndexColumn{Field: f, Order: cr.Order})
	}
	return nil
}

func (ix *Index) Schema() *Schema         { return ix.schema }
func (ix *Index) Database() *Database     { return ix.schema.db }
func (ix *Index) Table() *Table           { return ix.table }
func (ix *Index) Tablespace() *Tablespace { return ix.tablespace }

func (ix *Index) Identifier() string    { return indexIdent(ix.schema.name, ix.name) }
func (ix *Index) QualifiedName() string { return ix.schema.name + "." + ix.name }
func (ix *Index) TypeName() string      { return "Index" }

func (ix *Index) CreateSQL() string {
	var keyed, included []string
	for _, c := range ix.Columns {
		switch c.Order {
		case OrderInclude:
			included = append(included, FormatIdent(c.Field.Name()))
		case OrderDesc:
			keyed = append(keyed, FormatIdent(c.Field.Name())+" DESC")
		default:
			keyed = append(keyed, FormatIdent(c.Field.Name()))
		}
	}
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if ix.Unique {
		sb.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&sb, "INDEX %s.%s ON %s.%s (%s)",
		FormatIdent(ix.schema.name), FormatIdent(ix.name),
		FormatIdent(ix.tableSchema), FormatIdent(ix.tableName),
		strings.Join(keyed, ", "))
	if len(included) > 0 {
		fmt.Fprintf(&sb, " INCLUDE (%s)", strings.Join(included, ", "))
	}
	sb.WriteString(";")
	return sb.String()
}

func (ix *Index) DropSQL() string {
	return fmt.Sprintf("DROP INDEX %s.%s;", FormatIdent(ix.schema.name), FormatIdent(ix.name))
}
