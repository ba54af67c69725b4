package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/catadoc/catadoc/internal/catalog"
)

// SQLite has no schema or tablespace concepts; everything lives in one
// synthesized container of each kind.
const (
	sqliteSchema     = "main"
	sqliteTablespace = "main"
	sqliteTypeSchema = "sqlite"
)

var sqliteFixedSizes = map[string]int{
	"INTEGER": 8,
	"INT":     8,
	"BIGINT":  8,
	"REAL":    8,
	"DOUBLE":  8,
	"FLOAT":   8,
	"BOOLEAN": 1,
	"DATE":    8,
}

// SQLiteExtractor reads catalog rows from a SQLite database.
type SQLiteExtractor struct {
	client *SQLiteClient
	types  *typeRegistry

	// pkCols remembers each table's primary key columns for resolving
	// foreign keys that reference a primary key implicitly.
	pkCols map[string][]string
}

// NewSQLiteExtractor creates a new SQLite catalog extractor.
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
		types:  newTypeRegistry(sqliteTypeSchema, sqliteFixedSizes),
		pkCols: map[string][]string{},
	}
}

// Extract reads the complete catalog.
func (e *SQLiteExtractor) Extract(ctx context.Context) (*catalog.RowSet, error) {
	rs := &catalog.RowSet{
		Name: e.client.Name(),
		Schemas: []catalog.SchemaRow{
			{Name: sqliteSchema},
			{Name: sqliteTypeSchema, System: true},
		},
		Tablespaces: []catalog.TablespaceRow{{Name: sqliteTablespace}},
	}

	tables, err := e.objectNames(ctx, "table")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	for _, name := range tables {
		rs.Tables = append(rs.Tables, catalog.TableRow{
			Schema: sqliteSchema, Name: name, Tablespace: sqliteTablespace,
		})
		if err := e.extractColumns(ctx, rs, name); err != nil {
			return nil, fmt.Errorf("failed to extract columns of %s: %w", name, err)
		}
		if err := e.extractIndexes(ctx, rs, name); err != nil {
			return nil, fmt.Errorf("failed to extract indexes of %s: %w", name, err)
		}
	}
	// Foreign keys need every table's primary key collected first.
	for _, name := range tables {
		if err := e.extractForeignKeys(ctx, rs, name); err != nil {
			return nil, fmt.Errorf("failed to extract foreign keys of %s: %w", name, err)
		}
	}
	if err := e.extractViews(ctx, rs); err != nil {
		return nil, fmt.Errorf("failed to extract views: %w", err)
	}
	if err := e.extractTriggers(ctx, rs); err != nil {
		return nil, fmt.Errorf("failed to extract triggers: %w", err)
	}

	rs.Datatypes = append(rs.Datatypes, e.types.rows()...)
	return rs, nil
}

func (e *SQLiteExtractor) objectNames(ctx context.Context, kind string) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = ? AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// parseTypeDecl splits a column type declaration like VARCHAR(30) or
// DECIMAL(10, 2) into its base name and any size and scale.
func parseTypeDecl(decl string) (name string, size, scale *int) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return "BLOB", nil, nil
	}
	open := strings.IndexByte(decl, '(')
	if open < 0 {
		return strings.ToUpper(decl), nil, nil
	}
	name = strings.ToUpper(strings.TrimSpace(decl[:open]))
	args := strings.TrimSuffix(decl[open+1:], ")")
	for i, arg := range strings.SplitN(args, ",", 2) {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			continue
		}
		v := n
		if i == 0 {
			size = &v
		} else {
			scale = &v
		}
	}
	return name, size, scale
}

func (e *SQLiteExtractor) extractColumns(ctx context.Context, rs *catalog.RowSet, table string) error {
	query := fmt.Sprintf("PRAGMA table_info(%q)", table)
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	var pk []struct {
		name string
		rank int
	}
	for rows.Next() {
		var cid, notNull, pkRank int
		var name, typeDecl string
		var dflt *string
		if err := rows.Scan(&cid, &name, &typeDecl, &notNull, &dflt, &pkRank); err != nil {
			return err
		}
		typeName, size, scale := parseTypeDecl(typeDecl)
		e.types.add(typeName)
		rs.Fields = append(rs.Fields, catalog.FieldRow{
			Schema:     sqliteSchema,
			Relation:   table,
			Name:       name,
			Position:   cid + 1,
			TypeSchema: sqliteTypeSchema,
			TypeName:   typeName,
			Size:       size,
			Scale:      scale,
			Nullable:   notNull == 0,
			Generated:  catalog.NotGenerated,
			Default:    dflt,
		})
		if pkRank > 0 {
			pk = append(pk, struct {
				name string
				rank int
			}{name, pkRank})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(pk) == 0 {
		return nil
	}
	keyName := "pk_" + table
	rs.UniqueKeys = append(rs.UniqueKeys, catalog.UniqueKeyRow{
		Schema: sqliteSchema, Table: table, Name: keyName, Primary: true,
	})
	for _, col := range pk {
		rs.UniqueKeyCols = append(rs.UniqueKeyCols, catalog.UniqueKeyColRow{
			Schema: sqliteSchema, Table: table, Key: keyName,
			Field: col.name, Sequence: col.rank,
		})
		e.pkCols[table] = append(e.pkCols[table], col.name)
	}
	return nil
}

func (e *SQLiteExtractor) extractIndexes(ctx context.Context, rs *catalog.RowSet, table string) error {
	query := fmt.Sprintf("PRAGMA index_list(%q)", table)
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	type indexEntry struct {
		name   string
		unique bool
		origin string
	}
	var indexes []indexEntry
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return err
		}
		if origin == "pk" {
			continue
		}
		indexes = append(indexes, indexEntry{name, unique == 1, origin})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, ix := range indexes {
		cols, err := e.indexColumns(ctx, ix.name)
		if err != nil {
			return err
		}
		// Implicit indexes backing UNIQUE constraints become unique key
		// constraints; explicit indexes stay indexes.
		if ix.origin == "u" {
			rs.UniqueKeys = append(rs.UniqueKeys, catalog.UniqueKeyRow{
				Schema: sqliteSchema, Table: table, Name: ix.name,
			})
			for i, col := range cols {
				rs.UniqueKeyCols = append(rs.UniqueKeyCols, catalog.UniqueKeyColRow{
					Schema: sqliteSchema, Table: table, Key: ix.name,
					Field: col, Sequence: i + 1,
				})
			}
			continue
		}
		rs.Indexes = append(rs.Indexes, catalog.IndexRow{
			Schema: sqliteSchema, Name: ix.name,
			TableSchema: sqliteSchema, TableName: table,
			Unique: ix.unique, Tablespace: sqliteTablespace,
		})
		for i, col := range cols {
			rs.IndexCols = append(rs.IndexCols, catalog.IndexColRow{
				Schema: sqliteSchema, Index: ix.name, Field: col,
				Sequence: i + 1, Order: catalog.OrderAsc,
			})
		}
	}
	return nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, index string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%q)", index)
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name *string
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name != nil {
			cols = append(cols, *name)
		}
	}
	return cols, rows.Err()
}

func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, rs *catalog.RowSet, table string) error {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%q)", table)
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	declared := map[int]bool{}
	for rows.Next() {
		var id, seq int
		var refTable, from, onUpdate, onDelete, match string
		var to *string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return err
		}
		refPK := e.pkCols[refTable]
		if len(refPK) == 0 {
			// Reference to a table without a declared primary key
			// (rowid tables); nothing to document the link against.
			continue
		}
		name := fmt.Sprintf("fk_%s_%d", table, id)
		if !declared[id] {
			declared[id] = true
			rs.ForeignKeys = append(rs.ForeignKeys, catalog.ForeignKeyRow{
				Schema: sqliteSchema, Table: table, Name: name,
				RefSchema: sqliteSchema, RefTable: refTable, RefKey: "pk_" + refTable,
				DeleteRule: ruleCode(onDelete), UpdateRule: ruleCode(onUpdate),
			})
		}
		refField := ""
		if to != nil {
			refField = *to
		} else if seq < len(refPK) {
			refField = refPK[seq]
		}
		rs.ForeignKeyCols = append(rs.ForeignKeyCols, catalog.ForeignKeyColRow{
			Schema: sqliteSchema, Table: table, Key: name,
			Field: from, RefField: refField, Sequence: seq + 1,
		})
	}
	return rows.Err()
}

func (e *SQLiteExtractor) extractViews(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT name, sql
		FROM sqlite_master
		WHERE type = 'view' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	readOnly := true
	var views []string
	for rows.Next() {
		var row catalog.ViewRow
		if err := rows.Scan(&row.Name, &row.SQL); err != nil {
			return err
		}
		row.Schema = sqliteSchema
		row.ReadOnly = &readOnly
		rs.Views = append(rs.Views, row)
		views = append(views, row.Name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, view := range views {
		if err := e.extractColumns(ctx, rs, view); err != nil {
			return fmt.Errorf("failed to extract columns of %s: %w", view, err)
		}
	}
	return nil
}

// parseTriggerHeader reads timing and event from a CREATE TRIGGER
// statement. Only the header before the ON clause counts: trigger bodies
// routinely contain UPDATE and DELETE statements of their own.
func parseTriggerHeader(sql string) (catalog.TriggerTime, catalog.TriggerEvent) {
	header := strings.ToUpper(sql)
	if i := strings.Index(header, " ON "); i >= 0 {
		header = header[:i]
	} else if i := strings.Index(header, "BEGIN"); i >= 0 {
		header = header[:i]
	}

	timing := catalog.TriggerAfter
	switch {
	case strings.Contains(header, "INSTEAD OF"):
		timing = catalog.TriggerInsteadOf
	case strings.Contains(header, "BEFORE"):
		timing = catalog.TriggerBefore
	}

	event := catalog.TriggerInsert
	switch {
	case strings.Contains(header, "DELETE"):
		event = catalog.TriggerDelete
	case strings.Contains(header, "UPDATE"):
		event = catalog.TriggerUpdate
	}
	return timing, event
}

func (e *SQLiteExtractor) extractTriggers(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT name, tbl_name, sql
		FROM sqlite_master
		WHERE type = 'trigger' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.TriggerRow
		var sqlText *string
		if err := rows.Scan(&row.Name, &row.RelationName, &sqlText); err != nil {
			return err
		}
		row.Schema = sqliteSchema
		row.RelationSchema = sqliteSchema
		row.SQL = sqlText
		// SQLite has no trigger catalog beyond the original statement;
		// timing and event come out of the DDL text.
		row.Time = catalog.TriggerAfter
		row.Event = catalog.TriggerInsert
		row.Granularity = catalog.TriggerPerRow
		if sqlText != nil {
			row.Time, row.Event = parseTriggerHeader(*sqlText)
		}
		rs.Triggers = append(rs.Triggers, row)
	}
	return rows.Err()
}
