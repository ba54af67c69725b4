package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/catadoc/catadoc/internal/catalog"
)

// mysqlSystemSchemas are never documented.
const mysqlSystemSchemas = "'mysql', 'information_schema', 'performance_schema', 'sys'"

var mysqlFixedSizes = map[string]int{
	"tinyint":   1,
	"smallint":  2,
	"mediumint": 3,
	"int":       4,
	"bigint":    8,
	"float":     4,
	"double":    8,
	"date":      3,
	"datetime":  8,
	"timestamp": 4,
	"time":      3,
	"year":      1,
}

// mysqlTablespace is the synthetic storage container all MySQL tables
// and indexes are placed in. InnoDB tablespace assignment is an engine
// detail the documentation does not track.
const mysqlTablespace = "innodb_default"

// MySQLExtractor reads catalog rows from a MySQL server.
type MySQLExtractor struct {
	client *MySQLClient
	types  *typeRegistry
}

// NewMySQLExtractor creates a new MySQL catalog extractor.
func NewMySQLExtractor(client *MySQLClient) *MySQLExtractor {
	return &MySQLExtractor{
		client: client,
		types:  newTypeRegistry("mysql", mysqlFixedSizes),
	}
}

// Extract reads the complete catalog.
func (e *MySQLExtractor) Extract(ctx context.Context) (*catalog.RowSet, error) {
	rs := &catalog.RowSet{}

	var name *string
	if err := e.client.GetDB().QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return nil, fmt.Errorf("failed to read database name: %w", err)
	}
	if name != nil {
		rs.Name = *name
	} else {
		rs.Name = "mysql"
	}

	steps := []struct {
		name string
		fn   func(context.Context, *catalog.RowSet) error
	}{
		{"schemas", e.extractSchemas},
		{"tables", e.extractTables},
		{"views", e.extractViews},
		{"fields", e.extractFields},
		{"unique keys", e.extractUniqueKeys},
		{"foreign keys", e.extractForeignKeys},
		{"checks", e.extractChecks},
		{"indexes", e.extractIndexes},
		{"routines", e.extractRoutines},
		{"triggers", e.extractTriggers},
	}
	for _, step := range steps {
		if err := step.fn(ctx, rs); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", step.name, err)
		}
	}

	rs.Datatypes = append(rs.Datatypes, e.types.rows()...)
	rs.Schemas = append(rs.Schemas, catalog.SchemaRow{Name: "mysql", System: true})
	rs.Tablespaces = append(rs.Tablespaces, catalog.TablespaceRow{Name: mysqlTablespace})
	return rs, nil
}

func (e *MySQLExtractor) extractSchemas(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY schema_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.SchemaRow
		if err := rows.Scan(&row.Name); err != nil {
			return err
		}
		rs.Schemas = append(rs.Schemas, row)
	}
	return rows.Err()
}

func (e *MySQLExtractor) extractTables(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT table_schema, table_name, table_rows,
			data_length + index_length, create_time,
			NULLIF(table_comment, '')
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
			AND table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY table_schema, table_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.TableRow
		if err := rows.Scan(&row.Schema, &row.Name, &row.Cardinality,
			&row.Size, &row.Created, &row.Description); err != nil {
			return err
		}
		row.Tablespace = mysqlTablespace
		rs.Tables = append(rs.Tables, row)
	}
	return rows.Err()
}

func (e *MySQLExtractor) extractViews(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT table_schema, table_name, view_definition,
			is_updatable = 'NO'
		FROM information_schema.views
		WHERE table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY table_schema, table_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.ViewRow
		var readOnly bool
		if err := rows.Scan(&row.Schema, &row.Name, &row.SQL, &readOnly); err != nil {
			return err
		}
		row.ReadOnly = &readOnly
		rs.Views = append(rs.Views, row)
	}
	return rows.Err()
}

func (e *MySQLExtractor) extractFields(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT table_schema, table_name, column_name, ordinal_position,
			data_type,
			COALESCE(character_maximum_length, numeric_precision),
			numeric_scale,
			is_nullable = 'YES',
			extra LIKE '%auto_increment%',
			column_default,
			NULLIF(column_comment, '')
		FROM information_schema.columns
		WHERE table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY table_schema, table_name, ordinal_position
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.FieldRow
		var identity bool
		if err := rows.Scan(&row.Schema, &row.Relation, &row.Name, &row.Position,
			&row.TypeName, &row.Size, &row.Scale,
			&row.Nullable, &identity, &row.Default, &row.Description); err != nil {
			return err
		}
		row.TypeSchema = "mysql"
		row.Identity = &identity
		row.Generated = catalog.NotGenerated
		if identity {
			row.Generated = catalog.GeneratedByDefault
		}
		e.types.add(row.TypeName)
		rs.Fields = append(rs.Fields, row)
	}
	return rows.Err()
}

func (e *MySQLExtractor) extractUniqueKeys(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT table_schema, table_name, constraint_name,
			constraint_type = 'PRIMARY KEY'
		FROM information_schema.table_constraints
		WHERE constraint_type IN ('PRIMARY KEY', 'UNIQUE')
			AND table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY table_schema, table_name, constraint_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.UniqueKeyRow
		if err := rows.Scan(&row.Schema, &row.Table, &row.Name, &row.Primary); err != nil {
			return err
		}
		rs.UniqueKeys = append(rs.UniqueKeys, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	colQuery := `
		SELECT kcu.table_schema, kcu.table_name, kcu.constraint_name,
			kcu.column_name, kcu.ordinal_position
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
			AND tc.constraint_name = kcu.constraint_name
		WHERE tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
			AND kcu.table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY kcu.table_schema, kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`
	colRows, err := e.client.GetDB().QueryContext(ctx, colQuery)
	if err != nil {
		return err
	}
	defer colRows.Close()

	for colRows.Next() {
		var row catalog.UniqueKeyColRow
		if err := colRows.Scan(&row.Schema, &row.Table, &row.Key, &row.Field, &row.Sequence); err != nil {
			return err
		}
		rs.UniqueKeyCols = append(rs.UniqueKeyCols, row)
	}
	return colRows.Err()
}

func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT rc.constraint_schema, rc.table_name, rc.constraint_name,
			rc.unique_constraint_schema, rc.referenced_table_name,
			rc.unique_constraint_name, rc.delete_rule, rc.update_rule
		FROM information_schema.referential_constraints rc
		WHERE rc.constraint_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY rc.constraint_schema, rc.table_name, rc.constraint_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.ForeignKeyRow
		var deleteRule, updateRule string
		if err := rows.Scan(&row.Schema, &row.Table, &row.Name,
			&row.RefSchema, &row.RefTable, &row.RefKey,
			&deleteRule, &updateRule); err != nil {
			return err
		}
		row.DeleteRule = ruleCode(deleteRule)
		row.UpdateRule = ruleCode(updateRule)
		rs.ForeignKeys = append(rs.ForeignKeys, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	colQuery := `
		SELECT table_schema, table_name, constraint_name,
			column_name, referenced_column_name, ordinal_position
		FROM information_schema.key_column_usage
		WHERE referenced_table_name IS NOT NULL
			AND table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY table_schema, table_name, constraint_name, ordinal_position
	`
	colRows, err := e.client.GetDB().QueryContext(ctx, colQuery)
	if err != nil {
		return err
	}
	defer colRows.Close()

	for colRows.Next() {
		var row catalog.ForeignKeyColRow
		if err := colRows.Scan(&row.Schema, &row.Table, &row.Key,
			&row.Field, &row.RefField, &row.Sequence); err != nil {
			return err
		}
		rs.ForeignKeyCols = append(rs.ForeignKeyCols, row)
	}
	return colRows.Err()
}

func (e *MySQLExtractor) extractChecks(ctx context.Context, rs *catalog.RowSet) error {
	// check_constraints appeared in MySQL 8.0.16; older servers simply
	// report no checks.
	var exists int
	err := e.client.GetDB().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'information_schema' AND table_name = 'CHECK_CONSTRAINTS'
	`).Scan(&exists)
	if err != nil || exists == 0 {
		return err
	}

	query := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name, cc.check_clause
		FROM information_schema.table_constraints tc
		JOIN information_schema.check_constraints cc
			ON cc.constraint_schema = tc.constraint_schema
			AND cc.constraint_name = tc.constraint_name
		WHERE tc.constraint_type = 'CHECK'
			AND tc.table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.CheckRow
		if err := rows.Scan(&row.Schema, &row.Table, &row.Name, &row.Expression); err != nil {
			return err
		}
		rs.Checks = append(rs.Checks, row)
	}
	return rows.Err()
}

func (e *MySQLExtractor) extractIndexes(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT table_schema, index_name, table_schema, table_name,
			MIN(non_unique) = 0
		FROM information_schema.statistics
		WHERE index_name <> 'PRIMARY'
			AND table_schema NOT IN (` + mysqlSystemSchemas + `)
		GROUP BY table_schema, table_name, index_name
		ORDER BY table_schema, index_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.IndexRow
		if err := rows.Scan(&row.Schema, &row.Name, &row.TableSchema, &row.TableName,
			&row.Unique); err != nil {
			return err
		}
		row.Tablespace = mysqlTablespace
		rs.Indexes = append(rs.Indexes, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	colQuery := `
		SELECT table_schema, index_name, column_name, seq_in_index,
			COALESCE(collation, 'A')
		FROM information_schema.statistics
		WHERE index_name <> 'PRIMARY'
			AND column_name IS NOT NULL
			AND table_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY table_schema, index_name, seq_in_index
	`
	colRows, err := e.client.GetDB().QueryContext(ctx, colQuery)
	if err != nil {
		return err
	}
	defer colRows.Close()

	for colRows.Next() {
		var row catalog.IndexColRow
		var order string
		if err := colRows.Scan(&row.Schema, &row.Index, &row.Field, &row.Sequence, &order); err != nil {
			return err
		}
		row.Order = catalog.OrderAsc
		if strings.EqualFold(order, "D") {
			row.Order = catalog.OrderDesc
		}
		rs.IndexCols = append(rs.IndexCols, row)
	}
	return colRows.Err()
}

func (e *MySQLExtractor) extractRoutines(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT routine_schema, specific_name, routine_name, routine_type,
			is_deterministic = 'YES', external_language, routine_definition,
			created, NULLIF(routine_comment, '')
		FROM information_schema.routines
		WHERE routine_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY routine_schema, specific_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fr catalog.FunctionRow
		var kind string
		var deterministic bool
		var language *string
		if err := rows.Scan(&fr.Schema, &fr.SpecificName, &fr.Name, &kind,
			&deterministic, &language, &fr.SQL, &fr.Created, &fr.Description); err != nil {
			return err
		}
		fr.Deterministic = &deterministic
		if language != nil {
			fr.Language = *language
		} else {
			fr.Language = "SQL"
		}
		if kind == "PROCEDURE" {
			rs.Procedures = append(rs.Procedures, catalog.ProcedureRow{
				Schema: fr.Schema, SpecificName: fr.SpecificName, Name: fr.Name,
				Deterministic: fr.Deterministic, Language: fr.Language,
				SQL: fr.SQL, Created: fr.Created, Description: fr.Description,
			})
			continue
		}
		fr.Type = catalog.FunctionScalar
		rs.Functions = append(rs.Functions, fr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Position 0 with no mode is the function return value.
	paramQuery := `
		SELECT specific_schema, specific_name,
			COALESCE(parameter_name, ''), ordinal_position,
			parameter_mode, data_type
		FROM information_schema.parameters
		WHERE specific_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY specific_schema, specific_name, ordinal_position
	`
	paramRows, err := e.client.GetDB().QueryContext(ctx, paramQuery)
	if err != nil {
		return err
	}
	defer paramRows.Close()

	for paramRows.Next() {
		var row catalog.ParamRow
		var mode *string
		if err := paramRows.Scan(&row.Schema, &row.SpecificName,
			&row.Name, &row.Position, &mode, &row.TypeName); err != nil {
			return err
		}
		switch {
		case mode == nil:
			row.Direction = catalog.ParamResult
		case *mode == "OUT":
			row.Direction = catalog.ParamOut
		case *mode == "INOUT":
			row.Direction = catalog.ParamInOut
		default:
			row.Direction = catalog.ParamIn
		}
		row.TypeSchema = "mysql"
		e.types.add(row.TypeName)
		rs.Params = append(rs.Params, row)
	}
	return paramRows.Err()
}

func (e *MySQLExtractor) extractTriggers(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT trigger_schema, trigger_name,
			event_object_schema, event_object_table,
			action_timing, event_manipulation, action_orientation,
			action_statement, created
		FROM information_schema.triggers
		WHERE trigger_schema NOT IN (` + mysqlSystemSchemas + `)
		ORDER BY trigger_schema, trigger_name
	`
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.TriggerRow
		var timing, event, orientation string
		var statement *string
		if err := rows.Scan(&row.Schema, &row.Name,
			&row.RelationSchema, &row.RelationName,
			&timing, &event, &orientation, &statement, &row.Created); err != nil {
			return err
		}
		row.Time = timingCode(timing)
		row.Event = eventCode(event)
		row.Granularity = orientationCode(orientation)
		row.SQL = statement
		rs.Triggers = append(rs.Triggers, row)
	}
	return rows.Err()
}
