package source

import (
	"context"
	"fmt"

	"github.com/catadoc/catadoc/internal/catalog"
)

// pgFixedSizes lists the builtin types whose storage size is fixed, so
// they render without a length. Everything else is treated as variably
// sized.
var pgFixedSizes = map[string]int{
	"bool":        1,
	"int2":        2,
	"int4":        4,
	"int8":        8,
	"float4":      4,
	"float8":      8,
	"date":        4,
	"oid":         4,
	"timestamp":   8,
	"timestamptz": 8,
	"time":        8,
	"timetz":      12,
	"uuid":        16,
}

// PostgresExtractor reads catalog rows from a PostgreSQL database.
type PostgresExtractor struct {
	client *PostgresClient
	types  *typeRegistry
}

// NewPostgresExtractor creates a new PostgreSQL catalog extractor.
func NewPostgresExtractor(client *PostgresClient) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		types:  newTypeRegistry("pg_catalog", pgFixedSizes),
	}
}

// Extract reads the complete catalog.
func (e *PostgresExtractor) Extract(ctx context.Context) (*catalog.RowSet, error) {
	rs := &catalog.RowSet{}

	if err := e.client.GetConnection().QueryRow(ctx, "SELECT current_database()").Scan(&rs.Name); err != nil {
		return nil, fmt.Errorf("failed to read database name: %w", err)
	}

	steps := []struct {
		name string
		fn   func(context.Context, *catalog.RowSet) error
	}{
		{"schemas", e.extractSchemas},
		{"tablespaces", e.extractTablespaces},
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

	// Declare every datatype the extraction touched, plus the system
	// schema that owns them.
	rs.Datatypes = append(rs.Datatypes, e.types.rows()...)
	rs.Schemas = append(rs.Schemas, catalog.SchemaRow{Name: "pg_catalog", System: true})
	return rs, nil
}

func (e *PostgresExtractor) extractSchemas(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT n.nspname,
			pg_get_userbyid(n.nspowner),
			obj_description(n.oid, 'pg_namespace')
		FROM pg_namespace n
		WHERE n.nspname NOT LIKE 'pg_%' AND n.nspname <> 'information_schema'
		ORDER BY n.nspname
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.SchemaRow
		if err := rows.Scan(&row.Name, &row.Owner, &row.Description); err != nil {
			return err
		}
		rs.Schemas = append(rs.Schemas, row)
	}
	return rows.Err()
}

func (e *PostgresExtractor) extractTablespaces(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT spcname, pg_get_userbyid(spcowner),
			obj_description(oid, 'pg_tablespace')
		FROM pg_tablespace
		ORDER BY spcname
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.TablespaceRow
		if err := rows.Scan(&row.Name, &row.Owner, &row.Description); err != nil {
			return err
		}
		row.System = row.Name == "pg_default" || row.Name == "pg_global"
		rs.Tablespaces = append(rs.Tablespaces, row)
	}
	return rows.Err()
}

func (e *PostgresExtractor) extractTables(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT n.nspname, c.relname,
			pg_get_userbyid(c.relowner),
			COALESCE(t.spcname, 'pg_default'),
			NULLIF(c.reltuples::bigint, -1),
			pg_total_relation_size(c.oid),
			obj_description(c.oid, 'pg_class')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_tablespace t ON t.oid = c.reltablespace
		WHERE c.relkind = 'r'
			AND n.nspname NOT LIKE 'pg_%' AND n.nspname <> 'information_schema'
		ORDER BY n.nspname, c.relname
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.TableRow
		var size int64
		if err := rows.Scan(&row.Schema, &row.Name, &row.Owner, &row.Tablespace,
			&row.Cardinality, &size, &row.Description); err != nil {
			return err
		}
		row.Size = &size
		rs.Tables = append(rs.Tables, row)
	}
	return rows.Err()
}

func (e *PostgresExtractor) extractViews(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT n.nspname, c.relname,
			pg_get_userbyid(c.relowner),
			pg_get_viewdef(c.oid),
			obj_description(c.oid, 'pg_class')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'v'
			AND n.nspname NOT LIKE 'pg_%' AND n.nspname <> 'information_schema'
		ORDER BY n.nspname, c.relname
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.ViewRow
		if err := rows.Scan(&row.Schema, &row.Name, &row.Owner, &row.SQL, &row.Description); err != nil {
			return err
		}
		rs.Views = append(rs.Views, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return e.extractViewDeps(ctx, rs)
}

func (e *PostgresExtractor) extractViewDeps(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT DISTINCT vn.nspname, v.relname, sn.nspname, s.relname
		FROM pg_depend d
		JOIN pg_rewrite r ON r.oid = d.objid
		JOIN pg_class v ON v.oid = r.ev_class
		JOIN pg_namespace vn ON vn.oid = v.relnamespace
		JOIN pg_class s ON s.oid = d.refobjid
		JOIN pg_namespace sn ON sn.oid = s.relnamespace
		WHERE d.classid = 'pg_rewrite'::regclass
			AND d.refclassid = 'pg_class'::regclass
			AND v.relkind = 'v' AND s.relkind IN ('r', 'v')
			AND v.oid <> s.oid
			AND vn.nspname NOT LIKE 'pg_%' AND vn.nspname <> 'information_schema'
			AND sn.nspname NOT LIKE 'pg_%' AND sn.nspname <> 'information_schema'
		ORDER BY 1, 2, 3, 4
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.ViewDepRow
		if err := rows.Scan(&row.Schema, &row.Name, &row.DepSchema, &row.DepName); err != nil {
			return err
		}
		rs.ViewDeps = append(rs.ViewDeps, row)
	}
	return rows.Err()
}

func (e *PostgresExtractor) extractFields(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT c.table_schema, c.table_name, c.column_name, c.ordinal_position,
			c.udt_name,
			COALESCE(c.character_maximum_length, c.numeric_precision),
			c.numeric_scale,
			c.is_nullable = 'YES',
			c.is_identity = 'YES',
			c.column_default,
			pgd.description
		FROM information_schema.columns c
		JOIN pg_class pc ON pc.relname = c.table_name
		JOIN pg_namespace pn ON pn.oid = pc.relnamespace AND pn.nspname = c.table_schema
		LEFT JOIN pg_description pgd
			ON pgd.objoid = pc.oid AND pgd.objsubid = c.ordinal_position
		WHERE c.table_schema NOT LIKE 'pg_%' AND c.table_schema <> 'information_schema'
			AND pc.relkind IN ('r', 'v')
		ORDER BY c.table_schema, c.table_name, c.ordinal_position
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
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
		row.TypeSchema = "pg_catalog"
		row.Identity = &identity
		row.Generated = catalog.NotGenerated
		if identity {
			row.Generated = catalog.GeneratedAlways
		}
		e.types.add(row.TypeName)
		rs.Fields = append(rs.Fields, row)
	}
	return rows.Err()
}

func (e *PostgresExtractor) extractUniqueKeys(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name,
			tc.constraint_type = 'PRIMARY KEY'
		FROM information_schema.table_constraints tc
		WHERE tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
			AND tc.table_schema NOT LIKE 'pg_%' AND tc.table_schema <> 'information_schema'
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
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
			ON tc.constraint_schema = kcu.constraint_schema
			AND tc.constraint_name = kcu.constraint_name
		WHERE tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
			AND kcu.table_schema NOT LIKE 'pg_%' AND kcu.table_schema <> 'information_schema'
		ORDER BY kcu.table_schema, kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`
	colRows, err := e.client.GetConnection().Query(ctx, colQuery)
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

func (e *PostgresExtractor) extractForeignKeys(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name,
			rc.unique_constraint_schema, ref.table_name, rc.unique_constraint_name,
			rc.delete_rule, rc.update_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = tc.constraint_schema
			AND rc.constraint_name = tc.constraint_name
		JOIN information_schema.table_constraints ref
			ON ref.constraint_schema = rc.unique_constraint_schema
			AND ref.constraint_name = rc.unique_constraint_name
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema NOT LIKE 'pg_%' AND tc.table_schema <> 'information_schema'
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
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

	// Column pairs: the referencing column joined to the referenced
	// column through its position in the unique constraint.
	colQuery := `
		SELECT kcu.table_schema, kcu.table_name, kcu.constraint_name,
			kcu.column_name, ref.column_name, kcu.ordinal_position
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
		JOIN information_schema.key_column_usage ref
			ON ref.constraint_schema = rc.unique_constraint_schema
			AND ref.constraint_name = rc.unique_constraint_name
			AND ref.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema NOT LIKE 'pg_%' AND kcu.table_schema <> 'information_schema'
		ORDER BY kcu.table_schema, kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`
	colRows, err := e.client.GetConnection().Query(ctx, colQuery)
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

func (e *PostgresExtractor) extractChecks(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name, cc.check_clause
		FROM information_schema.table_constraints tc
		JOIN information_schema.check_constraints cc
			ON cc.constraint_schema = tc.constraint_schema
			AND cc.constraint_name = tc.constraint_name
		WHERE tc.constraint_type = 'CHECK'
			AND tc.table_schema NOT LIKE 'pg_%' AND tc.table_schema <> 'information_schema'
			AND cc.check_clause NOT LIKE '%IS NOT NULL'
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
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
	if err := rows.Err(); err != nil {
		return err
	}

	colQuery := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_schema = tc.constraint_schema
			AND ccu.constraint_name = tc.constraint_name
		WHERE tc.constraint_type = 'CHECK'
			AND tc.table_schema NOT LIKE 'pg_%' AND tc.table_schema <> 'information_schema'
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name, ccu.column_name
	`
	colRows, err := e.client.GetConnection().Query(ctx, colQuery)
	if err != nil {
		return err
	}
	defer colRows.Close()

	for colRows.Next() {
		var row catalog.CheckColRow
		if err := colRows.Scan(&row.Schema, &row.Table, &row.Check, &row.Field); err != nil {
			return err
		}
		rs.CheckCols = append(rs.CheckCols, row)
	}
	return colRows.Err()
}

func (e *PostgresExtractor) extractIndexes(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT n.nspname, i.relname, n.nspname, t.relname,
			pg_get_userbyid(i.relowner),
			ix.indisunique,
			COALESCE(ts.spcname, 'pg_default'),
			pg_relation_size(i.oid),
			obj_description(i.oid, 'pg_class')
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		LEFT JOIN pg_tablespace ts ON ts.oid = i.reltablespace
		WHERE t.relkind = 'r' AND NOT ix.indisprimary
			AND n.nspname NOT LIKE 'pg_%' AND n.nspname <> 'information_schema'
		ORDER BY n.nspname, i.relname
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row catalog.IndexRow
		var size int64
		if err := rows.Scan(&row.Schema, &row.Name, &row.TableSchema, &row.TableName,
			&row.Owner, &row.Unique, &row.Tablespace, &size, &row.Description); err != nil {
			return err
		}
		row.Size = &size
		rs.Indexes = append(rs.Indexes, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	colQuery := `
		SELECT n.nspname, i.relname, a.attname, k.ord,
			CASE WHEN ix.indoption[k.ord - 1] & 1 = 1 THEN 'D' ELSE 'A' END
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE t.relkind = 'r' AND NOT ix.indisprimary
			AND n.nspname NOT LIKE 'pg_%' AND n.nspname <> 'information_schema'
		ORDER BY n.nspname, i.relname, k.ord
	`
	colRows, err := e.client.GetConnection().Query(ctx, colQuery)
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
		row.Order = catalog.IndexOrder(order)
		rs.IndexCols = append(rs.IndexCols, row)
	}
	return colRows.Err()
}

func (e *PostgresExtractor) extractRoutines(ctx context.Context, rs *catalog.RowSet) error {
	query := `
		SELECT r.routine_schema, r.specific_name, r.routine_name, r.routine_type,
			r.external_language, r.routine_definition
		FROM information_schema.routines r
		WHERE r.routine_schema NOT LIKE 'pg_%' AND r.routine_schema <> 'information_schema'
		ORDER BY r.routine_schema, r.specific_name
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, specific, name, kind, language string
		var definition *string
		if err := rows.Scan(&schema, &specific, &name, &kind, &language, &definition); err != nil {
			return err
		}
		if kind == "PROCEDURE" {
			rs.Procedures = append(rs.Procedures, catalog.ProcedureRow{
				Schema: schema, SpecificName: specific, Name: name,
				Language: language, SQL: definition,
			})
			continue
		}
		rs.Functions = append(rs.Functions, catalog.FunctionRow{
			Schema: schema, SpecificName: specific, Name: name,
			Type: catalog.FunctionScalar, Language: language, SQL: definition,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	paramQuery := `
		SELECT p.specific_schema, p.specific_name,
			COALESCE(p.parameter_name, ''), p.ordinal_position,
			COALESCE(p.parameter_mode, 'IN'), p.udt_name
		FROM information_schema.parameters p
		WHERE p.specific_schema NOT LIKE 'pg_%' AND p.specific_schema <> 'information_schema'
			AND p.udt_name IS NOT NULL
		ORDER BY p.specific_schema, p.specific_name, p.ordinal_position
	`
	paramRows, err := e.client.GetConnection().Query(ctx, paramQuery)
	if err != nil {
		return err
	}
	defer paramRows.Close()

	for paramRows.Next() {
		var row catalog.ParamRow
		var mode string
		if err := paramRows.Scan(&row.Schema, &row.SpecificName,
			&row.Name, &row.Position, &mode, &row.TypeName); err != nil {
			return err
		}
		switch mode {
		case "OUT":
			row.Direction = catalog.ParamOut
		case "INOUT":
			row.Direction = catalog.ParamInOut
		default:
			row.Direction = catalog.ParamIn
		}
		row.TypeSchema = "pg_catalog"
		e.types.add(row.TypeName)
		rs.Params = append(rs.Params, row)
	}
	return paramRows.Err()
}

func (e *PostgresExtractor) extractTriggers(ctx context.Context, rs *catalog.RowSet) error {
	// A trigger on several events yields one information_schema row per
	// event; the first row wins.
	query := `
		SELECT trigger_schema, trigger_name,
			event_object_schema, event_object_table,
			action_timing, event_manipulation, action_orientation,
			action_statement
		FROM information_schema.triggers
		WHERE trigger_schema NOT LIKE 'pg_%' AND trigger_schema <> 'information_schema'
		ORDER BY trigger_schema, trigger_name, event_manipulation
	`
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var row catalog.TriggerRow
		var timing, event, orientation string
		var statement *string
		if err := rows.Scan(&row.Schema, &row.Name,
			&row.RelationSchema, &row.RelationName,
			&timing, &event, &orientation, &statement); err != nil {
			return err
		}
		key := row.Schema + "." + row.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		row.Time = timingCode(timing)
		row.Event = eventCode(event)
		row.Granularity = orientationCode(orientation)
		row.SQL = statement
		rs.Triggers = append(rs.Triggers, row)
	}
	return rows.Err()
}
