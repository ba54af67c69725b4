package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func boolp(b bool) *bool    { return &b }

// sampleRows builds a small but fully cross-referenced catalog: two user
// schemas, system datatypes, a table pair joined by a foreign key, a
// view, an alias chain, an index, a trigger and a routine pair. Child
// rows are deliberately listed out of declaration order.
func sampleRows() *RowSet {
	return &RowSet{
		Name: "SAMPLE",
		Schemas: []SchemaRow{
			{Name: "APP", Owner: strp("ADMIN")},
			{Name: "APP_TMP", Owner: strp("ADMIN")},
			{Name: "SYSIBM", System: true},
		},
		Tablespaces: []TablespaceRow{
			{Name: "USERSPACE1", Type: strp("Regular")},
			{Name: "TEMPSPACE1", Type: strp("Temporary")},
		},
		Datatypes: []DatatypeRow{
			{Schema: "SYSIBM", Name: "INTEGER", System: true, Size: intp(4)},
			{Schema: "SYSIBM", Name: "VARCHAR", System: true},
			{Schema: "SYSIBM", Name: "DECIMAL", System: true},
			{Schema: "SYSIBM", Name: "TIMESTAMP", System: true, Size: intp(10)},
			{Schema: "APP", Name: "AUDIT_ID", SourceSchema: strp("SYSIBM"), SourceName: strp("INTEGER"), Size: intp(4)},
		},
		Tables: []TableRow{
			{Schema: "APP", Name: "ORDERS", Tablespace: "USERSPACE1"},
			{Schema: "APP", Name: "CUSTOMERS", Tablespace: "USERSPACE1"},
			{Schema: "APP_TMP", Name: "SCRATCH", Tablespace: "TEMPSPACE1"},
		},
		Views: []ViewRow{
			{Schema: "APP", Name: "BIG_CUSTOMERS", ReadOnly: boolp(true),
				SQL: strp("CREATE VIEW APP.BIG_CUSTOMERS AS SELECT ID, NAME FROM APP.CUSTOMERS WHERE BALANCE > 1000")},
		},
		Aliases: []AliasRow{
			{Schema: "APP", Name: "CUST", BaseSchema: "APP", BaseName: "CUSTOMERS"},
			{Schema: "APP", Name: "CUST2", BaseSchema: "APP", BaseName: "CUST"},
		},
		ViewDeps: []ViewDepRow{
			{Schema: "APP", Name: "BIG_CUSTOMERS", DepSchema: "APP", DepName: "CUSTOMERS"},
		},
		Fields: []FieldRow{
			{Schema: "APP", Relation: "CUSTOMERS", Name: "BALANCE", Position: 3,
				TypeSchema: "SYSIBM", TypeName: "DECIMAL", Size: intp(10), Scale: intp(2),
				Nullable: true, Generated: NotGenerated, Default: strp("0")},
			{Schema: "APP", Relation: "CUSTOMERS", Name: "ID", Position: 1,
				TypeSchema: "SYSIBM", TypeName: "INTEGER", Generated: NotGenerated},
			{Schema: "APP", Relation: "CUSTOMERS", Name: "NAME", Position: 2,
				TypeSchema: "SYSIBM", TypeName: "VARCHAR", Size: intp(64), Generated: NotGenerated},
			{Schema: "APP", Relation: "ORDERS", Name: "ID", Position: 1,
				TypeSchema: "SYSIBM", TypeName: "INTEGER", Generated: NotGenerated},
			{Schema: "APP", Relation: "ORDERS", Name: "CUSTOMER_ID", Position: 2,
				TypeSchema: "SYSIBM", TypeName: "INTEGER", Generated: NotGenerated},
			{Schema: "APP", Relation: "ORDERS", Name: "PLACED", Position: 3,
				TypeSchema: "SYSIBM", TypeName: "TIMESTAMP", Nullable: true, Generated: NotGenerated},
			{Schema: "APP", Relation: "BIG_CUSTOMERS", Name: "ID", Position: 1,
				TypeSchema: "SYSIBM", TypeName: "INTEGER", Generated: NotGenerated},
			{Schema: "APP", Relation: "BIG_CUSTOMERS", Name: "NAME", Position: 2,
				TypeSchema: "SYSIBM", TypeName: "VARCHAR", Size: intp(64), Generated: NotGenerated},
			{Schema: "APP_TMP", Relation: "SCRATCH", Name: "X", Position: 1,
				TypeSchema: "SYSIBM", TypeName: "INTEGER", Nullable: true, Generated: NotGenerated},
		},
		Indexes: []IndexRow{
			{Schema: "APP", Name: "IX_ORD_CUST", TableSchema: "APP", TableName: "ORDERS",
				Unique: false, Tablespace: "USERSPACE1"},
		},
		IndexCols: []IndexColRow{
			{Schema: "APP", Index: "IX_ORD_CUST", Field: "CUSTOMER_ID", Sequence: 1, Order: OrderAsc},
			{Schema: "APP", Index: "IX_ORD_CUST", Field: "PLACED", Sequence: 2, Order: OrderDesc},
		},
		UniqueKeys: []UniqueKeyRow{
			{Schema: "APP", Table: "CUSTOMERS", Name: "PK_CUSTOMERS", Primary: true},
			{Schema: "APP", Table: "ORDERS", Name: "PK_ORDERS", Primary: true},
		},
		UniqueKeyCols: []UniqueKeyColRow{
			{Schema: "APP", Table: "CUSTOMERS", Key: "PK_CUSTOMERS", Field: "ID", Sequence: 1},
			{Schema: "APP", Table: "ORDERS", Key: "PK_ORDERS", Field: "ID", Sequence: 1},
		},
		ForeignKeys: []ForeignKeyRow{
			{Schema: "APP", Table: "ORDERS", Name: "FK_ORD_CUST",
				RefSchema: "APP", RefTable: "CUSTOMERS", RefKey: "PK_CUSTOMERS",
				DeleteRule: FKCascade, UpdateRule: FKNoAction},
		},
		ForeignKeyCols: []ForeignKeyColRow{
			{Schema: "APP", Table: "ORDERS", Key: "FK_ORD_CUST", Field: "CUSTOMER_ID", RefField: "ID", Sequence: 1},
		},
		Checks: []CheckRow{
			{Schema: "APP", Table: "CUSTOMERS", Name: "SQL070117154255810",
				Expression: strp("BALANCE >= 0")},
		},
		CheckCols: []CheckColRow{
			{Schema: "APP", Table: "CUSTOMERS", Check: "SQL070117154255810", Field: "BALANCE"},
		},
		Functions: []FunctionRow{
			{Schema: "APP", SpecificName: "TOTAL_1", Name: "TOTAL", Type: FunctionScalar, Language: "SQL",
				SQL: strp("CREATE FUNCTION APP.TOTAL(CUST_ID INTEGER) RETURNS DECIMAL(10,2) RETURN SELECT SUM(BALANCE) FROM APP.CUSTOMERS WHERE ID = CUST_ID")},
		},
		Procedures: []ProcedureRow{
			{Schema: "APP", SpecificName: "CLEANUP_1", Name: "CLEANUP", Language: "SQL"},
		},
		Params: []ParamRow{
			{Schema: "APP", SpecificName: "TOTAL_1", Name: "", Position: 0, Direction: ParamResult,
				TypeSchema: "SYSIBM", TypeName: "DECIMAL", Size: intp(10), Scale: intp(2)},
			{Schema: "APP", SpecificName: "TOTAL_1", Name: "CUST_ID", Position: 1, Direction: ParamIn,
				TypeSchema: "SYSIBM", TypeName: "INTEGER"},
			{Schema: "APP", SpecificName: "CLEANUP_1", Name: "DAYS", Position: 1, Direction: ParamIn,
				TypeSchema: "SYSIBM", TypeName: "INTEGER"},
		},
		Triggers: []TriggerRow{
			{Schema: "APP", Name: "TR_ORD_AUDIT", RelationSchema: "APP", RelationName: "ORDERS",
				Time: TriggerAfter, Event: TriggerInsert, Granularity: TriggerPerRow,
				SQL: strp("CREATE TRIGGER APP.TR_ORD_AUDIT AFTER INSERT ON APP.ORDERS FOR EACH ROW BEGIN ATOMIC END")},
		},
		TriggerDeps: []TriggerDepRow{
			{Schema: "APP", Name: "TR_ORD_AUDIT", DepSchema: "APP", DepName: "CUSTOMERS"},
		},
	}
}

func buildSample(t *testing.T) *Database {
	t.Helper()
	db, err := Build(sampleRows(), Config{})
	require.NoError(t, err)
	return db
}

func TestBuildGraph(t *testing.T) {
	db := buildSample(t)

	assert.Equal(t, "SAMPLE", db.Name())
	require.Len(t, db.SchemaList, 3)
	assert.Equal(t, "APP", db.SchemaList[0].Name())
	assert.Equal(t, "APP_TMP", db.SchemaList[1].Name())
	assert.Equal(t, "SYSIBM", db.SchemaList[2].Name())

	app := db.Schemas["APP"]
	require.NotNil(t, app)
	assert.Equal(t, "ADMIN", app.Owner())
	assert.Same(t, db.SchemaList[1], app.Next())
	assert.Nil(t, db.SchemaList[0].Prior())

	customers := app.Tables["CUSTOMERS"]
	require.NotNil(t, customers)

	// Fields come out in declaration order regardless of input order.
	var names []string
	for _, f := range customers.FieldList() {
		names = append(names, f.Name())
	}
	if diff := cmp.Diff([]string{"ID", "NAME", "BALANCE"}, names); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
	id := customers.Fields()["ID"]
	require.NotNil(t, id)
	assert.Equal(t, 1, id.Position)
	assert.Same(t, customers.Fields()["NAME"], id.Next())
	assert.Nil(t, id.Prior())
	assert.Nil(t, customers.Fields()["BALANCE"].Next())

	// Datatype resolution and derived formatting.
	balance := customers.Fields()["BALANCE"]
	assert.Equal(t, "DECIMAL(10,2)", balance.DatatypeStr())
	assert.Equal(t, "VARCHAR(64)", customers.Fields()["NAME"].DatatypeStr())
	assert.Equal(t, "INTEGER", id.DatatypeStr())
	audit := app.Datatypes["AUDIT_ID"]
	require.NotNil(t, audit)
	assert.Same(t, db.Schemas["SYSIBM"].Datatypes["INTEGER"], audit.Source())

	// Primary key membership.
	require.NotNil(t, customers.PrimaryKey)
	assert.True(t, customers.PrimaryKey.Primary)
	require.Len(t, customers.PrimaryKey.Fields, 1)
	assert.Same(t, id, customers.PrimaryKey.Fields[0])
	assert.Same(t, customers.PrimaryKey, id.Key())
	assert.Equal(t, 0, id.KeyIndex())
	assert.Nil(t, balance.Key())

	// Foreign key resolves to the canonical referenced table and key.
	orders := app.Tables["ORDERS"]
	require.NotNil(t, orders)
	fk := orders.ForeignKeys["FK_ORD_CUST"]
	require.NotNil(t, fk)
	assert.Same(t, customers, fk.RefTable)
	assert.Same(t, customers.PrimaryKey, fk.RefKey)
	require.Len(t, fk.Fields, 1)
	assert.Same(t, orders.Fields()["CUSTOMER_ID"], fk.Fields[0].Field)
	assert.Same(t, id, fk.Fields[0].RefField)

	// The alias chain ends at the real table and borrows its fields.
	cust2 := app.Aliases["CUST2"]
	require.NotNil(t, cust2)
	assert.Same(t, app.Aliases["CUST"], cust2.Base())
	assert.Same(t, customers, cust2.FinalBase())
	assert.Same(t, id, cust2.Fields()["ID"])

	// View dependencies run both directions.
	view := app.Views["BIG_CUSTOMERS"]
	require.NotNil(t, view)
	assert.True(t, view.ReadOnly)
	assert.Same(t, customers, view.Dependencies.Get("APP", "CUSTOMERS"))
	assert.Same(t, view, customers.Dependents().Get("APP", "BIG_CUSTOMERS"))

	// Index columns point at the indexed table's canonical fields.
	ix := app.Indexes["IX_ORD_CUST"]
	require.NotNil(t, ix)
	assert.Same(t, orders, ix.Table())
	require.Len(t, ix.Columns, 2)
	assert.Same(t, orders.Fields()["CUSTOMER_ID"], ix.Columns[0].Field)
	assert.Equal(t, OrderDesc, ix.Columns[1].Order)
	assert.Same(t, ix, orders.Indexes.Get("APP", "IX_ORD_CUST"))

	// Trigger wiring.
	tr := app.Triggers["TR_ORD_AUDIT"]
	require.NotNil(t, tr)
	assert.Same(t, orders, tr.Relation())
	assert.Same(t, tr, orders.Triggers.Get("APP", "TR_ORD_AUDIT"))
	assert.Same(t, customers, tr.Dependencies.Get("APP", "CUSTOMERS"))

	// Tablespace proxies.
	us := db.Tablespaces["USERSPACE1"]
	require.NotNil(t, us)
	assert.Equal(t, "Regular", us.Kind())
	assert.True(t, us.Tables.Contains("APP", "CUSTOMERS"))
	assert.True(t, us.Indexes.Contains("APP", "IX_ORD_CUST"))
	assert.Same(t, us, customers.Tablespace())

	// Routines: overloads by display name, uniqueness by specific name.
	total := app.SpecificFunctions["TOTAL_1"]
	require.NotNil(t, total)
	assert.Same(t, total, app.Functions["TOTAL"][0])
	require.Len(t, total.Params(), 1)
	assert.Equal(t, "CUST_ID", total.Params()[0].Name())
	require.Len(t, total.Returns, 1)
	assert.Equal(t, "P0", total.Returns[0].Name())
	assert.Equal(t, "DECIMAL(10,2)", total.Returns[0].DatatypeStr())
	cleanup := app.SpecificProcedures["CLEANUP_1"]
	require.NotNil(t, cleanup)
	assert.Equal(t, "CLEANUP(IN DAYS INTEGER)", cleanup.Prototype())

	// Objects without a comment report the default description.
	assert.Equal(t, DefaultDescription, customers.Description())
}

func TestFind(t *testing.T) {
	db := buildSample(t)

	tests := []struct {
		name      string
		qualified string
		wantType  string
		wantNil   bool
	}{
		{"schema", "APP", "Schema", false},
		{"tablespace", "USERSPACE1", "Tablespace", false},
		{"table", "APP.CUSTOMERS", "Table", false},
		{"view", "APP.BIG_CUSTOMERS", "View", false},
		{"alias", "APP.CUST", "Alias", false},
		{"index", "APP.IX_ORD_CUST", "Index", false},
		{"function by display name", "APP.TOTAL", "Function", false},
		{"function by specific name", "APP.TOTAL_1", "Function", false},
		{"procedure by display name", "APP.CLEANUP", "Procedure", false},
		{"procedure by specific name", "APP.CLEANUP_1", "Procedure", false},
		{"field", "APP.CUSTOMERS.ID", "Field", false},
		{"primary key", "APP.CUSTOMERS.PK_CUSTOMERS", "Primary Key", false},
		{"foreign key", "APP.ORDERS.FK_ORD_CUST", "Foreign Key", false},
		{"no such schema", "NOPE", "", true},
		{"no such relation", "APP.NOPE", "", true},
		{"no such member", "APP.CUSTOMERS.NOPE", "", true},
		{"too deep", "APP.CUSTOMERS.ID.EXTRA", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := db.Find(tt.qualified)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.TypeName())
		})
	}

	// Find returns the canonical instance, not a copy.
	assert.Same(t, db.Schemas["APP"].Tables["CUSTOMERS"], db.Find("APP.CUSTOMERS"))

	// A routine's qualified name uses its specific name and round-trips
	// through Find.
	total := db.Schemas["APP"].SpecificRoutines["TOTAL_1"]
	require.NotNil(t, total)
	assert.Equal(t, "APP.TOTAL_1", total.QualifiedName())
	assert.Same(t, total, db.Find(total.QualifiedName()))
}

func TestBuildAliasRowOrder(t *testing.T) {
	// An alias chain arriving dependent-first must still survive grouping.
	rs := sampleRows()
	rs.Aliases[0], rs.Aliases[1] = rs.Aliases[1], rs.Aliases[0]

	db, err := Build(rs, Config{})
	require.NoError(t, err)

	app := db.Schemas["APP"]
	cust2 := app.Aliases["CUST2"]
	require.NotNil(t, cust2)
	assert.Same(t, app.Aliases["CUST"], cust2.Base())
	assert.Same(t, app.Tables["CUSTOMERS"], cust2.FinalBase())
}

func TestFunctionPrototypeRowReturn(t *testing.T) {
	rs := sampleRows()
	rs.Functions = append(rs.Functions, FunctionRow{
		Schema: "APP", SpecificName: "CUST_INFO_1", Name: "CUST_INFO",
		Type: FunctionRowType, Language: "SQL",
	})
	rs.Params = append(rs.Params,
		ParamRow{Schema: "APP", SpecificName: "CUST_INFO_1", Name: "ID", Position: 0,
			Direction: ParamResult, TypeSchema: "SYSIBM", TypeName: "INTEGER"},
		ParamRow{Schema: "APP", SpecificName: "CUST_INFO_1", Name: "CUST_ID", Position: 1,
			Direction: ParamIn, TypeSchema: "SYSIBM", TypeName: "INTEGER"},
	)

	db, err := Build(rs, Config{})
	require.NoError(t, err)

	fn := db.Schemas["APP"].SpecificFunctions["CUST_INFO_1"]
	require.NotNil(t, fn)
	assert.Equal(t, "CUST_INFO(CUST_ID INTEGER) RETURNS ROW(ID INTEGER)", fn.Prototype())
}

func TestBuildFiltering(t *testing.T) {
	db, err := Build(sampleRows(), Config{Patterns: Patterns{
		Include: []string{"APP*"},
		Exclude: []string{"APP_TMP"},
	}})
	require.NoError(t, err)

	// Schemas always survive; their filtered contents do not.
	require.NotNil(t, db.Schemas["APP_TMP"])
	assert.Empty(t, db.Schemas["APP_TMP"].TableList)
	assert.NotEmpty(t, db.Schemas["APP"].TableList)

	// Filtering the referencing side away removes the whole subtree.
	db, err = Build(sampleRows(), Config{Patterns: Patterns{
		Exclude: []string{"APP"},
	}})
	require.NoError(t, err)
	assert.Empty(t, db.Schemas["APP"].TableList)
	assert.Empty(t, db.Schemas["APP"].IndexList)
	assert.Empty(t, db.Schemas["APP"].TriggerList)
	assert.NotEmpty(t, db.Schemas["APP_TMP"].TableList)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(rs *RowSet)
		wantErr error
	}{
		{
			name: "unknown generation code",
			mutate: func(rs *RowSet) {
				rs.Fields[0].Generated = "X"
			},
			wantErr: ErrUnknownCode,
		},
		{
			name: "unknown trigger time",
			mutate: func(rs *RowSet) {
				rs.Triggers[0].Time = "Z"
			},
			wantErr: ErrUnknownCode,
		},
		{
			name: "field of undeclared relation",
			mutate: func(rs *RowSet) {
				rs.Fields = append(rs.Fields, FieldRow{
					Schema: "APP", Relation: "GHOST", Name: "X", Position: 1,
					TypeSchema: "SYSIBM", TypeName: "INTEGER", Generated: NotGenerated,
				})
			},
			wantErr: ErrMissingParent,
		},
		{
			name: "second primary key",
			mutate: func(rs *RowSet) {
				rs.UniqueKeys = append(rs.UniqueKeys, UniqueKeyRow{
					Schema: "APP", Table: "CUSTOMERS", Name: "PK_AGAIN", Primary: true,
				})
				rs.UniqueKeyCols = append(rs.UniqueKeyCols, UniqueKeyColRow{
					Schema: "APP", Table: "CUSTOMERS", Key: "PK_AGAIN", Field: "NAME", Sequence: 1,
				})
			},
			wantErr: ErrDuplicatePrimaryKey,
		},
		{
			name: "duplicate relation name",
			mutate: func(rs *RowSet) {
				rs.Tables = append(rs.Tables, TableRow{
					Schema: "APP", Name: "CUSTOMERS", Tablespace: "USERSPACE1",
				})
			},
			wantErr: ErrDuplicateName,
		},
		{
			name: "field datatype missing",
			mutate: func(rs *RowSet) {
				rs.Fields[0].TypeName = "NO_SUCH_TYPE"
			},
			wantErr: ErrMissingRef,
		},
		{
			name: "foreign key to undeclared table",
			mutate: func(rs *RowSet) {
				rs.ForeignKeys[0].RefTable = "GHOST"
			},
			wantErr: ErrMissingRef,
		},
		{
			name: "table tablespace missing",
			mutate: func(rs *RowSet) {
				rs.Tables[0].Tablespace = "NO_SUCH_SPACE"
			},
			wantErr: ErrMissingRef,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := sampleRows()
			tt.mutate(rs)
			_, err := Build(rs, Config{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestCreateSQL(t *testing.T) {
	db := buildSample(t)
	app := db.Schemas["APP"]

	customers := app.Tables["CUSTOMERS"]
	ddl := customers.CreateSQL()
	assert.Contains(t, ddl, "CREATE TABLE APP.CUSTOMERS (")
	assert.Contains(t, ddl, "ID INTEGER NOT NULL")
	assert.Contains(t, ddl, "NAME VARCHAR(64) NOT NULL")
	assert.Contains(t, ddl, "BALANCE DECIMAL(10,2) WITH DEFAULT 0")
	assert.Contains(t, ddl, "CONSTRAINT PK_CUSTOMERS PRIMARY KEY (ID)")
	assert.Contains(t, ddl, ") IN USERSPACE1;")
	// Anonymous constraints lose the CONSTRAINT clause entirely.
	assert.Contains(t, ddl, "\tCHECK (BALANCE >= 0)")
	assert.NotContains(t, ddl, "SQL070117154255810")

	fk := app.Tables["ORDERS"].ForeignKeys["FK_ORD_CUST"]
	assert.Equal(t,
		"ALTER TABLE APP.ORDERS ADD CONSTRAINT FK_ORD_CUST FOREIGN KEY (CUSTOMER_ID) "+
			"REFERENCES APP.CUSTOMERS(ID) ON DELETE CASCADE ON UPDATE NO ACTION;",
		fk.CreateSQL())
	assert.Equal(t, "ALTER TABLE APP.ORDERS DROP CONSTRAINT FK_ORD_CUST;", fk.DropSQL())

	ix := app.Indexes["IX_ORD_CUST"]
	assert.Equal(t,
		"CREATE INDEX APP.IX_ORD_CUST ON APP.ORDERS (CUSTOMER_ID, PLACED DESC);",
		ix.CreateSQL())

	alias := app.Aliases["CUST"]
	assert.Equal(t, "CREATE ALIAS APP.CUST FOR APP.CUSTOMERS;", alias.CreateSQL())
}
