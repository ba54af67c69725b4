package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catadoc/catadoc/internal/catalog"
)

func testDatabase(t *testing.T) (*catalog.Database, *catalog.RowSet) {
	t.Helper()
	schemaDesc := "application data"
	tableDesc := "customer master data"
	fieldDesc := "surrogate key"
	rs := &catalog.RowSet{
		Name: "SAMPLE",
		Schemas: []catalog.SchemaRow{
			{Name: "APP", Description: &schemaDesc},
			{Name: "SYSIBM", System: true},
		},
		Tablespaces: []catalog.TablespaceRow{{Name: "USERSPACE1"}},
		Datatypes: []catalog.DatatypeRow{
			{Schema: "SYSIBM", Name: "INTEGER", System: true, Size: func() *int { n := 4; return &n }()},
		},
		Tables: []catalog.TableRow{
			{Schema: "APP", Name: "CUSTOMERS", Tablespace: "USERSPACE1", Description: &tableDesc},
		},
		Fields: []catalog.FieldRow{
			{Schema: "APP", Relation: "CUSTOMERS", Name: "ID", Position: 1,
				TypeSchema: "SYSIBM", TypeName: "INTEGER",
				Generated: catalog.NotGenerated, Description: &fieldDesc},
		},
	}
	db, err := catalog.Build(rs, catalog.Config{})
	require.NoError(t, err)
	return db, rs
}

func TestSQLCommentRenderer(t *testing.T) {
	db, _ := testDatabase(t)

	var buf bytes.Buffer
	require.NoError(t, NewSQLCommentRenderer(&buf).Render(db))

	out := buf.String()
	assert.Contains(t, out, "COMMENT ON SCHEMA APP IS 'application data';")
	assert.Contains(t, out, "COMMENT ON TABLE APP.CUSTOMERS IS 'customer master data';")
	assert.Contains(t, out, "COMMENT ON COLUMN APP.CUSTOMERS.ID IS 'surrogate key';")
	// Objects without a real description stay out of the script.
	assert.NotContains(t, out, "USERSPACE1")
	assert.NotContains(t, out, catalog.DefaultDescription)
}

func TestHTMLRenderer(t *testing.T) {
	db, _ := testDatabase(t)
	dir := t.TempDir()

	require.NoError(t, NewHTMLRenderer(dir).Render(db))

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `<a href="schema_APP.html">APP</a>`)
	assert.Contains(t, string(index), "tbspace_USERSPACE1.html")

	schema, err := os.ReadFile(filepath.Join(dir, "schema_APP.html"))
	require.NoError(t, err)
	assert.Contains(t, string(schema), `<a href="relation_APP_CUSTOMERS.html">CUSTOMERS</a>`)

	rel, err := os.ReadFile(filepath.Join(dir, "relation_APP_CUSTOMERS.html"))
	require.NoError(t, err)
	assert.Contains(t, string(rel), "surrogate key")
	assert.Contains(t, string(rel), "INTEGER")
	// The NOT NULL field renders as a plain yes/no cell.
	assert.Contains(t, string(rel), "<td>no</td>")
	assert.Contains(t, string(rel), "CREATE TABLE APP.CUSTOMERS")
}

func TestXMLRenderer(t *testing.T) {
	db, rs := testDatabase(t)
	path := filepath.Join(t.TempDir(), "sample.xml")

	require.NoError(t, NewXMLRenderer(path, rs).Render(db))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<rowset>")
	assert.Contains(t, string(data), "CUSTOMERS")
}
