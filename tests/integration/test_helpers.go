//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/catadoc/catadoc/internal/catalog"
)

// findTable resolves schema.table in the graph and fails the test if it is
// missing or not a base table.
func findTable(t *testing.T, db *catalog.Database, schema, table string) *catalog.Table {
	t.Helper()

	obj := db.Find(schema + "." + table)
	if obj == nil {
		t.Fatalf("Table %s.%s not found", schema, table)
	}
	tab, ok := obj.(*catalog.Table)
	if !ok {
		t.Fatalf("Expected %s.%s to be a table, got %s", schema, table, obj.TypeName())
	}
	return tab
}

// verifyTablesExist checks that all expected tables are present in the schema
func verifyTablesExist(t *testing.T, db *catalog.Database, schema string, expectedTables []string) {
	t.Helper()

	s, ok := db.Schemas[schema]
	if !ok {
		t.Fatalf("Schema %s not found", schema)
	}
	for _, name := range expectedTables {
		if _, ok := s.Tables[name]; !ok {
			t.Errorf("Expected table %s not found in schema %s", name, schema)
		}
	}
}

// verifyFields checks that expected fields exist in a table
func verifyFields(t *testing.T, table *catalog.Table, expectedFields []string) {
	t.Helper()

	for _, name := range expectedFields {
		if _, ok := table.Fields()[name]; !ok {
			t.Errorf("Expected field %s not found in %s", name, table.QualifiedName())
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key fields,
// in order
func verifyPrimaryKey(t *testing.T, table *catalog.Table, expectedPK []string) {
	t.Helper()

	if table.PrimaryKey == nil {
		t.Errorf("Table %s has no primary key, expected %v", table.QualifiedName(), expectedPK)
		return
	}
	got := table.PrimaryKey.Fields
	if len(got) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %d fields", expectedPK, len(got))
		return
	}
	for i, name := range expectedPK {
		if got[i].Name() != name {
			t.Errorf("Expected primary key field %d to be %s, got %s", i, name, got[i].Name())
		}
	}
}

// verifyForeignKey checks that a foreign key from table.field points at the
// expected referenced table
func verifyForeignKey(t *testing.T, table *catalog.Table, field, refTable string) {
	t.Helper()

	for _, c := range table.ConstraintList {
		fk, ok := c.(*catalog.ForeignKey)
		if !ok {
			continue
		}
		for _, pair := range fk.Fields {
			if pair.Field.Name() == field {
				if fk.RefTable.Name() != refTable {
					t.Errorf("Foreign key on %s.%s references %s, expected %s",
						table.Name(), field, fk.RefTable.Name(), refTable)
				}
				return
			}
		}
	}
	t.Errorf("No foreign key on %s.%s found", table.Name(), field)
}
