//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/catadoc/catadoc"
)

func sqliteURL() string {
	if path := os.Getenv("SQLITE_TEST_PATH"); path != "" {
		return "sqlite://" + path
	}
	return "sqlite://../../test.db"
}

func TestSQLiteExtraction(t *testing.T) {
	ctx := context.Background()

	rows, err := catadoc.ExtractRows(ctx, sqliteURL())
	if err != nil {
		t.Fatalf("Failed to extract catalog: %v", err)
	}

	db, err := catadoc.BuildDatabase(rows, nil)
	if err != nil {
		t.Fatalf("Failed to build graph: %v", err)
	}

	verifyTablesExist(t, db, "main", []string{"users", "products", "orders", "order_items"})

	users := findTable(t, db, "main", "users")
	verifyPrimaryKey(t, users, []string{"id"})
	verifyFields(t, users, []string{"id", "username", "email", "status", "created_at"})

	orders := findTable(t, db, "main", "orders")
	verifyForeignKey(t, orders, "user_id", "users")

	// Indexes land on the owning schema and resolve their table
	if ix := db.Find("main.idx_category"); ix == nil {
		t.Error("Expected index main.idx_category in the graph")
	}
}

func TestSQLiteDumpRoundTrip(t *testing.T) {
	ctx := context.Background()

	rows, err := catadoc.ExtractRows(ctx, sqliteURL())
	if err != nil {
		t.Fatalf("Failed to extract catalog: %v", err)
	}

	path := t.TempDir() + "/dump.xml"
	db, err := catadoc.BuildDatabase(rows, nil)
	if err != nil {
		t.Fatalf("Failed to build graph: %v", err)
	}
	if err := catadoc.RenderDatabase(db, rows, &catadoc.OutputOptions{Format: "xml", OutputFile: path}); err != nil {
		t.Fatalf("Failed to write dump: %v", err)
	}

	again, err := catadoc.ExtractRows(ctx, "xml://"+path)
	if err != nil {
		t.Fatalf("Failed to read dump back: %v", err)
	}
	if len(again.Tables) != len(rows.Tables) {
		t.Errorf("Dump round trip lost tables: %d != %d", len(again.Tables), len(rows.Tables))
	}

	db2, err := catadoc.BuildDatabase(again, nil)
	if err != nil {
		t.Fatalf("Failed to rebuild graph from dump: %v", err)
	}
	if db2.Find("main.users") == nil {
		t.Error("Expected main.users in rebuilt graph")
	}
}
