package dump

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/catadoc/catadoc/internal/catalog"
)

func TestRoundTrip(t *testing.T) {
	owner := "ADMIN"
	size := 64
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	comment := "customer master data"

	rs := &catalog.RowSet{
		Name: "SAMPLE",
		Schemas: []catalog.SchemaRow{
			{Name: "APP", Owner: &owner, Created: &created},
			{Name: "SYSIBM", System: true},
		},
		Tablespaces: []catalog.TablespaceRow{{Name: "USERSPACE1"}},
		Datatypes: []catalog.DatatypeRow{
			{Schema: "SYSIBM", Name: "VARCHAR", System: true},
		},
		Tables: []catalog.TableRow{
			{Schema: "APP", Name: "CUSTOMERS", Tablespace: "USERSPACE1", Description: &comment},
		},
		Fields: []catalog.FieldRow{
			{Schema: "APP", Relation: "CUSTOMERS", Name: "NAME", Position: 1,
				TypeSchema: "SYSIBM", TypeName: "VARCHAR", Size: &size,
				Generated: catalog.NotGenerated},
		},
		UniqueKeys: []catalog.UniqueKeyRow{
			{Schema: "APP", Table: "CUSTOMERS", Name: "PK_CUSTOMERS", Primary: true},
		},
		UniqueKeyCols: []catalog.UniqueKeyColRow{
			{Schema: "APP", Table: "CUSTOMERS", Key: "PK_CUSTOMERS", Field: "NAME", Sequence: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rs))
	require.True(t, strings.HasPrefix(buf.String(), xmlHeaderPrefix))

	got, err := Decode(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(rs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

const xmlHeaderPrefix = "<?xml"

// A decoded dump must feed straight into graph construction.
func TestDecodedDumpBuilds(t *testing.T) {
	rs := &catalog.RowSet{
		Name:        "TINY",
		Schemas:     []catalog.SchemaRow{{Name: "S"}},
		Tablespaces: []catalog.TablespaceRow{{Name: "TS"}},
		Datatypes:   []catalog.DatatypeRow{{Schema: "S", Name: "INT", System: true}},
		Tables:      []catalog.TableRow{{Schema: "S", Name: "T", Tablespace: "TS"}},
		Fields: []catalog.FieldRow{
			{Schema: "S", Relation: "T", Name: "C", Position: 1,
				TypeSchema: "S", TypeName: "INT", Generated: catalog.NotGenerated},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rs))
	decoded, err := Decode(&buf)
	require.NoError(t, err)

	db, err := catalog.Build(decoded, catalog.Config{})
	require.NoError(t, err)
	require.NotNil(t, db.Find("S.T.C"))
}
