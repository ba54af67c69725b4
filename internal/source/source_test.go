package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catadoc/catadoc/internal/catalog"
)

func TestParseTypeDecl(t *testing.T) {
	tests := []struct {
		decl      string
		wantName  string
		wantSize  *int
		wantScale *int
	}{
		{"INTEGER", "INTEGER", nil, nil},
		{"integer", "INTEGER", nil, nil},
		{"", "BLOB", nil, nil},
		{"VARCHAR(64)", "VARCHAR", intp(64), nil},
		{"varchar ( 64 )", "VARCHAR", intp(64), nil},
		{"DECIMAL(10,2)", "DECIMAL", intp(10), intp(2)},
		{"decimal(10, 2)", "DECIMAL", intp(10), intp(2)},
		{"NUMERIC(5)", "NUMERIC", intp(5), nil},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			name, size, scale := parseTypeDecl(tt.decl)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.wantScale, scale)
		})
	}
}

func TestParseTriggerHeader(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		wantTime  catalog.TriggerTime
		wantEvent catalog.TriggerEvent
	}{
		{
			name:      "after insert with update in body",
			sql:       "CREATE TRIGGER tr_audit AFTER INSERT ON orders BEGIN UPDATE audit SET n = n + 1; END",
			wantTime:  catalog.TriggerAfter,
			wantEvent: catalog.TriggerInsert,
		},
		{
			name:      "before update with delete in body",
			sql:       "CREATE TRIGGER tr_guard BEFORE UPDATE ON orders BEGIN DELETE FROM stale; END",
			wantTime:  catalog.TriggerBefore,
			wantEvent: catalog.TriggerUpdate,
		},
		{
			name:      "instead of delete on a view",
			sql:       "CREATE TRIGGER tr_view INSTEAD OF DELETE ON big_orders BEGIN SELECT 1; END",
			wantTime:  catalog.TriggerInsteadOf,
			wantEvent: catalog.TriggerDelete,
		},
		{
			name:      "update of column list",
			sql:       "create trigger tr_col after update of status on orders begin select 1; end",
			wantTime:  catalog.TriggerAfter,
			wantEvent: catalog.TriggerUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing, event := parseTriggerHeader(tt.sql)
			assert.Equal(t, tt.wantTime, timing)
			assert.Equal(t, tt.wantEvent, event)
		})
	}
}

func TestCodeMappings(t *testing.T) {
	assert.Equal(t, catalog.TriggerBefore, timingCode("BEFORE"))
	assert.Equal(t, catalog.TriggerInsteadOf, timingCode("INSTEAD OF"))
	assert.Equal(t, catalog.TriggerDelete, eventCode("DELETE"))
	assert.Equal(t, catalog.TriggerPerRow, orientationCode("ROW"))
	assert.Equal(t, catalog.FKCascade, ruleCode("CASCADE"))
	assert.Equal(t, catalog.FKSetNull, ruleCode("SET DEFAULT"))

	// Unknown strings pass through so code validation reports them by name.
	assert.Equal(t, catalog.FKRule("SOMETHING ELSE"), ruleCode("SOMETHING ELSE"))
}

func TestTypeRegistry(t *testing.T) {
	reg := newTypeRegistry("sqlite", map[string]int{"INTEGER": 8})
	reg.add("INTEGER")
	reg.add("TEXT")
	reg.add("INTEGER")

	rows := reg.rows()
	require.Len(t, rows, 2)

	assert.Equal(t, "INTEGER", rows[0].Name)
	assert.Equal(t, "sqlite", rows[0].Schema)
	assert.True(t, rows[0].System)
	require.NotNil(t, rows[0].Size)
	assert.Equal(t, 8, *rows[0].Size)

	assert.Equal(t, "TEXT", rows[1].Name)
	assert.Nil(t, rows[1].Size)
}

func intp(v int) *int { return &v }
