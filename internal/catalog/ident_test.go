package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatIdent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower case folds up", "customers", "CUSTOMERS"},
		{"already upper", "CUSTOMERS", "CUSTOMERS"},
		{"underscore and digits", "ORDER_ITEMS2", "ORDER_ITEMS2"},
		{"special ident chars", "A#B$C@D", "A#B$C@D"},
		{"leading digit quoted", "1ST", `"1ST"`},
		{"space quoted", "Order Items", `"Order Items"`},
		{"embedded quote doubled", `SAY "HI"`, `"SAY ""HI"""`},
		{"empty", "", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatIdent(tt.in))
		})
	}
}

func TestQuoteString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "'hello'"},
		{"empty", "", "''"},
		{"single quote doubled", "it's", "'it''s'"},
		{"newline split into hex", "line1\nline2", "'line1' || X'0A' || 'line2'"},
		{"carriage return", "a\rb", "'a' || X'0D' || 'b'"},
		{"trailing newline", "end\n", "'end' || X'0A'"},
		{"only newline", "\n", "X'0A'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteString(tt.in))
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{10, "10"},
		{1023, "1023"},
		{1024, "1K"},
		{1536, "1536"},
		{32768, "32K"},
		{1048576, "1M"},
		{1073741824, "1G"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.in), "FormatSize(%d)", tt.in)
	}
}

func TestAnonymousName(t *testing.T) {
	assert.True(t, anonymousName.MatchString("SQL070117154255810"))
	assert.False(t, anonymousName.MatchString("PK_CUSTOMERS"))
	assert.False(t, anonymousName.MatchString("SQL0701171542558"))
	assert.False(t, anonymousName.MatchString("SQL0701171542558101"))
}
