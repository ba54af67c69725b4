package catalog

import (
	"fmt"
	"time"
)

// Generation describes how a field's value is produced.
type Generation string

const (
	NotGenerated       Generation = "N"
	GeneratedAlways    Generation = "A"
	GeneratedByDefault Generation = "D"
)

func (g Generation) valid() bool {
	switch g {
	case NotGenerated, GeneratedAlways, GeneratedByDefault:
		return true
	}
	return false
}

// Keyword returns the SQL keyword fragment for generated columns.
func (g Generation) Keyword() string {
	switch g {
	case GeneratedAlways:
		return "ALWAYS"
	case GeneratedByDefault:
		return "BY DEFAULT"
	}
	return ""
}

// FKRule is a foreign key delete or update action.
type FKRule string

const (
	FKNoAction FKRule = "A"
	FKCascade  FKRule = "C"
	FKSetNull  FKRule = "N"
	FKRestrict FKRule = "R"
)

func (r FKRule) valid() bool {
	switch r {
	case FKNoAction, FKCascade, FKSetNull, FKRestrict:
		return true
	}
	return false
}

// Keyword returns the SQL action clause for the rule.
func (r FKRule) Keyword() string {
	switch r {
	case FKNoAction:
		return "NO ACTION"
	case FKCascade:
		return "CASCADE"
	case FKSetNull:
		return "SET NULL"
	case FKRestrict:
		return "RESTRICT"
	}
	return ""
}

// TriggerTime describes when a trigger fires relative to its statement.
type TriggerTime string

const (
	TriggerBefore    TriggerTime = "B"
	TriggerAfter     TriggerTime = "A"
	TriggerInsteadOf TriggerTime = "I"
)

func (t TriggerTime) valid() bool {
	switch t {
	case TriggerBefore, TriggerAfter, TriggerInsteadOf:
		return true
	}
	return false
}

func (t TriggerTime) String() string {
	switch t {
	case TriggerBefore:
		return "BEFORE"
	case TriggerAfter:
		return "AFTER"
	case TriggerInsteadOf:
		return "INSTEAD OF"
	}
	return string(t)
}

// TriggerEvent is the statement kind that fires a trigger.
type TriggerEvent string

const (
	TriggerInsert TriggerEvent = "I"
	TriggerUpdate TriggerEvent = "U"
	TriggerDelete TriggerEvent = "D"
)

func (e TriggerEvent) valid() bool {
	switch e {
	case TriggerInsert, TriggerUpdate, TriggerDelete:
		return true
	}
	return false
}

func (e TriggerEvent) String() string {
	switch e {
	case TriggerInsert:
		return "INSERT"
	case TriggerUpdate:
		return "UPDATE"
	case TriggerDelete:
		return "DELETE"
	}
	return string(e)
}

// TriggerGranularity is how often a trigger fires per statement.
type TriggerGranularity string

const (
	TriggerPerRow       TriggerGranularity = "R"
	TriggerPerStatement TriggerGranularity = "S"
)

func (g TriggerGranularity) valid() bool {
	return g == TriggerPerRow || g == TriggerPerStatement
}

func (g TriggerGranularity) String() string {
	switch g {
	case TriggerPerRow:
		return "FOR EACH ROW"
	case TriggerPerStatement:
		return "FOR EACH STATEMENT"
	}
	return string(g)
}

// ParamDirection describes a routine parameter's mode. Result columns of
// row/table functions travel through the same rows as ordinary parameters.
type ParamDirection string

const (
	ParamIn     ParamDirection = "I"
	ParamOut    ParamDirection = "O"
	ParamInOut  ParamDirection = "B"
	ParamResult ParamDirection = "R"
)

func (d ParamDirection) valid() bool {
	switch d {
	case ParamIn, ParamOut, ParamInOut, ParamResult:
		return true
	}
	return false
}

func (d ParamDirection) String() string {
	switch d {
	case ParamIn:
		return "IN"
	case ParamOut:
		return "OUT"
	case ParamInOut:
		return "INOUT"
	case ParamResult:
		return "RESULT"
	}
	return string(d)
}

// IndexOrder is the ordering of one column within an index.
type IndexOrder string

const (
	OrderAsc     IndexOrder = "A"
	OrderDesc    IndexOrder = "D"
	OrderInclude IndexOrder = "I"
)

func (o IndexOrder) valid() bool {
	switch o {
	case OrderAsc, OrderDesc, OrderInclude:
		return true
	}
	return false
}

// FunctionType classifies what a function returns.
type FunctionType string

const (
	FunctionScalar    FunctionType = "S"
	FunctionRowType   FunctionType = "R"
	FunctionTable     FunctionType = "T"
	FunctionAggregate FunctionType = "C"
)

func (t FunctionType) valid() bool {
	switch t {
	case FunctionScalar, FunctionRowType, FunctionTable, FunctionAggregate:
		return true
	}
	return false
}

// SchemaRow describes one schema in the catalog.
type SchemaRow struct {
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	Description *string
}

// DatatypeRow describes one datatype, including built-in system types.
type DatatypeRow struct {
	Schema       string
	Name         string
	Owner        *string
	System       bool
	Created      *time.Time
	SourceSchema *string
	SourceName   *string
	Size         *int
	Scale        *int
	Codepage     *int
	Description  *string
}

// TableRow describes one base table.
type TableRow struct {
	Schema      string
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	LastStats   *time.Time
	Cardinality *int64
	Size        *int64
	Tablespace  string
	Description *string
}

// ViewRow describes one view.
type ViewRow struct {
	Schema      string
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	ReadOnly    *bool
	SQL         *string
	Description *string
}

// AliasRow describes one alias (synonym) for another relation.
type AliasRow struct {
	Schema      string
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	BaseSchema  string
	BaseName    string
	Description *string
}

// ViewDepRow records that a view reads from another relation.
type ViewDepRow struct {
	Schema    string
	Name      string
	DepSchema string
	DepName   string
}

// FieldRow describes one column of a relation. Position is the 1-based
// declaration position within the relation.
type FieldRow struct {
	Schema          string
	Relation        string
	Name            string
	Position        int
	TypeSchema      string
	TypeName        string
	Size            *int
	Scale           *int
	Codepage        *int
	Identity        *bool
	Nullable        bool
	Cardinality     *int64
	NullCardinality *int64
	Generated       Generation
	Default         *string
	Description     *string
}

// IndexRow describes one index. The owning schema and the schema of the
// indexed table may differ.
type IndexRow struct {
	Schema      string
	Name        string
	TableSchema string
	TableName   string
	Owner       *string
	System      bool
	Created     *time.Time
	LastStats   *time.Time
	Cardinality *int64
	Size        *int64
	Unique      bool
	Tablespace  string
	Description *string
}

// IndexColRow describes one column of an index, in declared sequence.
type IndexColRow struct {
	Schema   string
	Index    string
	Field    string
	Sequence int
	Order    IndexOrder
}

// UniqueKeyRow describes one unique key constraint. Primary marks the
// (at most one per table) primary key.
type UniqueKeyRow struct {
	Schema      string
	Table       string
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	Primary     bool
	Description *string
}

// UniqueKeyColRow describes one column of a unique key, in declared sequence.
type UniqueKeyColRow struct {
	Schema   string
	Table    string
	Key      string
	Field    string
	Sequence int
}

// ForeignKeyRow describes one foreign key constraint.
type ForeignKeyRow struct {
	Schema      string
	Table       string
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	RefSchema   string
	RefTable    string
	RefKey      string
	DeleteRule  FKRule
	UpdateRule  FKRule
	Description *string
}

// ForeignKeyColRow describes one (local, referenced) column pair of a
// foreign key, in declared sequence.
type ForeignKeyColRow struct {
	Schema   string
	Table    string
	Key      string
	Field    string
	RefField string
	Sequence int
}

// CheckRow describes one check constraint.
type CheckRow struct {
	Schema      string
	Table       string
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	Expression  *string
	Description *string
}

// CheckColRow names one column referenced by a check constraint.
type CheckColRow struct {
	Schema string
	Table  string
	Check  string
	Field  string
}

// FunctionRow describes one function overload, uniquely identified within
// its schema by SpecificName.
type FunctionRow struct {
	Schema         string
	SpecificName   string
	Name           string
	Owner          *string
	System         bool
	Created        *time.Time
	Type           FunctionType
	Deterministic  *bool
	ExternalAction *bool
	NullCall       *bool
	Language       string
	SQL            *string
	Description    *string
}

// ProcedureRow describes one stored procedure overload.
type ProcedureRow struct {
	Schema         string
	SpecificName   string
	Name           string
	Owner          *string
	System         bool
	Created        *time.Time
	Deterministic  *bool
	ExternalAction *bool
	NullCall       *bool
	Language       string
	SQL            *string
	Description    *string
}

// ParamRow describes one parameter (or result column) of a routine
// overload. Name may be empty for unnamed parameters. Position is the
// 0-based ordinal within the routine prototype.
type ParamRow struct {
	Schema       string
	SpecificName string
	Name         string
	Position     int
	Direction    ParamDirection
	TypeSchema   string
	TypeName     string
	Size         *int
	Scale        *int
	Codepage     *int
	Description  *string
}

// TriggerRow describes one trigger.
type TriggerRow struct {
	Schema         string
	Name           string
	Owner          *string
	System         bool
	Created        *time.Time
	RelationSchema string
	RelationName   string
	Time           TriggerTime
	Event          TriggerEvent
	Granularity    TriggerGranularity
	SQL            *string
	Description    *string
}

// TriggerDepRow records that a trigger's body reads a relation.
type TriggerDepRow struct {
	Schema    string
	Name      string
	DepSchema string
	DepName   string
}

// TablespaceRow describes one tablespace.
type TablespaceRow struct {
	Name        string
	Owner       *string
	System      bool
	Created     *time.Time
	Type        *string
	Description *string
}

// RowSet is the complete, fully materialized input to Build: one flat
// sequence per catalog concept. Sources fill it in any order; Build never
// queries anything after this point. Child rows carry their parents'
// names, not references.
type RowSet struct {
	Name string // database name

	Schemas        []SchemaRow
	Datatypes      []DatatypeRow
	Tables         []TableRow
	Views          []ViewRow
	Aliases        []AliasRow
	ViewDeps       []ViewDepRow
	Fields         []FieldRow
	Indexes        []IndexRow
	IndexCols      []IndexColRow
	UniqueKeys     []UniqueKeyRow
	UniqueKeyCols  []UniqueKeyColRow
	ForeignKeys    []ForeignKeyRow
	ForeignKeyCols []ForeignKeyColRow
	Checks         []CheckRow
	CheckCols      []CheckColRow
	Functions      []FunctionRow
	Procedures     []ProcedureRow
	Params         []ParamRow
	Triggers       []TriggerRow
	TriggerDeps    []TriggerDepRow
	Tablespaces    []TablespaceRow
}

func badCode(kind, object string, code string) error {
	return fmt.Errorf("%s %s: unrecognized code %q: %w", kind, object, code, ErrUnknownCode)
}
