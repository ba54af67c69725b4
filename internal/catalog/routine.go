package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Routine is a callable schema object: a function or a procedure.
// Routines are uniquely identified within a schema by SpecificName;
// several overloads may share one display name.
type Routine interface {
	Object
	SQLGenerating

	Schema() *Schema
	Database() *Database
	SpecificName() string
	// Prototype is the routine signature as it would appear in
	// documentation: NAME(IN A INTEGER, OUT B VARCHAR(10)).
	Prototype() string
	Params() []*Param

	link(db *Database) error
}

// routineAttrs carries what functions and procedures share.
type routineAttrs struct {
	objectAttrs
	schema       *Schema
	specificName string

	Deterministic  *bool
	ExternalAction *bool
	NullCall       *bool
	Language       string
	SQL            string

	params []*Param
}

func (r *routineAttrs) Schema() *Schema      { return r.schema }
func (r *routineAttrs) Database() *Database  { return r.schema.db }
func (r *routineAttrs) SpecificName() string { return r.specificName }
func (r *routineAttrs) Params() []*Param     { return r.params }

func (r *routineAttrs) Identifier() string {
	return routineIdent(r.schema.name, r.specificName)
}

// QualifiedName uses the specific name: it is the unique handle.
func (r *routineAttrs) QualifiedName() string {
	return r.schema.name + "." + r.specificName
}

func (r *routineAttrs) buildParams(b *buckets, log *zap.Logger) {
	for _, pr := range b.params[relKey{r.schema.name, r.specificName}] {
		r.params = append(r.params, newParam(r, pr, log))
	}
}

func (r *routineAttrs) linkParams(db *Database) error {
	for _, p := range r.params {
		if err := p.link(db); err != nil {
			return err
		}
	}
	return nil
}

func (r *routineAttrs) prototype(params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s %s", p.Direction, FormatIdent(p.Name()), p.DatatypeStr())
	}
	return fmt.Sprintf("%s(%s)", FormatIdent(r.name), strings.Join(parts, ", "))
}

// Function is a user-defined function. Returns holds its result
// definition: one entry for scalar functions, one per column for row and
// table functions.
type Function struct {
	routineAttrs

	Type    FunctionType
	Returns []*Param
}

func newFunction(s *Schema, b *buckets, row FunctionRow, log *zap.Logger) *Function {
	f := &Function{
		routineAttrs: routineAttrs{
			objectAttrs:    newAttrs(row.Name, row.Owner, row.System, row.Created, row.Description),
			schema:         s,
			specificName:   row.SpecificName,
			Deterministic:  row.Deterministic,
			ExternalAction: row.ExternalAction,
			NullCall:       row.NullCall,
			Language:       row.Language,
		},
		Type: row.Type,
	}
	if row.SQL != nil {
		f.SQL = *row.SQL
	}
	log.Debug("building function", zap.String("function", f.QualifiedName()))
	for _, pr := range b.params[relKey{s.name, row.SpecificName}] {
		p := newParam(&f.routineAttrs, pr, log)
		if pr.Direction == ParamResult {
			f.Returns = append(f.Returns, p)
		} else {
			f.params = append(f.params, p)
		}
	}
	return f
}

func (f *Function) link(db *Database) error {
	if err := f.linkParams(db); err != nil {
		return err
	}
	for _, p := range f.Returns {
		if err := p.link(db); err != nil {
			return err
		}
	}
	return nil
}

func (f *Function) TypeName() string { return "Function" }

func (f *Function) Prototype() string {
	parts := make([]string, len(f.params))
	for i, p := range f.params {
		parts[i] = fmt.Sprintf("%s %s", FormatIdent(p.Name()), p.DatatypeStr())
	}
	proto := fmt.Sprintf("%s(%s)", FormatIdent(f.name), strings.Join(parts, ", "))
	switch f.Type {
	case FunctionRowType:
		cols := make([]string, len(f.Returns))
		for i, p := range f.Returns {
			cols[i] = fmt.Sprintf("%s %s", FormatIdent(p.Name()), p.DatatypeStr())
		}
		proto += fmt.Sprintf(" RETURNS ROW(%s)", strings.Join(cols, ", "))
	case FunctionTable:
		cols := make([]string, len(f.Returns))
		for i, p := range f.Returns {
			cols[i] = fmt.Sprintf("%s %s", FormatIdent(p.Name()), p.DatatypeStr())
		}
		proto += fmt.Sprintf(" RETURNS TABLE(%s)", strings.Join(cols, ", "))
	default:
		if len(f.Returns) > 0 {
			proto += " RETURNS " + f.Returns[0].DatatypeStr()
		}
	}
	return proto
}

func (f *Function) CreateSQL() string {
	if f.SQL == "" {
		return ""
	}
	return f.SQL + ";"
}

func (f *Function) DropSQL() string {
	return fmt.Sprintf("DROP SPECIFIC FUNCTION %s.%s;",
		FormatIdent(f.schema.name), FormatIdent(f.specificName))
}

// Procedure is a stored procedure.
type Procedure struct {
	routineAttrs
}

func newProcedure(s *Schema, b *buckets, row ProcedureRow, log *zap.Logger) *Procedure {
	p := &Procedure{
		routineAttrs: routineAttrs{
			objectAttrs:    newAttrs(row.Name, row.Owner, row.System, row.Created, row.Description),
			schema:         s,
			specificName:   row.SpecificName,
			Deterministic:  row.Deterministic,
			ExternalAction: row.ExternalAction,
			NullCall:       row.NullCall,
			Language:       row.Language,
		},
	}
	if row.SQL != nil {
		p.SQL = *row.SQL
	}
	log.Debug("building procedure", zap.String("procedure", p.QualifiedName()))
	p.buildParams(b, log)
	return p
}

func (p *Procedure) link(db *Database) error { return p.linkParams(db) }

func (p *Procedure) TypeName() string { return "Procedure" }

func (p *Procedure) Prototype() string { return p.prototype(p.params) }

func (p *Procedure) CreateSQL() string {
	if p.SQL == "" {
		return ""
	}
	return p.SQL + ";"
}

func (p *Procedure) DropSQL() string {
	return fmt.Sprintf("DROP SPECIFIC PROCEDURE %s.%s;",
		FormatIdent(p.schema.name), FormatIdent(p.specificName))
}

// Param is one parameter or result column of a routine. Unnamed
// parameters are given positional names (P1, P2, ...).
type Param struct {
	objectAttrs
	routine *routineAttrs

	Position  int
	Direction ParamDirection
	Codepage  *int

	typeSchema string
	typeName   string
	size       *int
	scale      *int
	datatype   *Datatype
}

func newParam(r *routineAttrs, row ParamRow, log *zap.Logger) *Param {
	name := row.Name
	if name == "" {
		name = fmt.Sprintf("P%d", row.Position)
	}
	return &Param{
		objectAttrs: newAttrs(name, nil, false, nil, row.Description),
		routine:     r,
		Position:    row.Position,
		Direction:   row.Direction,
		Codepage:    row.Codepage,
		typeSchema:  row.TypeSchema,
		typeName:    row.TypeName,
		size:        row.Size,
		scale:       row.Scale,
	}
}

func (p *Param) link(db *Database) error {
	s, ok := db.Schemas[p.typeSchema]
	if !ok {
		return fmt.Errorf("parameter %s: datatype schema %s: %w", p.QualifiedName(), p.typeSchema, ErrMissingRef)
	}
	dt, ok := s.Datatypes[p.typeName]
	if !ok {
		return fmt.Errorf("parameter %s: datatype %s.%s: %w", p.QualifiedName(), p.typeSchema, p.typeName, ErrMissingRef)
	}
	p.datatype = dt
	return nil
}

func (p *Param) Datatype() *Datatype { return p.datatype }

func (p *Param) Identifier() string {
	return paramIdent(p.routine.schema.name, p.routine.specificName, p.Position)
}

func (p *Param) QualifiedName() string {
	return p.routine.QualifiedName() + "." + p.name
}

func (p *Param) TypeName() string { return "Parameter" }

// Size returns the declared size when the datatype is variably sized.
func (p *Param) Size() *int {
	if p.datatype != nil && p.datatype.VariableSize {
		return p.size
	}
	return nil
}

// Scale returns the declared scale when the datatype is variably scaled.
func (p *Param) Scale() *int {
	if p.datatype != nil && p.datatype.VariableScale {
		return p.scale
	}
	return nil
}

// DatatypeStr renders the parameter's type for prototypes: system types
// unqualified, user types schema-qualified, with size and scale where
// the type is variable.
func (p *Param) DatatypeStr() string {
	var sb strings.Builder
	if p.datatype != nil && p.datatype.System() {
		sb.WriteString(FormatIdent(p.typeName))
	} else {
		sb.WriteString(FormatIdent(p.typeSchema))
		sb.WriteString(".")
		sb.WriteString(FormatIdent(p.typeName))
	}
	if sz := p.Size(); sz != nil {
		if sc := p.Scale(); sc != nil {
			fmt.Fprintf(&sb, "(%s,%d)", FormatSize(*sz), *sc)
		} else {
			fmt.Fprintf(&sb, "(%s)", FormatSize(*sz))
		}
	}
	return sb.String()
}
