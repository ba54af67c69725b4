package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// Datatype belongs to a schema. Distinct (user-defined) types derive
// from a source type; the variable-size and variable-scale flags tell
// dependent fields and parameters whether to format a length or
// precision.
type Datatype struct {
	objectAttrs
	schema *Schema

	Size  *int
	Scale *int

	// VariableSize marks types that take a length (VARCHAR, DECIMAL, ...).
	VariableSize bool
	// VariableScale marks types that additionally take a scale (DECIMAL).
	VariableScale bool

	sourceSchema string
	sourceName   string
	source       *Datatype
}

func newDatatype(schema *Schema, row DatatypeRow, log *zap.Logger) *Datatype {
	dt := &Datatype{
		objectAttrs: newAttrs(row.Name, row.Owner, row.System || schema.System(), row.Created, row.Description),
		schema:      schema,
		Size:        row.Size,
		Scale:       row.Scale,
	}
	if row.SourceSchema != nil {
		dt.sourceSchema = *row.SourceSchema
	}
	if row.SourceName != nil {
		dt.sourceName = *row.SourceName
	}
	// System types with no fixed size take one per use site; decimal
	// types additionally take a scale.
	dt.VariableSize = dt.system && row.Size == nil && row.Name != "REFERENCE"
	switch row.Name {
	case "DECIMAL", "DEC", "NUMERIC", "decimal", "numeric":
		dt.VariableScale = dt.system
	}
	log.Debug("building datatype", zap.String("datatype", dt.QualifiedName()))
	return dt
}

func (dt *Datatype) link(db *Database) error {
	if dt.sourceName == "" {
		return nil
	}
	s, ok := db.Schemas[dt.sourceSchema]
	if !ok {
		return fmt.Errorf("datatype %s: source schema %s: %w", dt.QualifiedName(), dt.sourceSchema, ErrMissingRef)
	}
	src, ok := s.Datatypes[dt.sourceName]
	if !ok {
		return fmt.Errorf("datatype %s: source type %s.%s: %w", dt.QualifiedName(), dt.sourceSchema, dt.sourceName, ErrMissingRef)
	}
	dt.source = src
	return nil
}

func (dt *Datatype) Schema() *Schema       { return dt.schema }
func (dt *Datatype) Database() *Database   { return dt.schema.db }
func (dt *Datatype) Identifier() string    { return datatypeIdent(dt.schema.name, dt.name) }
func (dt *Datatype) QualifiedName() string { return dt.schema.name + "." + dt.name }
func (dt *Datatype) TypeName() string      { return "Data Type" }

// Source returns the datatype this type derives from, or nil for base
// types.
func (dt *Datatype) Source() *Datatype { return dt.source }
