package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// Schema owns datatypes, relations (tables, views and aliases share one
// namespace), indexes, routines and triggers. Schemas terminate the
// naming hierarchy upward: a schema's qualified name is its own name.
type Schema struct {
	objectAttrs
	db  *Database
	pos int

	Datatypes    map[string]*Datatype
	DatatypeList []*Datatype

	Relations    map[string]Relation
	RelationList []Relation
	Tables       map[string]*Table
	TableList    []*Table
	Views        map[string]*View
	ViewList     []*View
	Aliases      map[string]*Alias
	AliasList    []*Alias

	Indexes   map[string]*Index
	IndexList []*Index

	// Routines are keyed two ways: by display name (overload lists) and
	// by specific name (unique per schema).
	Routines           map[string][]Routine
	SpecificRoutines   map[string]Routine
	RoutineList        []Routine
	Functions          map[string][]*Function
	SpecificFunctions  map[string]*Function
	FunctionList       []*Function
	Procedures         map[string][]*Procedure
	SpecificProcedures map[string]*Procedure
	ProcedureList      []*Procedure

	Triggers    map[string]*Trigger
	TriggerList []*Trigger
}

func newSchema(db *Database, b *buckets, row SchemaRow, log *zap.Logger) (*Schema, error) {
	s := &Schema{
		objectAttrs:        newAttrs(row.Name, row.Owner, row.System, row.Created, row.Description),
		db:                 db,
		Datatypes:          map[string]*Datatype{},
		Relations:          map[string]Relation{},
		Tables:             map[string]*Table{},
		Views:              map[string]*View{},
		Aliases:            map[string]*Alias{},
		Indexes:            map[string]*Index{},
		Routines:           map[string][]Routine{},
		SpecificRoutines:   map[string]Routine{},
		Functions:          map[string][]*Function{},
		SpecificFunctions:  map[string]*Function{},
		Procedures:         map[string][]*Procedure{},
		SpecificProcedures: map[string]*Procedure{},
		Triggers:           map[string]*Trigger{},
	}
	log.Debug("building schema", zap.String("schema", s.name))

	for _, r := range b.datatypes[s.name] {
		if _, dup := s.Datatypes[r.Name]; dup {
			return nil, fmt.Errorf("datatype %s.%s: %w", s.name, r.Name, ErrDuplicateName)
		}
		dt := newDatatype(s, r, log)
		s.Datatypes[r.Name] = dt
		s.DatatypeList = append(s.DatatypeList, dt)
	}
	for _, r := range b.tables[s.name] {
		if _, dup := s.Relations[r.Name]; dup {
			return nil, fmt.Errorf("relation %s.%s: %w", s.name, r.Name, ErrDuplicateName)
		}
		t, err := newTable(s, b, r, log)
		if err != nil {
			return nil, err
		}
		s.Tables[r.Name] = t
		s.TableList = append(s.TableList, t)
		s.Relations[r.Name] = t
	}
	for _, r := range b.views[s.name] {
		if _, dup := s.Relations[r.Name]; dup {
			return nil, fmt.Errorf("relation %s.%s: %w", s.name, r.Name, ErrDuplicateName)
		}
		v := newView(s, b, r, log)
		s.Views[r.Name] = v
		s.ViewList = append(s.ViewList, v)
		s.Relations[r.Name] = v
	}
	for _, r := range b.aliases[s.name] {
		if _, dup := s.Relations[r.Name]; dup {
			return nil, fmt.Errorf("relation %s.%s: %w", s.name, r.Name, ErrDuplicateName)
		}
		a := newAlias(s, b, r, log)
		s.Aliases[r.Name] = a
		s.AliasList = append(s.AliasList, a)
		s.Relations[r.Name] = a
	}
	for _, rel := range s.Relations {
		s.RelationList = append(s.RelationList, rel)
	}
	sortByName(s.RelationList, func(r Relation) string { return r.Name() })

	for _, r := range b.indexes[s.name] {
		if _, dup := s.Indexes[r.Name]; dup {
			return nil, fmt.Errorf("index %s.%s: %w", s.name, r.Name, ErrDuplicateName)
		}
		ix := newIndex(s, b, r, log)
		s.Indexes[r.Name] = ix
		s.IndexList = append(s.IndexList, ix)
	}
	for _, r := range b.functions[s.name] {
		if _, dup := s.SpecificRoutines[r.SpecificName]; dup {
			return nil, fmt.Errorf("routine %s.%s: %w", s.name, r.SpecificName, ErrDuplicateName)
		}
		f := newFunction(s, b, r, log)
		s.Functions[r.Name] = append(s.Functions[r.Name], f)
		s.SpecificFunctions[r.SpecificName] = f
		s.FunctionList = append(s.FunctionList, f)
		s.Routines[r.Name] = append(s.Routines[r.Name], f)
		s.SpecificRoutines[r.SpecificName] = f
		s.RoutineList = append(s.RoutineList, f)
	}
	for _, r := range b.procedures[s.name] {
		if _, dup := s.SpecificRoutines[r.SpecificName]; dup {
			return nil, fmt.Errorf("routine %s.%s: %w", s.name, r.SpecificName, ErrDuplicateName)
		}
		p := newProcedure(s, b, r, log)
		s.Procedures[r.Name] = append(s.Procedures[r.Name], p)
		s.SpecificProcedures[r.SpecificName] = p
		s.ProcedureList = append(s.ProcedureList, p)
		s.Routines[r.Name] = append(s.Routines[r.Name], p)
		s.SpecificRoutines[r.SpecificName] = p
		s.RoutineList = append(s.RoutineList, p)
	}
	sortByName(s.RoutineList, func(r Routine) string { return r.Name() })

	for _, r := range b.triggers[s.name] {
		if _, dup := s.Triggers[r.Name]; dup {
			return nil, fmt.Errorf("trigger %s.%s: %w", s.name, r.Name, ErrDuplicateName)
		}
		tr := newTrigger(s, b, r, log)
		s.Triggers[r.Name] = tr
		s.TriggerList = append(s.TriggerList, tr)
	}
	return s, nil
}

// link resolves every by-name reference held by this schema's children.
func (s *Schema) link(db *Database) error {
	for _, dt := range s.DatatypeList {
		if err := dt.link(db); err != nil {
			return err
		}
	}
	for _, t := range s.TableList {
		if err := t.link(db); err != nil {
			return err
		}
	}
	for _, v := range s.ViewList {
		if err := v.link(db); err != nil {
			return err
		}
	}
	for _, a := range s.AliasList {
		if err := a.link(db); err != nil {
			return err
		}
	}
	for _, ix := range s.IndexList {
		if err := ix.link(db); err != nil {
			return err
		}
	}
	for _, f := range s.FunctionList {
		if err := f.link(db); err != nil {
			return err
		}
	}
	for _, p := range s.ProcedureList {
		if err := p.link(db); err != nil {
			return err
		}
	}
	for _, tr := range s.TriggerList {
		if err := tr.link(db); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) Database() *Database { return s.db }
func (s *Schema) Identifier() string  { return schemaIdent(s.name) }

// QualifiedName is the schema's own name: schemas sit at the top of the
// naming hierarchy.
func (s *Schema) QualifiedName() string { return s.name }
func (s *Schema) TypeName() string      { return "Schema" }

// Next returns the alphabetically following schema, or nil.
func (s *Schema) Next() *Schema { return nextIn(s.db.SchemaList, s.pos) }

// Prior returns the alphabetically preceding schema, or nil.
func (s *Schema) Prior() *Schema { return priorIn(s.db.SchemaList, s.pos) }
