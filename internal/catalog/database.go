package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Config controls graph construction.
type Config struct {
	// Patterns filters relation-bearing rows by owning schema name.
	Patterns Patterns
	// Logger receives one debug line per entity built. Nil means no
	// logging.
	Logger *zap.Logger
}

// Database is the root of the object graph. Everything reachable from it
// is immutable once Build returns and may be read concurrently without
// locking.
type Database struct {
	name string

	Schemas        map[string]*Schema
	SchemaList     []*Schema
	Tablespaces    map[string]*Tablespace
	TablespaceList []*Tablespace
}

// Build reconciles the flat row sequences of a RowSet into a single
// cross-referenced graph. Construction is strictly sequential: rows are
// validated, filtered and grouped, entities are instantiated parent
// before child, and finally a link pass resolves every by-name reference
// against the completed graph. Any inconsistency aborts with an error;
// no partial graph is ever returned.
func Build(rows *RowSet, cfg Config) (*Database, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := validateCodes(rows); err != nil {
		return nil, err
	}

	b := groupRows(rows, cfg.Patterns)
	if len(b.orphans) > 0 {
		return nil, fmt.Errorf("%s: %w", b.orphans[0], ErrMissingParent)
	}

	log.Debug("building database", zap.String("name", rows.Name))
	db := &Database{
		name:        rows.Name,
		Schemas:     make(map[string]*Schema, len(b.schemas)),
		Tablespaces: make(map[string]*Tablespace, len(b.tablespaces)),
	}
	for _, row := range b.tablespaces {
		if _, dup := db.Tablespaces[row.Name]; dup {
			return nil, fmt.Errorf("tablespace %s: %w", row.Name, ErrDuplicateName)
		}
		t := newTablespace(db, b, row, log)
		db.Tablespaces[row.Name] = t
		db.TablespaceList = append(db.TablespaceList, t)
	}
	for _, row := range b.schemas {
		if _, dup := db.Schemas[row.Name]; dup {
			return nil, fmt.Errorf("schema %s: %w", row.Name, ErrDuplicateName)
		}
		s, err := newSchema(db, b, row, log)
		if err != nil {
			return nil, err
		}
		db.Schemas[row.Name] = s
		db.SchemaList = append(db.SchemaList, s)
	}
	for i, s := range db.SchemaList {
		s.pos = i
	}

	// Link pass: every reference that arrived as a name pair becomes a
	// direct pointer, or construction fails naming the missing object.
	for _, s := range db.SchemaList {
		if err := s.link(db); err != nil {
			return nil, err
		}
	}
	log.Debug("database graph complete",
		zap.Int("schemas", len(db.SchemaList)),
		zap.Int("tablespaces", len(db.TablespaceList)))
	return db, nil
}

func (db *Database) Name() string          { return db.name }
func (db *Database) Identifier() string    { return "db" }
func (db *Database) QualifiedName() string { return db.name }
func (db *Database) TypeName() string      { return "Database" }
func (db *Database) Description() string   { return DefaultDescription }
func (db *Database) System() bool          { return false }

// Find resolves a dotted qualified name against the whole graph.
//
// Several namespaces can legally hold the same name, so resolution
// follows a fixed precedence: a one-part name finds a schema before a
// tablespace; a two-part name finds a relation before an index before a
// routine (by specific name, then the first overload by display name); a
// three-part name finds a field before a constraint. Absent names
// resolve to nil.
func (db *Database) Find(qualifiedName string) Object {
	parts := strings.Split(qualifiedName, ".")
	switch len(parts) {
	case 1:
		if s, ok := db.Schemas[parts[0]]; ok {
			return s
		}
		if t, ok := db.Tablespaces[parts[0]]; ok {
			return t
		}
	case 2:
		s, ok := db.Schemas[parts[0]]
		if !ok {
			return nil
		}
		if r, ok := s.Relations[parts[1]]; ok {
			return r
		}
		if ix, ok := s.Indexes[parts[1]]; ok {
			return ix
		}
		if r, ok := s.SpecificRoutines[parts[1]]; ok {
			return r
		}
		if overloads := s.Routines[parts[1]]; len(overloads) > 0 {
			return overloads[0]
		}
	case 3:
		s, ok := db.Schemas[parts[0]]
		if !ok {
			return nil
		}
		r, ok := s.Relations[parts[1]]
		if !ok {
			return nil
		}
		if f, ok := r.Fields()[parts[2]]; ok {
			return f
		}
		if t, ok := r.(*Table); ok {
			if c, ok := t.Constraints[parts[2]]; ok {
				return c
			}
		}
	}
	return nil
}
