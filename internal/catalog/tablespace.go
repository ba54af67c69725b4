package catalog

import "go.uber.org/zap"

// Tablespace owns no objects structurally but is referenced by tables
// and indexes for storage placement. Its Tables and Indexes collections
// are proxies over the canonical schema collections.
type Tablespace struct {
	objectAttrs
	db   *Database
	kind string

	Tables  *RelationRefs
	Indexes *IndexRefs
}

func newTablespace(db *Database, b *buckets, row TablespaceRow, log *zap.Logger) *Tablespace {
	t := &Tablespace{
		objectAttrs: newAttrs(row.Name, row.Owner, row.System, row.Created, row.Description),
		db:          db,
		Tables:      newRelationRefs(db, b.tablespaceTables[row.Name]),
		Indexes:     newIndexRefs(db, b.tablespaceIndexes[row.Name]),
	}
	if row.Type != nil {
		t.kind = *row.Type
	}
	log.Debug("building tablespace", zap.String("tablespace", t.name))
	return t
}

func (t *Tablespace) Database() *Database { return t.db }
func (t *Tablespace) Identifier() string  { return tablespaceIdent(t.name) }

// QualifiedName is the tablespace's own name: like schemas, tablespaces
// terminate the naming hierarchy.
func (t *Tablespace) QualifiedName() string { return t.name }
func (t *Tablespace) TypeName() string      { return "Tablespace" }

// Kind is the free-text tablespace type reported by the catalog
// (regular, temporary, ...), or empty if unknown.
func (t *Tablespace) Kind() string { return t.kind }
