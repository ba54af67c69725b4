package catalog

// Relation is anything with a field list: a table, a view, or an alias.
// Tables, views and aliases share one namespace within a schema.
type Relation interface {
	Object
	SQLGenerating

	Schema() *Schema
	Database() *Database

	// Fields is the name-keyed field map; FieldList the same fields in
	// declaration order.
	Fields() map[string]*Field
	FieldList() []*Field

	// Dependents lists the relations that reference this one (views or
	// aliases built on top of it).
	Dependents() *RelationRefs

	link(db *Database) error
}

// relationAttrs carries what every relation shares: the owning schema
// and the reverse dependents proxy.
type relationAttrs struct {
	objectAttrs
	schema     *Schema
	dependents *RelationRefs
}

func (r *relationAttrs) Schema() *Schema           { return r.schema }
func (r *relationAttrs) Database() *Database       { return r.schema.db }
func (r *relationAttrs) Dependents() *RelationRefs { return r.dependents }
func (r *relationAttrs) Identifier() string        { return relationIdent(r.schema.name, r.name) }
func (r *relationAttrs) QualifiedName() string     { return r.schema.name + "." + r.name }
