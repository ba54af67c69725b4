package catalog

// Proxy collections expose children that canonically live in another
// schema's collections (an index's table, a tablespace's tables, a
// relation's triggers). They store only (schema, name) pairs and resolve
// every access through the canonical maps on the shared Database root, so
// they can never return a stale copy: no copy exists.

// RelationRefs is a proxy collection of relations.
type RelationRefs struct {
	db   *Database
	keys []relKey
}

func newRelationRefs(db *Database, keys []relKey) *RelationRefs {
	return &RelationRefs{db: db, keys: keys}
}

func (r *RelationRefs) Len() int { return len(r.keys) }

// Contains reports whether the pair is a member without resolving it.
func (r *RelationRefs) Contains(schema, name string) bool {
	for _, k := range r.keys {
		if k.Schema == schema && k.Name == name {
			return true
		}
	}
	return false
}

// Get resolves a member through the canonical schema map. It returns nil
// for pairs that are not members.
func (r *RelationRefs) Get(schema, name string) Relation {
	if !r.Contains(schema, name) {
		return nil
	}
	return r.db.Schemas[schema].Relations[name]
}

// At resolves the i'th member.
func (r *RelationRefs) At(i int) Relation {
	k := r.keys[i]
	return r.db.Schemas[k.Schema].Relations[k.Name]
}

// List resolves every member in order. The returned slice is fresh but
// the entities are the canonical instances.
func (r *RelationRefs) List() []Relation {
	out := make([]Relation, len(r.keys))
	for i := range r.keys {
		out[i] = r.At(i)
	}
	return out
}

// IndexRefs is a proxy collection of indexes.
type IndexRefs struct {
	db   *Database
	keys []relKey
}

func newIndexRefs(db *Database, keys []relKey) *IndexRefs {
	return &IndexRefs{db: db, keys: keys}
}

func (r *IndexRefs) Len() int { return len(r.keys) }

func (r *IndexRefs) Contains(schema, name string) bool {
	for _, k := range r.keys {
		if k.Schema == schema && k.Name == name {
			return true
		}
	}
	return false
}

func (r *IndexRefs) Get(schema, name string) *Index {
	if !r.Contains(schema, name) {
		return nil
	}
	return r.db.Schemas[schema].Indexes[name]
}

func (r *IndexRefs) At(i int) *Index {
	k := r.keys[i]
	return r.db.Schemas[k.Schema].Indexes[k.Name]
}

func (r *IndexRefs) List() []*Index {
	out := make([]*Index, len(r.keys))
	for i := range r.keys {
		out[i] = r.At(i)
	}
	return out
}

// TriggerRefs is a proxy collection of triggers.
type TriggerRefs struct {
	db   *Database
	keys []relKey
}

func newTriggerRefs(db *Database, keys []relKey) *TriggerRefs {
	return &TriggerRefs{db: db, keys: keys}
}

func (r *TriggerRefs) Len() int { return len(r.keys) }

func (r *TriggerRefs) Contains(schema, name string) bool {
	for _, k := range r.keys {
		if k.Schema == schema && k.Name == name {
			return true
		}
	}
	return false
}

func (r *TriggerRefs) Get(schema, name string) *Trigger {
	if !r.Contains(schema, name) {
		return nil
	}
	return r.db.Schemas[schema].Triggers[name]
}

func (r *TriggerRefs) At(i int) *Trigger {
	k := r.keys[i]
	return r.db.Schemas[k.Schema].Triggers[k.Name]
}

func (r *TriggerRefs) List() []*Trigger {
	out := make([]*Trigger, len(r.keys))
	for i := range r.keys {
		out[i] = r.At(i)
	}
	return out
}
