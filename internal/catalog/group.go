package catalog

import (
	"fmt"
	"sort"

	"github.com/danwakefield/fnmatch"
)

// Patterns is the include/exclude filter applied to the owning schema
// name of relation-bearing rows. Patterns use shell wildcards (fnmatch
// semantics, case sensitive). Include is evaluated first: an empty
// include list accepts everything. Exclude then removes matches. Schemas
// and datatypes are never filtered so that type resolution keeps working
// for whatever survives.
type Patterns struct {
	Include []string
	Exclude []string
}

// Match reports whether name passes the include list and is not removed
// by the exclude list.
func (p Patterns) Match(name string) bool {
	if len(p.Include) > 0 {
		ok := false
		for _, pat := range p.Include {
			if fnmatch.Match(pat, name, 0) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, pat := range p.Exclude {
		if fnmatch.Match(pat, name, 0) {
			return false
		}
	}
	return true
}

// relKey identifies a schema-owned object: a relation, an index, a
// trigger, or (with Name holding the specific name) a routine.
type relKey struct {
	Schema string
	Name   string
}

func (k relKey) String() string { return k.Schema + "." + k.Name }

// constKey identifies a table-owned constraint.
type constKey struct {
	Schema string
	Table  string
	Name   string
}

func (k constKey) String() string { return k.Schema + "." + k.Table + "." + k.Name }

// buckets is the output of the grouping stage: every child concept keyed
// by its parent, each bucket deterministically ordered. Lookup of an
// absent key yields a nil slice, never an error.
type buckets struct {
	schemas     []SchemaRow
	tablespaces []TablespaceRow

	datatypes  map[string][]DatatypeRow
	tables     map[string][]TableRow
	views      map[string][]ViewRow
	aliases    map[string][]AliasRow
	indexes    map[string][]IndexRow
	functions  map[string][]FunctionRow
	procedures map[string][]ProcedureRow
	triggers   map[string][]TriggerRow

	fields         map[relKey][]FieldRow
	indexCols      map[relKey][]IndexColRow
	uniqueKeys     map[relKey][]UniqueKeyRow
	uniqueKeyCols  map[constKey][]UniqueKeyColRow
	foreignKeys    map[relKey][]ForeignKeyRow
	foreignKeyCols map[constKey][]ForeignKeyColRow
	checks         map[relKey][]CheckRow
	checkCols      map[constKey][]CheckColRow
	params         map[relKey][]ParamRow

	// derived reference lists backing the proxy collections
	relationDependents   map[relKey][]relKey
	relationDependencies map[relKey][]relKey
	relationTriggers     map[relKey][]relKey
	tableIndexes         map[relKey][]relKey
	triggerDeps          map[relKey][]relKey
	tablespaceTables     map[string][]relKey
	tablespaceIndexes    map[string][]relKey

	// orphans are child rows naming a parent no row ever declared, even
	// before filtering. Build turns the first one into ErrMissingParent.
	orphans []string
}

// validateCodes checks every enumerated code in the row set against its
// fixed vocabulary. The core never invents defaults for these.
func validateCodes(rs *RowSet) error {
	for _, r := range rs.Fields {
		if !r.Generated.valid() {
			return badCode("field", r.Schema+"."+r.Relation+"."+r.Name, string(r.Generated))
		}
	}
	for _, r := range rs.ForeignKeys {
		if !r.DeleteRule.valid() {
			return badCode("foreign key", r.Schema+"."+r.Table+"."+r.Name, string(r.DeleteRule))
		}
		if !r.UpdateRule.valid() {
			return badCode("foreign key", r.Schema+"."+r.Table+"."+r.Name, string(r.UpdateRule))
		}
	}
	for _, r := range rs.Triggers {
		name := r.Schema + "." + r.Name
		if !r.Time.valid() {
			return badCode("trigger", name, string(r.Time))
		}
		if !r.Event.valid() {
			return badCode("trigger", name, string(r.Event))
		}
		if !r.Granularity.valid() {
			return badCode("trigger", name, string(r.Granularity))
		}
	}
	for _, r := range rs.IndexCols {
		if !r.Order.valid() {
			return badCode("index column", r.Schema+"."+r.Index+"."+r.Field, string(r.Order))
		}
	}
	for _, r := range rs.Functions {
		if !r.Type.valid() {
			return badCode("function", r.Schema+"."+r.SpecificName, string(r.Type))
		}
	}
	for _, r := range rs.Params {
		if !r.Direction.valid() {
			return badCode("parameter", r.Schema+"."+r.SpecificName+"."+r.Name, string(r.Direction))
		}
	}
	return nil
}

// groupRows filters and buckets the flat row sequences. It is a pure
// function of its inputs: no bucket lookup ever fails, filtering only
// shrinks the graph. Children of filtered-out parents are dropped along
// with the parent, as are dependency and reference pairs whose far side
// was filtered out, so the surviving graph is closed under filtering.
func groupRows(rs *RowSet, pat Patterns) *buckets {
	b := &buckets{
		datatypes:            map[string][]DatatypeRow{},
		tables:               map[string][]TableRow{},
		views:                map[string][]ViewRow{},
		aliases:              map[string][]AliasRow{},
		indexes:              map[string][]IndexRow{},
		functions:            map[string][]FunctionRow{},
		procedures:           map[string][]ProcedureRow{},
		triggers:             map[string][]TriggerRow{},
		fields:               map[relKey][]FieldRow{},
		indexCols:            map[relKey][]IndexColRow{},
		uniqueKeys:           map[relKey][]UniqueKeyRow{},
		uniqueKeyCols:        map[constKey][]UniqueKeyColRow{},
		foreignKeys:          map[relKey][]ForeignKeyRow{},
		foreignKeyCols:       map[constKey][]ForeignKeyColRow{},
		checks:               map[relKey][]CheckRow{},
		checkCols:            map[constKey][]CheckColRow{},
		params:               map[relKey][]ParamRow{},
		relationDependents:   map[relKey][]relKey{},
		relationDependencies: map[relKey][]relKey{},
		relationTriggers:     map[relKey][]relKey{},
		tableIndexes:         map[relKey][]relKey{},
		triggerDeps:          map[relKey][]relKey{},
		tablespaceTables:     map[string][]relKey{},
		tablespaceIndexes:    map[string][]relKey{},
	}

	// Parent keys declared anywhere in the input, before filtering.
	// Children of these are dropped silently when the parent is filtered
	// out; children of anything else are orphans.
	allRelations := map[relKey]bool{}
	allTables := map[relKey]bool{}
	allIndexes := map[relKey]bool{}
	allRoutines := map[relKey]bool{}
	allTriggers := map[relKey]bool{}
	allKeys := map[constKey]bool{}
	allForeignKeys := map[constKey]bool{}
	allChecks := map[constKey]bool{}
	for _, r := range rs.Tables {
		allRelations[relKey{r.Schema, r.Name}] = true
		allTables[relKey{r.Schema, r.Name}] = true
	}
	for _, r := range rs.Views {
		allRelations[relKey{r.Schema, r.Name}] = true
	}
	for _, r := range rs.Aliases {
		allRelations[relKey{r.Schema, r.Name}] = true
	}
	for _, r := range rs.Indexes {
		allIndexes[relKey{r.Schema, r.Name}] = true
	}
	for _, r := range rs.Functions {
		allRoutines[relKey{r.Schema, r.SpecificName}] = true
	}
	for _, r := range rs.Procedures {
		allRoutines[relKey{r.Schema, r.SpecificName}] = true
	}
	for _, r := range rs.Triggers {
		allTriggers[relKey{r.Schema, r.Name}] = true
	}
	for _, r := range rs.UniqueKeys {
		allKeys[constKey{r.Schema, r.Table, r.Name}] = true
	}
	for _, r := range rs.ForeignKeys {
		allForeignKeys[constKey{r.Schema, r.Table, r.Name}] = true
	}
	for _, r := range rs.Checks {
		allChecks[constKey{r.Schema, r.Table, r.Name}] = true
	}

	// Schemas and tablespaces pass through unfiltered.
	b.schemas = append([]SchemaRow(nil), rs.Schemas...)
	sort.Slice(b.schemas, func(i, j int) bool { return b.schemas[i].Name < b.schemas[j].Name })
	b.tablespaces = append([]TablespaceRow(nil), rs.Tablespaces...)
	sort.Slice(b.tablespaces, func(i, j int) bool { return b.tablespaces[i].Name < b.tablespaces[j].Name })
	for _, r := range rs.Datatypes {
		b.datatypes[r.Schema] = append(b.datatypes[r.Schema], r)
	}

	// Relation-bearing rows are filtered on their owning schema name.
	kept := map[relKey]bool{}
	keptTables := map[relKey]bool{}
	for _, r := range rs.Tables {
		if pat.Match(r.Schema) {
			b.tables[r.Schema] = append(b.tables[r.Schema], r)
			k := relKey{r.Schema, r.Name}
			kept[k] = true
			keptTables[k] = true
			b.tablespaceTables[r.Tablespace] = append(b.tablespaceTables[r.Tablespace], k)
		}
	}
	for _, r := range rs.Views {
		if pat.Match(r.Schema) {
			b.views[r.Schema] = append(b.views[r.Schema], r)
			kept[relKey{r.Schema, r.Name}] = true
		}
	}
	// An alias whose base relation was filtered out goes with it. Alias
	// chains may arrive in any row order, so keep passing over the
	// pending rows until no alias changes state.
	pending := rs.Aliases
	for {
		var next []AliasRow
		for _, r := range pending {
			if !pat.Match(r.Schema) {
				continue
			}
			if kept[relKey{r.BaseSchema, r.BaseName}] {
				b.aliases[r.Schema] = append(b.aliases[r.Schema], r)
				kept[relKey{r.Schema, r.Name}] = true
			} else {
				next = append(next, r)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	keptIndexes := map[relKey]bool{}
	for _, r := range rs.Indexes {
		if pat.Match(r.Schema) && keptTables[relKey{r.TableSchema, r.TableName}] {
			b.indexes[r.Schema] = append(b.indexes[r.Schema], r)
			k := relKey{r.Schema, r.Name}
			keptIndexes[k] = true
			b.tableIndexes[relKey{r.TableSchema, r.TableName}] = append(b.tableIndexes[relKey{r.TableSchema, r.TableName}], k)
			b.tablespaceIndexes[r.Tablespace] = append(b.tablespaceIndexes[r.Tablespace], k)
		}
	}
	keptRoutines := map[relKey]bool{}
	for _, r := range rs.Functions {
		if pat.Match(r.Schema) {
			b.functions[r.Schema] = append(b.functions[r.Schema], r)
			keptRoutines[relKey{r.Schema, r.SpecificName}] = true
		}
	}
	for _, r := range rs.Procedures {
		if pat.Match(r.Schema) {
			b.procedures[r.Schema] = append(b.procedures[r.Schema], r)
			keptRoutines[relKey{r.Schema, r.SpecificName}] = true
		}
	}
	keptTriggers := map[relKey]bool{}
	for _, r := range rs.Triggers {
		if pat.Match(r.Schema) && kept[relKey{r.RelationSchema, r.RelationName}] {
			b.triggers[r.Schema] = append(b.triggers[r.Schema], r)
			k := relKey{r.Schema, r.Name}
			keptTriggers[k] = true
			b.relationTriggers[relKey{r.RelationSchema, r.RelationName}] = append(b.relationTriggers[relKey{r.RelationSchema, r.RelationName}], k)
		}
	}

	// Child rows follow their parents; a parent no row ever declared is
	// an extraction bug surfaced by Build.
	for _, r := range rs.Fields {
		k := relKey{r.Schema, r.Relation}
		switch {
		case kept[k]:
			b.fields[k] = append(b.fields[k], r)
		case allRelations[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("field %s.%s.%s", r.Schema, r.Relation, r.Name))
		}
	}
	for _, r := range rs.IndexCols {
		k := relKey{r.Schema, r.Index}
		switch {
		case keptIndexes[k]:
			b.indexCols[k] = append(b.indexCols[k], r)
		case allIndexes[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("index column %s.%s.%s", r.Schema, r.Index, r.Field))
		}
	}
	for _, r := range rs.UniqueKeys {
		k := relKey{r.Schema, r.Table}
		switch {
		case keptTables[k]:
			b.uniqueKeys[k] = append(b.uniqueKeys[k], r)
		case allTables[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("unique key %s.%s.%s", r.Schema, r.Table, r.Name))
		}
	}
	for _, r := range rs.UniqueKeyCols {
		k := constKey{r.Schema, r.Table, r.Key}
		switch {
		case keptTables[relKey{r.Schema, r.Table}] && allKeys[k]:
			b.uniqueKeyCols[k] = append(b.uniqueKeyCols[k], r)
		case allKeys[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("unique key column %s.%s", k, r.Field))
		}
	}
	// Foreign keys whose referenced table was filtered out are dropped
	// with it; a reference to a table that never existed is caught by the
	// link pass instead.
	for _, r := range rs.ForeignKeys {
		k := relKey{r.Schema, r.Table}
		refOut := allTables[relKey{r.RefSchema, r.RefTable}] && !keptTables[relKey{r.RefSchema, r.RefTable}]
		switch {
		case keptTables[k] && !refOut:
			b.foreignKeys[k] = append(b.foreignKeys[k], r)
		case allTables[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("foreign key %s.%s.%s", r.Schema, r.Table, r.Name))
		}
	}
	for _, r := range rs.ForeignKeyCols {
		k := constKey{r.Schema, r.Table, r.Key}
		switch {
		case allForeignKeys[k]:
			b.foreignKeyCols[k] = append(b.foreignKeyCols[k], r)
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("foreign key column %s.%s", k, r.Field))
		}
	}
	for _, r := range rs.Checks {
		k := relKey{r.Schema, r.Table}
		switch {
		case keptTables[k]:
			b.checks[k] = append(b.checks[k], r)
		case allTables[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("check %s.%s.%s", r.Schema, r.Table, r.Name))
		}
	}
	for _, r := range rs.CheckCols {
		k := constKey{r.Schema, r.Table, r.Check}
		switch {
		case allChecks[k]:
			b.checkCols[k] = append(b.checkCols[k], r)
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("check column %s.%s", k, r.Field))
		}
	}
	for _, r := range rs.Params {
		k := relKey{r.Schema, r.SpecificName}
		switch {
		case keptRoutines[k]:
			b.params[k] = append(b.params[k], r)
		case allRoutines[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("parameter %s.%s.%s", r.Schema, r.SpecificName, r.Name))
		}
	}
	for _, r := range rs.TriggerDeps {
		k := relKey{r.Schema, r.Name}
		switch {
		case keptTriggers[k] && kept[relKey{r.DepSchema, r.DepName}]:
			b.triggerDeps[k] = append(b.triggerDeps[k], relKey{r.DepSchema, r.DepName})
		case allTriggers[k]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("trigger dependency %s.%s", r.Schema, r.Name))
		}
	}
	// View dependency pairs feed both directions; pairs with a filtered
	// side are dropped so proxies only ever point at canonical entities.
	for _, r := range rs.ViewDeps {
		from := relKey{r.Schema, r.Name}
		to := relKey{r.DepSchema, r.DepName}
		switch {
		case kept[from] && kept[to]:
			b.relationDependencies[from] = append(b.relationDependencies[from], to)
			b.relationDependents[to] = append(b.relationDependents[to], from)
		case allRelations[from]:
		default:
			b.orphans = append(b.orphans, fmt.Sprintf("view dependency %s.%s", r.Schema, r.Name))
		}
	}

	b.sortBuckets()
	return b
}

// sortBuckets applies the natural ordering to every bucket: names for
// dictionary-style concepts, declared position for ordered concepts.
func (b *buckets) sortBuckets() {
	for _, rows := range b.datatypes {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.tables {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.views {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.aliases {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.indexes {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.functions {
		sort.Slice(rows, func(i, j int) bool { return rows[i].SpecificName < rows[j].SpecificName })
	}
	for _, rows := range b.procedures {
		sort.Slice(rows, func(i, j int) bool { return rows[i].SpecificName < rows[j].SpecificName })
	}
	for _, rows := range b.triggers {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.fields {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	}
	for _, rows := range b.indexCols {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })
	}
	for _, rows := range b.uniqueKeys {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.uniqueKeyCols {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })
	}
	for _, rows := range b.foreignKeys {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.foreignKeyCols {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })
	}
	for _, rows := range b.checks {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	for _, rows := range b.params {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	}
	refLess := func(a, b relKey) bool {
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		return a.Name < b.Name
	}
	for _, refs := range b.relationDependents {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	}
	for _, refs := range b.relationDependencies {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	}
	for _, refs := range b.relationTriggers {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	}
	for _, refs := range b.tableIndexes {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	}
	for _, refs := range b.triggerDeps {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	}
	for _, refs := range b.tablespaceTables {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	}
	for _, refs := range b.tablespaceIndexes {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	}
}
