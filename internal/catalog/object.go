package catalog

import (
	"sort"
	"time"
)

// DefaultDescription is reported for objects the catalog carries no
// comment for.
const DefaultDescription = "No description in the system catalog"

// Object is the surface every entity in the graph exposes to renderers.
// All of it is read-only: the graph is immutable once Build returns.
type Object interface {
	// Name is the unqualified object name.
	Name() string
	// Identifier is a process-unique, file-safe token for the object,
	// distinct even across object kinds.
	Identifier() string
	// QualifiedName is the dotted path from the schema (or tablespace)
	// down to the object.
	QualifiedName() string
	// TypeName is the display label for the object's kind.
	TypeName() string
	Description() string
	Owner() string
	System() bool
	Created() *time.Time
}

// SQLGenerating is implemented by entities that can render DDL for
// themselves. The statements are documentation aids, not guaranteed to be
// valid for any one engine verbatim.
type SQLGenerating interface {
	CreateSQL() string
	DropSQL() string
}

// objectAttrs is the attribute bundle shared by every entity. The system
// flag stored here is already resolved against the parent chain: an
// object owned by a system object is itself system.
type objectAttrs struct {
	name        string
	owner       string
	system      bool
	created     *time.Time
	description string
}

func newAttrs(name string, owner *string, system bool, created *time.Time, desc *string) objectAttrs {
	a := objectAttrs{
		name:        name,
		system:      system,
		created:     created,
		description: DefaultDescription,
	}
	if owner != nil {
		a.owner = *owner
	}
	if desc != nil && *desc != "" {
		a.description = *desc
	}
	return a
}

func (a *objectAttrs) Name() string        { return a.name }
func (a *objectAttrs) Owner() string       { return a.owner }
func (a *objectAttrs) System() bool        { return a.system }
func (a *objectAttrs) Created() *time.Time { return a.created }
func (a *objectAttrs) Description() string { return a.description }

// sortByName orders a list of entities alphabetically by name.
func sortByName[T any](list []T, name func(T) string) {
	sort.Slice(list, func(i, j int) bool { return name(list[i]) < name(list[j]) })
}

// nextIn returns the sibling after pos in list, or the zero value at the
// end. Lists are fixed after construction so positions never go stale.
func nextIn[T any](list []T, pos int) T {
	var zero T
	if pos+1 >= len(list) {
		return zero
	}
	return list[pos+1]
}

// priorIn returns the sibling before pos in list, or the zero value at
// the start.
func priorIn[T any](list []T, pos int) T {
	var zero T
	if pos <= 0 || pos > len(list) {
		return zero
	}
	return list[pos-1]
}
