// Package render turns a built catalog graph into documentation output:
// a browsable HTML tree, a COMMENT script for seeding descriptions back
// into a database, or an XML dump for offline interchange.
package render

import "github.com/catadoc/catadoc/internal/catalog"

// Renderer produces one output form from a catalog graph. Renderers only
// read the graph; it is immutable and safe to hand to several renderers
// concurrently.
type Renderer interface {
	Render(db *catalog.Database) error
}
