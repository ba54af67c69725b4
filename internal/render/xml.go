package render

import (
	"fmt"

	"github.com/catadoc/catadoc/internal/catalog"
	"github.com/catadoc/catadoc/internal/dump"
)

// XMLRenderer writes the extracted rows as a dump file. The output can
// be fed back in as an XML source, so extraction and documentation can
// run on different machines.
type XMLRenderer struct {
	Path string
	// Rows is the unfiltered row set the graph was built from. The dump
	// carries the rows rather than the graph so nothing is lost to
	// schema filtering.
	Rows *catalog.RowSet
}

// NewXMLRenderer creates a renderer writing to path.
func NewXMLRenderer(path string, rows *catalog.RowSet) *XMLRenderer {
	return &XMLRenderer{Path: path, Rows: rows}
}

// Render writes the dump.
func (r *XMLRenderer) Render(db *catalog.Database) error {
	if r.Rows == nil {
		return fmt.Errorf("no row set to dump")
	}
	return dump.WriteFile(r.Path, r.Rows)
}
