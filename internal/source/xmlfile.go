package source

import (
	"context"

	"github.com/catadoc/catadoc/internal/catalog"
	"github.com/catadoc/catadoc/internal/dump"
)

// XMLFileSource reads catalog rows from a dump file produced by the
// dump package (or any tool emitting the same format). It is the path
// for engines without a native extractor and for databases that cannot
// be reached from the machine producing the documentation.
type XMLFileSource struct {
	path string
}

// NewXMLFileSource creates a source backed by a dump file.
func NewXMLFileSource(path string) *XMLFileSource {
	return &XMLFileSource{path: path}
}

// Extract decodes the file.
func (s *XMLFileSource) Extract(ctx context.Context) (*catalog.RowSet, error) {
	_ = ctx
	return dump.ReadFile(s.path)
}
