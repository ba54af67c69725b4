// Package dump serializes catalog row sets as XML documents. A dump is
// the offline interchange format: engines without a native extractor
// (or air-gapped databases) are documented by generating a dump near the
// database and feeding the file to the documenter later. Encode and
// Decode round-trip exactly.
package dump

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/catadoc/catadoc/internal/catalog"
)

// document wraps the row set in a stable root element. Everything else
// is derived from the row structs themselves, so the format follows the
// row contract automatically.
type document struct {
	XMLName xml.Name `xml:"rowset"`
	*catalog.RowSet
}

// Encode writes the row set as indented XML.
func Encode(w io.Writer, rs *catalog.RowSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(document{RowSet: rs}); err != nil {
		return fmt.Errorf("failed to encode row set: %w", err)
	}
	return enc.Close()
}

// Decode reads a row set from an XML document.
func Decode(r io.Reader) (*catalog.RowSet, error) {
	doc := document{RowSet: &catalog.RowSet{}}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode row set: %w", err)
	}
	return doc.RowSet, nil
}

// ReadFile decodes a dump file from disk.
func ReadFile(path string) (*catalog.RowSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile encodes a row set to a dump file on disk.
func WriteFile(path string, rs *catalog.RowSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	if err := Encode(f, rs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
