package render

import (
	"fmt"
	"io"

	"github.com/catadoc/catadoc/internal/catalog"
)

// SQLCommentRenderer writes a script of COMMENT ON statements for every
// object that carries a real description. Running the script against a
// freshly restored database seeds its catalog comments, so documentation
// survives a dump/restore cycle that loses them.
type SQLCommentRenderer struct {
	writer io.Writer
}

// NewSQLCommentRenderer creates a renderer writing to w.
func NewSQLCommentRenderer(w io.Writer) *SQLCommentRenderer {
	return &SQLCommentRenderer{writer: w}
}

// Render writes the comment script.
func (r *SQLCommentRenderer) Render(db *catalog.Database) error {
	for _, ts := range db.TablespaceList {
		r.comment("TABLESPACE", catalog.FormatIdent(ts.Name()), ts)
	}
	for _, s := range db.SchemaList {
		if !s.System() {
			r.comment("SCHEMA", catalog.FormatIdent(s.Name()), s)
		}
		for _, rel := range s.RelationList {
			r.relation(rel)
		}
		for _, ix := range s.IndexList {
			r.comment("INDEX", qualified(s.Name(), ix.Name()), ix)
		}
		for _, rt := range s.RoutineList {
			r.routine(rt)
		}
		for _, tr := range s.TriggerList {
			r.comment("TRIGGER", qualified(s.Name(), tr.Name()), tr)
		}
	}
	if w, ok := r.writer.(interface{ Flush() error }); ok {
		return w.Flush()
	}
	return nil
}

func (r *SQLCommentRenderer) relation(rel catalog.Relation) {
	keyword := "TABLE"
	switch rel.(type) {
	case *catalog.View:
		keyword = "VIEW"
	case *catalog.Alias:
		keyword = "ALIAS"
	}
	name := qualified(rel.Schema().Name(), rel.Name())
	r.comment(keyword, name, rel)

	for _, f := range rel.FieldList() {
		if f.Description() != catalog.DefaultDescription {
			fmt.Fprintf(r.writer, "COMMENT ON COLUMN %s.%s IS %s;\n",
				name, catalog.FormatIdent(f.Name()), catalog.QuoteString(f.Description()))
		}
	}
	if t, ok := rel.(*catalog.Table); ok {
		for _, c := range t.ConstraintList {
			r.comment("CONSTRAINT", name+"."+catalog.FormatIdent(c.Name()), c)
		}
	}
}

func (r *SQLCommentRenderer) routine(rt catalog.Routine) {
	keyword := "SPECIFIC FUNCTION"
	if _, ok := rt.(*catalog.Procedure); ok {
		keyword = "SPECIFIC PROCEDURE"
	}
	r.comment(keyword, qualified(rt.Schema().Name(), rt.SpecificName()), rt)
}

func (r *SQLCommentRenderer) comment(keyword, name string, obj catalog.Object) {
	if obj.Description() == catalog.DefaultDescription {
		return
	}
	fmt.Fprintf(r.writer, "COMMENT ON %s %s IS %s;\n",
		keyword, name, catalog.QuoteString(obj.Description()))
}

func qualified(schema, name string) string {
	return catalog.FormatIdent(schema) + "." + catalog.FormatIdent(name)
}
