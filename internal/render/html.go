package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/Masterminds/sprig/v3"

	"github.com/catadoc/catadoc/internal/catalog"
)

// HTMLRenderer writes a browsable documentation tree: an index page, one
// page per schema and tablespace, and one page per relation. File names
// come from each object's Identifier, which is unique across kinds, so
// links never collide.
type HTMLRenderer struct {
	OutputDir string
	// Title overrides the page title; empty means the database name.
	Title string

	tmpl *template.Template
}

// NewHTMLRenderer creates a renderer writing into outputDir.
func NewHTMLRenderer(outputDir string) *HTMLRenderer {
	return &HTMLRenderer{OutputDir: outputDir}
}

// Render writes the whole documentation tree.
func (r *HTMLRenderer) Render(db *catalog.Database) error {
	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	title := r.Title
	if title == "" {
		title = db.Name()
	}

	funcs := sprig.HtmlFuncMap()
	funcs["page"] = func(obj catalog.Object) string { return obj.Identifier() + ".html" }
	funcs["title"] = func() string { return title }

	tmpl, err := template.New("htmldoc").Funcs(funcs).Parse(htmlTemplates)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	r.tmpl = tmpl

	if err := r.writePage("index.html", "index", db); err != nil {
		return err
	}
	for _, ts := range db.TablespaceList {
		if err := r.writePage(ts.Identifier()+".html", "tablespace", ts); err != nil {
			return err
		}
	}
	for _, s := range db.SchemaList {
		if err := r.writePage(s.Identifier()+".html", "schema", s); err != nil {
			return err
		}
		for _, rel := range s.RelationList {
			if err := r.writePage(rel.Identifier()+".html", "relation", rel); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *HTMLRenderer) writePage(name, block string, data any) error {
	path := filepath.Join(r.OutputDir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	if err := r.tmpl.ExecuteTemplate(file, block, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// The templates share a skeleton via the head/foot blocks. Pages keep to
// plain tables so the output needs no assets beyond one inline style.
const htmlTemplates = `
{{define "head"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{title}} - {{.}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #999; padding: 0.3em 0.6em; text-align: left; }
th { background: #eee; }
pre { background: #f5f5f5; padding: 0.8em; overflow-x: auto; }
</style>
</head>
<body>
<p><a href="index.html">{{title}}</a></p>
<h1>{{.}}</h1>
{{end}}

{{define "foot"}}</body>
</html>
{{end}}

{{define "objrows"}}{{range .}}<tr>
<td><a href="{{page .}}">{{.Name}}</a></td>
<td>{{.TypeName}}</td>
<td>{{.Description}}</td>
</tr>
{{end}}{{end}}

{{define "index"}}{{template "head" .Name}}
<h2>Schemas</h2>
<table>
<tr><th>Name</th><th>Type</th><th>Description</th></tr>
{{template "objrows" .SchemaList}}
</table>
<h2>Tablespaces</h2>
<table>
<tr><th>Name</th><th>Type</th><th>Description</th></tr>
{{template "objrows" .TablespaceList}}
</table>
{{template "foot"}}{{end}}

{{define "schema"}}{{template "head" .QualifiedName}}
<p>{{.Description}}</p>
{{if .RelationList}}<h2>Relations</h2>
<table>
<tr><th>Name</th><th>Type</th><th>Description</th></tr>
{{template "objrows" .RelationList}}
</table>{{end}}
{{if .IndexList}}<h2>Indexes</h2>
<table>
<tr><th>Name</th><th>On</th><th>Unique</th><th>Description</th></tr>
{{range .IndexList}}<tr>
<td>{{.Name}}</td>
<td><a href="{{page .Table}}">{{.Table.QualifiedName}}</a></td>
<td>{{ternary "yes" "no" .Unique}}</td>
<td>{{.Description}}</td>
</tr>
{{end}}</table>{{end}}
{{if .RoutineList}}<h2>Routines</h2>
<table>
<tr><th>Prototype</th><th>Type</th><th>Description</th></tr>
{{range .RoutineList}}<tr>
<td>{{.Prototype}}</td>
<td>{{.TypeName}}</td>
<td>{{.Description}}</td>
</tr>
{{end}}</table>{{end}}
{{if .TriggerList}}<h2>Triggers</h2>
<table>
<tr><th>Name</th><th>On</th><th>Timing</th><th>Description</th></tr>
{{range .TriggerList}}<tr>
<td>{{.Name}}</td>
<td><a href="{{page .Relation}}">{{.Relation.QualifiedName}}</a></td>
<td>{{.Time}} {{.Event}} {{.Granularity}}</td>
<td>{{.Description}}</td>
</tr>
{{end}}</table>{{end}}
{{if .DatatypeList}}<h2>Datatypes</h2>
<table>
<tr><th>Name</th><th>Source</th><th>Description</th></tr>
{{range .DatatypeList}}<tr>
<td>{{.Name}}</td>
<td>{{with .Source}}{{.QualifiedName}}{{end}}</td>
<td>{{.Description}}</td>
</tr>
{{end}}</table>{{end}}
{{template "foot"}}{{end}}

{{define "relation"}}{{template "head" .QualifiedName}}
<p>{{.Description}}</p>
<h2>Fields</h2>
<table>
<tr><th>#</th><th>Name</th><th>Type</th><th>Nulls</th><th>Key</th><th>Description</th></tr>
{{range .FieldList}}<tr>
<td>{{.Position}}</td>
<td>{{.Name}}</td>
<td>{{.DatatypeStr}}</td>
<td>{{ternary "yes" "no" .Nullable}}</td>
<td>{{with .Key}}{{.Name}}{{end}}</td>
<td>{{.Description}}</td>
</tr>
{{end}}</table>
{{if .Dependents.Len}}<h2>Dependent Relations</h2>
<table>
<tr><th>Name</th><th>Type</th><th>Description</th></tr>
{{template "objrows" .Dependents.List}}
</table>{{end}}
{{with .CreateSQL}}<h2>SQL Definition</h2>
<pre>{{.}}</pre>{{end}}
{{template "foot"}}{{end}}

{{define "tablespace"}}{{template "head" .QualifiedName}}
<p>{{.Description}}</p>
{{if .Tables.Len}}<h2>Tables</h2>
<table>
<tr><th>Name</th><th>Type</th><th>Description</th></tr>
{{template "objrows" .Tables.List}}
</table>{{end}}
{{if .Indexes.Len}}<h2>Indexes</h2>
<table>
<tr><th>Name</th><th>On</th></tr>
{{range .Indexes.List}}<tr>
<td>{{.Name}}</td>
<td><a href="{{page .Table}}">{{.Table.QualifiedName}}</a></td>
</tr>
{{end}}</table>{{end}}
{{template "foot"}}{{end}}
`
