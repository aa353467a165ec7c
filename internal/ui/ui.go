// Package ui renders the book form page and the book list as HTML.
package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/service"
)

//go:embed "templates"
var templateFS embed.FS

// FormID is the id of the book form element. Row action buttons submit it.
const FormID = "book-form"

// The Renderer holds the parsed page, rows and confirm templates. Text values
// are escaped by html/template; numbers are written as-is.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"formID":  func() string { return FormID },
		"actions": func() []service.Action { return service.Actions },
	}
	tmpl, err := template.New("ui").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderPage writes the whole form page for v: the form, the feedback area and
// the book list.
func (r *Renderer) RenderPage(w io.Writer, v service.View) error {
	return r.execute(w, "page", v)
}

// RenderRows writes one table row per book. An empty slice writes nothing.
func (r *Renderer) RenderRows(w io.Writer, books []*data.Book) error {
	return r.execute(w, "rows", books)
}

// RenderConfirm writes the page asking the user to confirm deleting id. The
// answer is posted back together with the current form values.
func (r *Renderer) RenderConfirm(w io.Writer, v service.View, id int64, prompt string) error {
	return r.execute(w, "confirm", struct {
		ID     int64
		Prompt string
		View   service.View
	}{id, prompt, v})
}

// execute renders name into a buffer and copies it to w only on success.
func (r *Renderer) execute(w io.Writer, name string, v any) error {
	buf := new(bytes.Buffer)
	if err := r.tmpl.ExecuteTemplate(buf, name, v); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
