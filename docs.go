package restspec

import (
	"bytes"
	"embed"
	"net/http"
	"text/template"

	"github.com/gopatchy/jsrest"
)

//go:embed templates/*
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*"))

type docsInput struct {
	Title   string
	SpecURL string
}

func (api *API) handleDocs(w http.ResponseWriter, r *http.Request) {
	err := api.handleDocsInt(w, r)
	if err != nil {
		jsrest.WriteError(w, err)
	}
}

func (api *API) handleDocsInt(w http.ResponseWriter, _ *http.Request) error {
	buf := &bytes.Buffer{}

	err := templates.ExecuteTemplate(buf, "docs.html", &docsInput{
		Title:   api.app.config.Title,
		SpecURL: joinPrefix(api.app.config.ApplicationRoot, api.app.config.openAPIPath()),
	})
	if err != nil {
		return jsrest.Errorf(jsrest.ErrInternalServerError, "execute template failed (%w)", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())

	return nil
}
