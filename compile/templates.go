package compile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"golang.org/x/net/html/atom"

	"bte/config"
	"bte/dom"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Language   string
	SourceFile string
	SourceDir  string
	DocumentID string
	Warnings   int
}

func buildValues(name config.TemplateFieldName, src string, res *Result) Values {
	v := Values{
		Context:    string(name),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		SourceDir:  filepath.ToSlash(filepath.Dir(src)),
		DocumentID: res.ID.String(),
		Warnings:   len(res.Warnings),
	}
	if v.SourceDir == "." {
		v.SourceDir = ""
	}
	if t := dom.FindElement(res.Doc, atom.Title); t != nil {
		v.Title = strings.TrimSpace(dom.Text(t))
	}
	if h := dom.FindElement(res.Doc, atom.Html); h != nil {
		v.Language = dom.Attr(h, "lang")
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
