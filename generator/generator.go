package generator

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf16"

	"circuitflow/types"
)

const DefaultProjectName = "My Project"

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var stopWords = map[string]struct{}{
	"make": {}, "build": {}, "create": {}, "want": {}, "need": {},
	"like": {}, "with": {}, "that": {}, "this": {}, "have": {},
}

var whitespace = regexp.MustCompile(`\s+`)

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"slug":  Slug,
}

var templates = template.Must(template.New("docs").Funcs(funcs).ParseFS(templateFS, "templates/*.md.tmpl"))

type docTemplate struct {
	ID          string
	Title       string
	Type        types.DocumentType
	Description string
	Template    string
}

// order matters: clients map the documents to board regions by position
var docTemplates = []docTemplate{
	{"prd", "PRD.md", types.DocumentCPU, "Product Requirements Document", "prd.md.tmpl"},
	{"trd", "TRD.md", types.DocumentMemory, "Technical Requirements Document", "trd.md.tmpl"},
	{"architecture", "Architecture.md", types.DocumentGPU, "System Architecture", "architecture.md.tmpl"},
	{"api-spec", "API-Spec.md", types.DocumentIO, "API Specification", "api-spec.md.tmpl"},
	{"deployment", "Deployment.md", types.DocumentStorage, "Deployment Guide", "deployment.md.tmpl"},
}

type templateData struct {
	Name   string
	Prompt string
}

// Generate renders the five documentation templates for prompt. The output is
// a pure function of the prompt.
func Generate(prompt string) ([]types.GeneratedDocument, error) {
	data := templateData{
		Name:   ExtractProjectName(prompt),
		Prompt: prompt,
	}

	docs := make([]types.GeneratedDocument, 0, len(docTemplates))
	for _, s := range docTemplates {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, s.Template, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", s.Template, err)
		}
		docs = append(docs, types.GeneratedDocument{
			ID:          s.ID,
			Title:       s.Title,
			Type:        s.Type,
			Description: s.Description,
			Content:     buf.String(),
		})
	}
	return docs, nil
}

// ExtractProjectName keeps the first three words longer than three characters
// that are not stop-words. Length is counted in UTF-16 code units so names
// match the ones browsers derive from the same prompt.
func ExtractProjectName(prompt string) string {
	var keep []string
	for _, w := range strings.Split(prompt, " ") {
		if len(utf16.Encode([]rune(w))) <= 3 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(w)]; stop {
			continue
		}
		keep = append(keep, w)
		if len(keep) == 3 {
			break
		}
	}
	if len(keep) == 0 {
		return DefaultProjectName
	}
	return strings.Join(keep, " ")
}

func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}
