// Package pdf prints documents. A document is laid out as one section per signature stage,
// rendered to HTML from an embedded template and printed to A4 by a headless browser.
package pdf

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	"trackdechets/internal/model"
)

//go:embed templates/*.html
var templates embed.FS

var bsdTemplate = template.Must(
	template.New("bsd.html").Funcs(template.FuncMap{"toDate": toDate}).ParseFS(templates, "templates/bsd.html"),
)

// Renderer turns document data into a PDF.
type Renderer interface {
	Render(ctx context.Context, data *Data) ([]byte, error)
}

// Layout lists the fields owned by each stage of a document kind.
type Layout interface {
	Stages() []model.Stage
	Paths(stage model.Stage) []string
}

// Row is one printed field.
type Row struct {
	Label string
	Value string
}

// Section groups the fields of a stage with its signature.
type Section struct {
	Stage     model.Stage
	Title     string
	Rows      []Row
	Signature *model.Signature
}

// Data is the template input.
type Data struct {
	ID          string
	Kind        model.Kind
	Title       string
	Status      model.Status
	IsDraft     bool
	Sections    []Section
	Grouped     []string
	GeneratedAt time.Time
}

var titles = map[model.Kind]string{
	model.KindBsdasri: "Bordereau de suivi des déchets d'activités de soins à risque infectieux",
	model.KindBsff:    "Bordereau de suivi des fluides frigorigènes",
	model.KindBsvhu:   "Bordereau de suivi des véhicules hors d'usage",
}

var stageTitles = map[model.Stage]string{
	model.StageEmission:  "Émission",
	model.StageTransport: "Transport",
	model.StageReception: "Réception",
	model.StageOperation: "Traitement",
}

// BuildData lays doc out following layout.
func BuildData(doc model.Bsd, layout Layout, now time.Time) (*Data, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", doc.Kind(), err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.Kind(), err)
	}

	h := doc.Header()
	data := &Data{
		ID:          h.ID,
		Kind:        doc.Kind(),
		Title:       titles[doc.Kind()],
		Status:      h.Status,
		IsDraft:     h.IsDraft,
		Grouped:     doc.Grouped(),
		GeneratedAt: now,
	}
	for _, st := range layout.Stages() {
		sec := Section{Stage: st, Title: stageTitles[st]}
		for _, p := range layout.Paths(st) {
			sec.Rows = append(sec.Rows, Row{Label: p, Value: format(fields[p])})
		}
		if sig := doc.Signature(st); sig.Signed() {
			sec.Signature = sig
		}
		data.Sections = append(data.Sections, sec)
	}
	return data, nil
}

// HTML executes the document template.
func HTML(data *Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := bsdTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return toDate(&t)
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "Oui"
		}
		return "Non"
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, format(e))
		}
		return strings.Join(parts, " ; ")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+" : "+format(x[k]))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func toDate(v any) string {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return ""
		}
		t = *x
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
