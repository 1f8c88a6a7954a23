package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trackdechets/internal/model"
	"trackdechets/internal/pdf"
	"trackdechets/internal/validation"
)

// tool gives kind-independent access to the validator of a document kind.
type tool interface {
	decode(raw []byte) (model.Bsd, error)
	validate(ctx context.Context, doc model.Bsd, c validation.Context) (validation.Errors, error)
	requiredFor(path string) []model.Stage
	layout() pdf.Layout
}

type kindTool[T any, PT interface {
	*T
	model.Bsd
}] struct {
	v *validation.Validator[T]
}

func (k kindTool[T, PT]) decode(raw []byte) (model.Bsd, error) {
	doc := PT(new(T))
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k.v.Kind(), err)
	}
	return doc, nil
}

func (k kindTool[T, PT]) validate(ctx context.Context, doc model.Bsd, c validation.Context) (validation.Errors, error) {
	typed, ok := doc.(PT)
	if !ok {
		return nil, fmt.Errorf("expected a %s document, got %s", k.v.Kind(), doc.Kind())
	}
	c.IsRegrouping = len(doc.Grouped()) > 0
	return k.v.Validate(ctx, (*T)(typed), c)
}

func (k kindTool[T, PT]) requiredFor(path string) []model.Stage { return k.v.RequiredFor(path) }

func (k kindTool[T, PT]) layout() pdf.Layout { return k.v }

func toolFor(kind string, lookup validation.CompanyLookup) (tool, error) {
	k, err := model.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case model.KindBsdasri:
		return kindTool[model.Bsdasri, *model.Bsdasri]{v: validation.Bsdasri(lookup)}, nil
	case model.KindBsff:
		return kindTool[model.Bsff, *model.Bsff]{v: validation.Bsff(lookup)}, nil
	case model.KindBsvhu:
		return kindTool[model.Bsvhu, *model.Bsvhu]{v: validation.Bsvhu(lookup)}, nil
	}
	return nil, fmt.Errorf("unsupported kind %q", kind)
}

// loadCompanies reads the companies known to the offline lookup. The file is YAML, so
// plain JSON works too.
func loadCompanies(path string) (validation.Companies, error) {
	out := validation.Companies{}
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies: %w", err)
	}
	var items []map[string]any
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse companies: %w", err)
	}
	for i, item := range items {
		// yaml keys map onto the json field names of model.Company
		b, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("company #%d: %w", i, err)
		}
		var c model.Company
		if err := json.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("company #%d: %w", i, err)
		}
		if c.Siret == "" {
			return nil, fmt.Errorf("company #%d: siret is required", i)
		}
		out[c.Siret] = &c
	}
	return out, nil
}

func readDocument(t tool, path string) (model.Bsd, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return t.decode(raw)
}
