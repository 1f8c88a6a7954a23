// Package codes exposes the regulatory code lists (waste codes, operation codes, packaging types)
// of each document kind. The lists are embedded as YAML and loaded once.
package codes

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed codes.yaml
var catalogYAML []byte

// OperationKind tells whether an operation code ends the waste's life or hands it to a grouping site.
type OperationKind string

const (
	Processing OperationKind = "PROCESSING"
	Grouping   OperationKind = "GROUPING"
)

// Code is a waste code with its label.
type Code struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// Operation is a processing or grouping operation code.
type Operation struct {
	Code        string        `yaml:"code"`
	Description string        `yaml:"description"`
	Kind        OperationKind `yaml:"kind"`
}

// List holds the code lists of one document kind.
type List struct {
	WasteCodes []Code      `yaml:"wasteCodes"`
	Operations []Operation `yaml:"operations"`
	Packagings []string    `yaml:"packagings"`
}

// Catalog maps a document kind (BSDASRI, BSFF, BSVHU) to its code lists.
type Catalog map[string]*List

var (
	defaultOnce    sync.Once
	defaultCatalog Catalog
)

// Parse decodes a catalog from YAML.
func Parse(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode code catalog: %w", err)
	}
	for kind, l := range c {
		if l == nil {
			return nil, fmt.Errorf("code catalog: empty list for %s", kind)
		}
		for _, op := range l.Operations {
			if op.Kind != Processing && op.Kind != Grouping {
				return nil, fmt.Errorf("code catalog: %s operation %s has unknown kind %q", kind, op.Code, op.Kind)
			}
		}
	}
	return c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is malformed,
// which is caught by the package tests.
func Default() Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func (c Catalog) list(kind string) *List {
	if l, ok := c[kind]; ok {
		return l
	}
	return &List{}
}

// WasteCodes returns the waste codes allowed for kind.
func (c Catalog) WasteCodes(kind string) []string {
	l := c.list(kind)
	out := make([]string, 0, len(l.WasteCodes))
	for _, wc := range l.WasteCodes {
		out = append(out, wc.Code)
	}
	return out
}

// Operations returns every operation code allowed for kind.
func (c Catalog) Operations(kind string) []string {
	return c.operations(kind, "")
}

// ProcessingCodes returns the final processing operation codes of kind.
func (c Catalog) ProcessingCodes(kind string) []string {
	return c.operations(kind, Processing)
}

// GroupingCodes returns the grouping operation codes of kind.
func (c Catalog) GroupingCodes(kind string) []string {
	return c.operations(kind, Grouping)
}

// IsGrouping reports whether code is a grouping operation for kind.
func (c Catalog) IsGrouping(kind, code string) bool {
	op, ok := c.Operation(kind, code)
	return ok && op.Kind == Grouping
}

// Operation looks up one operation code.
func (c Catalog) Operation(kind, code string) (Operation, bool) {
	for _, op := range c.list(kind).Operations {
		if op.Code == code {
			return op, true
		}
	}
	return Operation{}, false
}

// Packagings returns the packaging types of kind.
func (c Catalog) Packagings(kind string) []string {
	return append([]string(nil), c.list(kind).Packagings...)
}

func (c Catalog) operations(kind string, only OperationKind) []string {
	l := c.list(kind)
	out := make([]string, 0, len(l.Operations))
	for _, op := range l.Operations {
		if only == "" || op.Kind == only {
			out = append(out, op.Code)
		}
	}
	return out
}
