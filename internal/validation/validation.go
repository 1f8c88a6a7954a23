// Package validation checks waste documents against per-stage field schemas.
//
// Each signature stage (emission, transport, reception, operation) owns a schema: the list
// of fields it declares and the rules applied to them. A field's presence is only required
// while the stage owning it is being signed; format, range and code-list rules always apply.
// All schemas run in a single pass and every violation is reported.
package validation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trackdechets/internal/model"
)

// ErrNilRecord is returned when Validate is called without a document.
var ErrNilRecord = errors.New("validation: nil record")

var tracer = otel.Tracer("trackdechets/validation")

// Context tells which signatures are being requested.
type Context struct {
	Emission  bool
	Transport bool
	Reception bool
	Operation bool
	// IsRegrouping is set when the document regroups other documents.
	IsRegrouping bool
}

// Active reports whether the signature of stage is requested.
func (c Context) Active(stage model.Stage) bool {
	switch stage {
	case model.StageEmission:
		return c.Emission
	case model.StageTransport:
		return c.Transport
	case model.StageReception:
		return c.Reception
	case model.StageOperation:
		return c.Operation
	}
	return false
}

// ContextFor returns the context used when signing stage.
func ContextFor(stage model.Stage) Context {
	var c Context
	switch stage {
	case model.StageEmission:
		c.Emission = true
	case model.StageTransport:
		c.Transport = true
	case model.StageReception:
		c.Reception = true
	case model.StageOperation:
		c.Operation = true
	}
	return c
}

// AllStages returns a context with every signature requested.
func AllStages() Context {
	return Context{Emission: true, Transport: true, Reception: true, Operation: true}
}

// Error is one field violation.
type Error struct {
	Path        string        `json:"path"`
	Message     string        `json:"message"`
	RequiredFor []model.Stage `json:"requiredFor"`
}

// Errors is the list of violations found on a document. It is nil when the document is valid.
type Errors []Error

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, err := range e {
		parts = append(parts, err.Path+": "+err.Message)
	}
	return strings.Join(parts, "; ")
}

// Paths returns the paths of the violations, in order.
func (e Errors) Paths() []string {
	out := make([]string, 0, len(e))
	for _, err := range e {
		out = append(out, err.Path)
	}
	return out
}

// Field declares one field of a stage schema.
type Field[T any] struct {
	Path  string
	Value func(*T) any
	// Rules returns the rules to apply to the field value. Nil means the field is declared
	// by the stage but carries no rule.
	Rules func(*T, Context) []ozzo.Rule
	// Items validates the elements of a list field.
	Items func(ctx context.Context, r *T, c Context) (Errors, error)
	// Elems lists the element field paths of a list field.
	Elems []string
}

// List declares a list field whose elements are validated with elem. Element errors are
// reported under path[i].name.
func List[T, E any](path string, list func(*T) []E, rules func(*T, Context) []ozzo.Rule, elem ...Field[E]) Field[T] {
	elems := make([]string, 0, len(elem))
	for _, f := range elem {
		elems = append(elems, f.Path)
	}
	return Field[T]{
		Path:  path,
		Elems: elems,
		Value: func(r *T) any { return list(r) },
		Rules: rules,
		Items: func(ctx context.Context, r *T, c Context) (Errors, error) {
			items := list(r)
			var out Errors
			for i := range items {
				errs, err := validateFields(ctx, &items[i], elem, c, fmt.Sprintf("%s[%d].", path, i))
				if err != nil {
					return nil, err
				}
				out = append(out, errs...)
			}
			return out, nil
		},
	}
}

// Schema is the set of fields owned by one signature stage.
type Schema[T any] struct {
	Stage  model.Stage
	Fields []Field[T]
}

// Validator validates one document kind.
type Validator[T any] struct {
	kind    model.Kind
	schemas []Schema[T]
}

// NewValidator builds a validator from its stage schemas, given in stage order.
func NewValidator[T any](kind model.Kind, schemas ...Schema[T]) *Validator[T] {
	return &Validator[T]{kind: kind, schemas: schemas}
}

// Kind returns the document kind validated.
func (v *Validator[T]) Kind() model.Kind { return v.kind }

// Stages returns the stages owning a schema, in order.
func (v *Validator[T]) Stages() []model.Stage {
	out := make([]model.Stage, 0, len(v.schemas))
	for _, s := range v.schemas {
		out = append(out, s.Stage)
	}
	return out
}

// Validate runs every schema against r and returns all violations found.
// The error return is reserved for misuse and for failures of the company lookup.
func (v *Validator[T]) Validate(ctx context.Context, r *T, c Context) (Errors, error) {
	ctx, span := tracer.Start(ctx, "validation.Validate")
	defer span.End()
	span.SetAttributes(
		attribute.String("bsd.type", string(v.kind)),
		attribute.Bool("ctx.emission", c.Emission),
		attribute.Bool("ctx.transport", c.Transport),
		attribute.Bool("ctx.reception", c.Reception),
		attribute.Bool("ctx.operation", c.Operation),
	)

	if r == nil {
		span.SetStatus(codes.Error, ErrNilRecord.Error())
		return nil, ErrNilRecord
	}

	var out Errors
	seen := make(map[string]struct{})
	for _, s := range v.schemas {
		errs, err := validateFields(ctx, r, s.Fields, c, "")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		for _, e := range errs {
			if _, dup := seen[e.Path]; dup {
				continue
			}
			seen[e.Path] = struct{}{}
			e.RequiredFor = v.RequiredFor(e.Path)
			out = append(out, e)
		}
	}
	span.SetAttributes(attribute.Int("validation.errors", len(out)))
	return out, nil
}

// RequiredFor returns the stages whose schema declares path. Element paths such as
// "emitterWastePackagingsInfo[0].volume" resolve to their list field when the element
// field is declared. Any other path resolves to no stage.
func (v *Validator[T]) RequiredFor(path string) []model.Stage {
	out := make([]model.Stage, 0, 1)
	for _, s := range v.schemas {
		for _, f := range s.Fields {
			if f.declares(path) {
				out = append(out, s.Stage)
				break
			}
		}
	}
	return out
}

// StageOf returns the first stage declaring path.
func (v *Validator[T]) StageOf(path string) (model.Stage, bool) {
	st := v.RequiredFor(path)
	if len(st) == 0 {
		return "", false
	}
	return st[0], true
}

// Paths returns the field paths declared by stage, sorted.
func (v *Validator[T]) Paths(stage model.Stage) []string {
	var out []string
	for _, s := range v.schemas {
		if s.Stage != stage {
			continue
		}
		for _, f := range s.Fields {
			out = append(out, f.Path)
		}
	}
	sort.Strings(out)
	return out
}

func validateFields[T any](ctx context.Context, r *T, fields []Field[T], c Context, prefix string) (Errors, error) {
	var out Errors
	for _, f := range fields {
		if f.Rules != nil {
			if err := ozzo.ValidateWithContext(ctx, f.Value(r), f.Rules(r, c)...); err != nil {
				var internal ozzo.InternalError
				if errors.As(err, &internal) {
					return nil, internal.InternalError()
				}
				out = append(out, Error{Path: prefix + f.Path, Message: err.Error()})
				continue
			}
		}
		if f.Items != nil {
			errs, err := f.Items(ctx, r, c)
			if err != nil {
				return nil, err
			}
			out = append(out, errs...)
		}
	}
	return out, nil
}

// declares reports whether path names f itself or, for a list field, one of its
// element fields in the form list[i].elem.
func (f Field[T]) declares(path string) bool {
	if path == f.Path {
		return true
	}
	if len(f.Elems) == 0 {
		return false
	}
	rest, ok := strings.CutPrefix(path, f.Path+"[")
	if !ok {
		return false
	}
	idx, elem, ok := strings.Cut(rest, "].")
	if !ok || idx == "" {
		return false
	}
	if _, err := strconv.ParseUint(idx, 10, 0); err != nil {
		return false
	}
	return slices.Contains(f.Elems, elem)
}
