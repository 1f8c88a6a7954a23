// Package gql exposes the document services through a GraphQL schema. Object types are
// derived from the model structs; document inputs are passed as JSON and validated by
// the services.
package gql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"trackdechets/internal/model"
	"trackdechets/internal/service"
	"trackdechets/internal/validation"
)

var docTypes = []struct {
	kind model.Kind
	typ  reflect.Type
}{
	{model.KindBsdasri, reflect.TypeOf(model.Bsdasri{})},
	{model.KindBsff, reflect.TypeOf(model.Bsff{})},
	{model.KindBsvhu, reflect.TypeOf(model.Bsvhu{})},
}

// codedError carries the machine-readable code in the GraphQL error extensions.
type codedError struct {
	msg  string
	code string
	errs validation.Errors
}

func (e *codedError) Error() string { return e.msg }

func (e *codedError) Extensions() map[string]any {
	ext := map[string]any{"code": e.code}
	if len(e.errs) > 0 {
		ext["errors"] = e.errs
	}
	return ext
}

type builder struct {
	types *typeBuilder
	log   *zap.Logger
}

// coded maps a service error to its GraphQL form. Internal errors are logged and masked.
func (b *builder) coded(err error) error {
	if err == nil {
		return nil
	}
	e := &codedError{msg: err.Error(), code: service.Code(err)}
	if e.code == service.CodeInternal {
		b.log.Error("graphql_resolver_failed", zap.Error(err))
		e.msg = "erreur interne du serveur"
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		e.errs = verr.Errors
	}
	return e
}

// NewSchema builds the schema over the services of reg and the company service.
// A nil companies service leaves the company fields out.
func NewSchema(reg service.Registry, companies service.CompanyService, log *zap.Logger) (graphql.Schema, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &builder{types: newTypeBuilder(), log: log.With(zap.String("component", "graphql"))}

	query := graphql.Fields{}
	mutation := graphql.Fields{}

	stages := make(graphql.EnumValueConfigMap, len(model.StageOrder))
	for _, st := range model.StageOrder {
		stages[string(st)] = &graphql.EnumValueConfig{Value: string(st)}
	}
	signatureType := graphql.NewEnum(graphql.EnumConfig{Name: "SignatureType", Values: stages})

	kinds := graphql.EnumValueConfigMap{}
	for _, dt := range docTypes {
		svc, ok := reg[dt.kind]
		if !ok {
			continue
		}
		kinds[string(dt.kind)] = &graphql.EnumValueConfig{Value: string(dt.kind)}
		b.addKind(svc, dt.typ, signatureType, query, mutation)
	}
	if len(kinds) == 0 {
		return graphql.Schema{}, errors.New("graphql: no document service")
	}

	bsdKind := graphql.NewEnum(graphql.EnumConfig{Name: "BsdKind", Values: kinds})
	query["requiredFor"] = &graphql.Field{
		Type:        graphql.NewList(signatureType),
		Description: "Stages whose signature requires the field at path.",
		Args: graphql.FieldConfigArgument{
			"kind": {Type: graphql.NewNonNull(bsdKind)},
			"path": {Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			svc, err := reg.For(model.Kind(p.Args["kind"].(string)))
			if err != nil {
				return nil, b.coded(err)
			}
			out := []string{}
			for _, st := range svc.RequiredFor(p.Args["path"].(string)) {
				out = append(out, string(st))
			}
			return out, nil
		},
	}

	if companies != nil {
		b.addCompanies(companies, query, mutation)
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: query}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutation}),
	})
}

var formErrorType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FormError",
	Fields: graphql.Fields{
		"path":    &graphql.Field{Type: graphql.String},
		"message": &graphql.Field{Type: graphql.String},
		"requiredFor": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				e, _ := p.Source.(validation.Error)
				out := make([]string, 0, len(e.RequiredFor))
				for _, st := range e.RequiredFor {
					out = append(out, string(st))
				}
				return out, nil
			},
		},
	},
})

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage": &graphql.Field{Type: graphql.Boolean},
		"endCursor":   &graphql.Field{Type: graphql.ID},
	},
})

var fileDownloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FileDownload",
	Fields: graphql.Fields{
		"downloadLink": &graphql.Field{Type: graphql.String},
		"cached":       &graphql.Field{Type: graphql.Boolean},
	},
})

func lowerFirst(s string) string {
	return strings.ToLower(s[:1]) + s[1:]
}

func (b *builder) addKind(svc service.BsdService, t reflect.Type, signatureType *graphql.Enum, query, mutation graphql.Fields) {
	name := t.Name()
	single := lowerFirst(name)
	obj := b.types.object(t)

	metadata := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Metadata",
		Fields: graphql.Fields{
			"errors": &graphql.Field{Type: graphql.NewList(formErrorType)},
		},
	})
	b.types.extend(t, "metadata", &graphql.Field{
		Type:        metadata,
		Description: "Violations of every stage, with the signatures they block.",
		Resolve: func(p graphql.ResolveParams) (any, error) {
			doc, ok := p.Source.(model.Bsd)
			if !ok {
				return nil, nil
			}
			errs, err := svc.Errors(p.Context, doc.Header().ID)
			if err != nil {
				return nil, b.coded(err)
			}
			items := make([]any, 0, len(errs))
			for _, e := range errs {
				items = append(items, e)
			}
			return map[string]any{"errors": items}, nil
		},
	})

	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Edge",
		Fields: graphql.Fields{
			"cursor": &graphql.Field{Type: graphql.ID},
			"node":   &graphql.Field{Type: obj},
		},
	})
	connection := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Connection",
		Fields: graphql.Fields{
			"totalCount": &graphql.Field{Type: graphql.Int},
			"pageInfo":   &graphql.Field{Type: pageInfoType},
			"edges":      &graphql.Field{Type: graphql.NewList(edge)},
		},
	})

	idArg := graphql.FieldConfigArgument{"id": {Type: graphql.NewNonNull(graphql.ID)}}

	query[single] = &graphql.Field{
		Type: obj,
		Args: idArg,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			doc, err := svc.Get(p.Context, p.Args["id"].(string))
			return doc, b.coded(err)
		},
	}
	query[single+"s"] = &graphql.Field{
		Type: connection,
		Args: graphql.FieldConfigArgument{
			"first":  {Type: graphql.Int},
			"after":  {Type: graphql.ID},
			"status": {Type: graphql.NewList(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			q := service.ListQuery{}
			if v, ok := p.Args["first"].(int); ok {
				q.First = v
			}
			if v, ok := p.Args["after"].(string); ok {
				q.After = v
			}
			if v, ok := p.Args["status"].([]any); ok {
				for _, s := range v {
					if s, ok := s.(string); ok {
						q.Statuses = append(q.Statuses, model.Status(s))
					}
				}
			}
			res, err := svc.List(p.Context, q)
			if err != nil {
				return nil, b.coded(err)
			}
			edges := make([]any, 0, len(res.Items))
			for _, doc := range res.Items {
				edges = append(edges, map[string]any{"cursor": doc.Header().ID, "node": doc})
			}
			return map[string]any{
				"totalCount": res.TotalCount,
				"pageInfo":   map[string]any{"hasNextPage": res.HasNextPage, "endCursor": res.EndCursor},
				"edges":      edges,
			}, nil
		},
	}
	query[single+"Pdf"] = &graphql.Field{
		Type: fileDownloadType,
		Args: idArg,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			res, err := svc.PDF(p.Context, p.Args["id"].(string))
			if err != nil {
				return nil, b.coded(err)
			}
			return map[string]any{"downloadLink": res.DownloadLink, "cached": res.Cached}, nil
		},
	}

	inputArg := graphql.NewNonNull(JSON)
	mutation["create"+name] = &graphql.Field{
		Type: obj,
		Args: graphql.FieldConfigArgument{"input": {Type: inputArg}},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			raw, err := rawInput(p.Args["input"])
			if err != nil {
				return nil, b.coded(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
			}
			doc, err := svc.Create(p.Context, raw)
			return doc, b.coded(err)
		},
	}
	mutation["update"+name] = &graphql.Field{
		Type: obj,
		Args: graphql.FieldConfigArgument{
			"id":    {Type: graphql.NewNonNull(graphql.ID)},
			"input": {Type: inputArg},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			raw, err := rawInput(p.Args["input"])
			if err != nil {
				return nil, b.coded(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
			}
			doc, err := svc.Update(p.Context, p.Args["id"].(string), raw)
			return doc, b.coded(err)
		},
	}
	mutation["sign"+name] = &graphql.Field{
		Type: obj,
		Args: graphql.FieldConfigArgument{
			"id":     {Type: graphql.NewNonNull(graphql.ID)},
			"type":   {Type: graphql.NewNonNull(signatureType)},
			"author": {Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			doc, err := svc.Sign(p.Context, p.Args["id"].(string), service.SignInput{
				Stage:  model.Stage(p.Args["type"].(string)),
				Author: p.Args["author"].(string),
			})
			return doc, b.coded(err)
		},
	}
	for verb, action := range map[string]func(service.BsdService, context.Context, string) (model.Bsd, error){
		"publish":   service.BsdService.Publish,
		"duplicate": service.BsdService.Duplicate,
		"delete":    service.BsdService.Delete,
	} {
		action := action
		mutation[verb+name] = &graphql.Field{
			Type: obj,
			Args: idArg,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				doc, err := action(svc, p.Context, p.Args["id"].(string))
				return doc, b.coded(err)
			},
		}
	}
}

func (b *builder) addCompanies(svc service.CompanyService, query, mutation graphql.Fields) {
	company := b.types.object(reflect.TypeOf(model.Company{}))

	query["myCompanies"] = &graphql.Field{
		Type: graphql.NewList(company),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			cs, err := svc.Mine(p.Context)
			if err != nil {
				return nil, b.coded(err)
			}
			out := make([]any, 0, len(cs))
			for i := range cs {
				out = append(out, &cs[i])
			}
			return out, nil
		},
	}
	query["companyInfos"] = &graphql.Field{
		Type: company,
		Args: graphql.FieldConfigArgument{"siret": {Type: graphql.NewNonNull(graphql.String)}},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			c, err := svc.FindBySiret(p.Context, p.Args["siret"].(string))
			if err != nil {
				return nil, b.coded(err)
			}
			return c, nil
		},
	}
	mutation["createCompany"] = &graphql.Field{
		Type: company,
		Args: graphql.FieldConfigArgument{"input": {Type: graphql.NewNonNull(JSON)}},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			raw, err := rawInput(p.Args["input"])
			if err != nil {
				return nil, b.coded(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
			}
			var c model.Company
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, b.coded(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
			}
			created, err := svc.Create(p.Context, &c)
			if err != nil {
				return nil, b.coded(err)
			}
			return created, nil
		},
	}
}
