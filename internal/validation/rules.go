package validation

import (
	"context"
	"errors"
	"fmt"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.opentelemetry.io/otel/attribute"

	"trackdechets/internal/codes"
	"trackdechets/internal/model"
)

const (
	msgMissingCompanyName    = "Le nom de l'entreprise est obligatoire"
	msgMissingCompanySiret   = "Le siret de l'entreprise est obligatoire"
	msgMissingCompanyAddress = "L'adresse de l'entreprise est obligatoire"
	msgMissingCompanyContact = "Le contact dans l'entreprise est obligatoire"
	msgMissingCompanyPhone   = "Le téléphone de l'entreprise est obligatoire"
	msgInvalidSiret          = "Le SIRET doit faire 14 caractères numériques"
	msgInvalidEmail          = "L'adresse email n'est pas valide"
	msgRefusalReason         = "Vous devez saisir un motif de refus"
	msgAcceptation           = "Vous devez préciser si le déchet est accepté"
	msgInvalidOperation      = "Cette opération d’élimination / valorisation n'existe pas ou n'est pas appropriée"
	msgCollectorRequired     = "Les codes %s sont réservés aux installations de tri transit regroupement"
)

// ErrNoLookup is returned when a grouping operation must be checked but no company lookup
// was configured.
var ErrNoLookup = errors.New("validation: company lookup is required to check grouping operations")

// requiredIf requires the value while cond holds.
func requiredIf(cond bool, msg string) ozzo.Rule {
	return ozzo.When(cond, ozzo.Required.Error(msg))
}

// requiredMsg is the generic message of a required field with a label.
func requiredMsg(label string) string { return label + " est un champ requis" }

func siretRules(cond bool, actor string) []ozzo.Rule {
	return []ozzo.Rule{
		requiredIf(cond, actor+": "+msgMissingCompanySiret),
		ozzo.Length(14, 14).Error(actor + ": " + msgInvalidSiret),
		is.Digit.Error(actor + ": " + msgInvalidSiret),
	}
}

func emailRules() []ozzo.Rule {
	return []ozzo.Rule{is.EmailFormat.Error(msgInvalidEmail)}
}

// oneOf accepts an empty value or one of the given strings.
func oneOf(values []string, msg string) ozzo.Rule {
	elems := make([]any, len(values))
	for i, v := range values {
		elems[i] = v
	}
	return ozzo.In(elems...).Error(msg)
}

func acceptationStatuses() []string {
	out := make([]string, len(model.AcceptationStatuses))
	for i, s := range model.AcceptationStatuses {
		out[i] = string(s)
	}
	return out
}

func quantityTypes() []string {
	out := make([]string, len(model.QuantityTypes))
	for i, q := range model.QuantityTypes {
		out[i] = string(q)
	}
	return out
}

// refusalRules requires the value when status is a refusal and rejects it otherwise.
func refusalRules(status model.AcceptationStatus, required, mustBeEmpty string) []ozzo.Rule {
	return []ozzo.Rule{
		ozzo.When(status.IsRefusal(), ozzo.Required.Error(required)).
			Else(ozzo.Empty.Error(mustBeEmpty)),
	}
}

// atLeast checks an integer that has no "absent" state.
func atLeast(n int, msg string) ozzo.Rule {
	return ozzo.By(func(value any) error {
		if v, ok := value.(int); ok && v < n {
			return errors.New(msg)
		}
		return nil
	})
}

// pairedWith requires the value when the sibling value is set.
func pairedWith(siblingSet bool, msg string) ozzo.Rule {
	return ozzo.When(siblingSet, ozzo.Required.Error(msg))
}

// collectorRule rejects grouping operation codes unless the destination company holds
// the COLLECTOR capability. The lookup runs only for grouping codes with a known siret.
func collectorRule(lookup CompanyLookup, kind model.Kind, siret string) ozzo.Rule {
	catalog := codes.Default()
	return ozzo.WithContext(func(ctx context.Context, value any) error {
		code, _ := value.(string)
		if siret == "" || !catalog.IsGrouping(string(kind), code) {
			return nil
		}
		if lookup == nil {
			return ozzo.NewInternalError(ErrNoLookup)
		}

		ctx, span := tracer.Start(ctx, "validation.CompanyLookup")
		defer span.End()
		span.SetAttributes(attribute.String("company.siret", siret))

		company, err := lookup.FindBySiret(ctx, siret)
		if err != nil {
			span.RecordError(err)
			return ozzo.NewInternalError(fmt.Errorf("lookup company %s: %w", siret, err))
		}
		if !company.IsCollector() {
			grouping := catalog.GroupingCodes(string(kind))
			return ozzo.NewError("validation_collector_required", fmt.Sprintf(msgCollectorRequired, joinCodes(grouping)))
		}
		return nil
	})
}

func joinCodes(list []string) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	}
	out := list[0]
	for _, c := range list[1 : len(list)-1] {
		out += ", " + c
	}
	return out + " et " + list[len(list)-1]
}

// companyFields declares the six identification fields of a company frame.
func companyFields[T any](prefix, actor string, stage func(Context) bool, get func(*T) *companyRef) []Field[T] {
	str := func(pick func(*companyRef) string) func(*T) any {
		return func(r *T) any { return pick(get(r)) }
	}
	return []Field[T]{
		{
			Path:  prefix + "CompanyName",
			Value: str(func(c *companyRef) string { return *c.Name }),
			Rules: func(_ *T, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(stage(c), actor+": "+msgMissingCompanyName)}
			},
		},
		{
			Path:  prefix + "CompanySiret",
			Value: str(func(c *companyRef) string { return *c.Siret }),
			Rules: func(_ *T, c Context) []ozzo.Rule { return siretRules(stage(c), actor) },
		},
		{
			Path:  prefix + "CompanyAddress",
			Value: str(func(c *companyRef) string { return *c.Address }),
			Rules: func(_ *T, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(stage(c), actor+": "+msgMissingCompanyAddress)}
			},
		},
		{
			Path:  prefix + "CompanyContact",
			Value: str(func(c *companyRef) string { return *c.Contact }),
			Rules: func(_ *T, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(stage(c), actor+": "+msgMissingCompanyContact)}
			},
		},
		{
			Path:  prefix + "CompanyPhone",
			Value: str(func(c *companyRef) string { return *c.Phone }),
			Rules: func(_ *T, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(stage(c), actor+": "+msgMissingCompanyPhone)}
			},
		},
		{
			Path:  prefix + "CompanyMail",
			Value: str(func(c *companyRef) string { return *c.Mail }),
			Rules: func(*T, Context) []ozzo.Rule { return emailRules() },
		},
	}
}

// companyRef points at the company fields of a document frame.
type companyRef struct {
	Name, Siret, Address, Contact, Phone, Mail *string
}

func emission(c Context) bool  { return c.Emission }
func transport(c Context) bool { return c.Transport }
func reception(c Context) bool { return c.Reception }
func operation(c Context) bool { return c.Operation }
