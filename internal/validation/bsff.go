package validation

import (
	"errors"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"trackdechets/internal/codes"
	"trackdechets/internal/model"
)

type bsff = model.Bsff

// Bsff returns the validator of fluorinated-gas documents.
func Bsff(lookup CompanyLookup) *Validator[model.Bsff] {
	catalog := codes.Default()
	kind := string(model.KindBsff)

	return NewValidator(model.KindBsff,
		Schema[bsff]{Stage: model.StageEmission, Fields: bsffEmission(catalog, kind)},
		Schema[bsff]{Stage: model.StageTransport, Fields: bsffTransport()},
		Schema[bsff]{Stage: model.StageReception, Fields: bsffReception()},
		Schema[bsff]{Stage: model.StageOperation, Fields: bsffOperation(catalog, kind, lookup)},
	)
}

func bsffEmission(catalog codes.Catalog, kind string) []Field[bsff] {
	fields := companyFields("emitter", "Émetteur", emission, func(f *bsff) *companyRef {
		return &companyRef{&f.EmitterCompanyName, &f.EmitterCompanySiret, &f.EmitterCompanyAddress,
			&f.EmitterCompanyContact, &f.EmitterCompanyPhone, &f.EmitterCompanyMail}
	})
	return append(fields,
		Field[bsff]{
			Path:  "type",
			Value: func(f *bsff) any { return f.Type },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le type de BSFF est obligatoire"),
					oneOf(model.BsffTypes, "Ce type de BSFF n'existe pas"),
				}
			},
		},
		Field[bsff]{
			Path:  "wasteCode",
			Value: func(f *bsff) any { return f.WasteCode },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le code déchet est obligatoire"),
					oneOf(catalog.WasteCodes(kind), "Ce code déchet n'est pas autorisé pour les BSFF"),
				}
			},
		},
		Field[bsff]{Path: "wasteNature", Value: func(f *bsff) any { return f.WasteNature }},
		Field[bsff]{
			Path:  "wasteAdr",
			Value: func(f *bsff) any { return f.WasteAdr },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Emission, "La mention ADR est obligatoire.")}
			},
		},
		Field[bsff]{
			Path:  "quantityKilos",
			Value: func(f *bsff) any { return f.QuantityKilos },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le poids total du déchet est obligatoire"),
					ozzo.Min(0.0).Error("Le poids doit être supérieur à 0"),
				}
			},
		},
		Field[bsff]{Path: "quantityIsEstimate", Value: func(f *bsff) any { return f.QuantityIsEstimate }},
		List("packagings",
			func(f *bsff) []model.BsffPackaging { return f.Packagings },
			func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Emission, "Le conditionnement est obligatoire")}
			},
			bsffPackagingFields()...,
		),
		Field[bsff]{
			Path:  "destinationPlannedOperationCode",
			Value: func(f *bsff) any { return f.DestinationPlannedOperationCode },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le code de l'opération de traitement prévue est obligatoire"),
					oneOf(catalog.Operations(kind), msgInvalidOperation),
				}
			},
		},
		List("ficheInterventions",
			func(f *bsff) []model.FicheIntervention { return f.FicheInterventions },
			nil,
			ficheInterventionFields()...,
		),
	)
}

func bsffTransport() []Field[bsff] {
	fields := companyFields("transporter", "Transporteur", transport, func(f *bsff) *companyRef {
		return &companyRef{&f.TransporterCompanyName, &f.TransporterCompanySiret, &f.TransporterCompanyAddress,
			&f.TransporterCompanyContact, &f.TransporterCompanyPhone, &f.TransporterCompanyMail}
	})
	// A foreign transporter is identified by its VAT number instead of a siret.
	fields[1].Rules = func(f *bsff, c Context) []ozzo.Rule {
		return siretRules(c.Transport && f.TransporterCompanyVatNumber == "", "Transporteur")
	}
	return append(fields,
		Field[bsff]{Path: "transporterCompanyVatNumber", Value: func(f *bsff) any { return f.TransporterCompanyVatNumber }},
		Field[bsff]{
			Path:  "transporterRecepisseNumber",
			Value: func(f *bsff) any { return f.TransporterRecepisseNumber },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le numéro de récépissé est obligatoire")}
			},
		},
		Field[bsff]{
			Path:  "transporterRecepisseDepartment",
			Value: func(f *bsff) any { return f.TransporterRecepisseDepartment },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le département du transporteur est obligatoire")}
			},
		},
		Field[bsff]{
			Path:  "transporterRecepisseValidityLimit",
			Value: func(f *bsff) any { return f.TransporterRecepisseValidityLimit },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "La date de validité du récépissé est obligatoire")}
			},
		},
		Field[bsff]{
			Path:  "transporterTransportMode",
			Value: func(f *bsff) any { return f.TransporterTransportMode },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Transport, "Le mode de transport est obligatoire"),
					oneOf(model.TransportModes, "Ce mode de transport n'existe pas"),
				}
			},
		},
	)
}

func bsffReception() []Field[bsff] {
	fields := companyFields("destination", "Destination", reception, func(f *bsff) *companyRef {
		return &companyRef{&f.DestinationCompanyName, &f.DestinationCompanySiret, &f.DestinationCompanyAddress,
			&f.DestinationCompanyContact, &f.DestinationCompanyPhone, &f.DestinationCompanyMail}
	})
	return append(fields,
		Field[bsff]{Path: "destinationCap", Value: func(f *bsff) any { return f.DestinationCap }},
		Field[bsff]{
			Path:  "destinationReceptionDate",
			Value: func(f *bsff) any { return f.DestinationReceptionDate },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Reception, "La date de réception est obligatoire")}
			},
		},
		Field[bsff]{
			Path:  "destinationReceptionKilos",
			Value: func(f *bsff) any { return f.DestinationReceptionKilos },
			Rules: func(f *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Reception && f.DestinationReceptionAcceptationStatus != model.Refused,
						"Le poids reçu est obligatoire"),
					ozzo.Min(0.0).Error("Le poids doit être supérieur à 0"),
				}
			},
		},
		Field[bsff]{
			Path:  "destinationReceptionAcceptationStatus",
			Value: func(f *bsff) any { return string(f.DestinationReceptionAcceptationStatus) },
			Rules: func(_ *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Reception, msgAcceptation),
					oneOf(acceptationStatuses(), "Le statut d'acceptation n'est pas valide"),
				}
			},
		},
		Field[bsff]{
			Path:  "destinationReceptionRefusal",
			Value: func(f *bsff) any { return f.DestinationReceptionRefusal },
			Rules: func(f *bsff, _ Context) []ozzo.Rule {
				return refusalRules(f.DestinationReceptionAcceptationStatus, msgRefusalReason,
					"Le motif de refus ne doit pas être renseigné si le déchet est accepté")
			},
		},
	)
}

func bsffOperation(catalog codes.Catalog, kind string, lookup CompanyLookup) []Field[bsff] {
	return []Field[bsff]{
		{
			Path:  "destinationOperationCode",
			Value: func(f *bsff) any { return f.DestinationOperationCode },
			Rules: func(f *bsff, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Operation, "Le code de l'opération de traitement est obligatoire"),
					oneOf(catalog.Operations(kind), msgInvalidOperation),
					collectorRule(lookup, model.KindBsff, f.DestinationCompanySiret),
				}
			},
		},
		{Path: "destinationOperationNextDestinationCompanyName", Value: func(f *bsff) any { return f.DestinationOperationNextDestinationCompanyName }},
		{
			Path:  "destinationOperationNextDestinationCompanySiret",
			Value: func(f *bsff) any { return f.DestinationOperationNextDestinationCompanySiret },
			Rules: func(*bsff, Context) []ozzo.Rule { return siretRules(false, "Destination ultérieure") },
		},
		{Path: "destinationOperationNextDestinationCompanyAddress", Value: func(f *bsff) any { return f.DestinationOperationNextDestinationCompanyAddress }},
		{Path: "destinationOperationNextDestinationCompanyContact", Value: func(f *bsff) any { return f.DestinationOperationNextDestinationCompanyContact }},
		{Path: "destinationOperationNextDestinationCompanyPhone", Value: func(f *bsff) any { return f.DestinationOperationNextDestinationCompanyPhone }},
		{
			Path:  "destinationOperationNextDestinationCompanyMail",
			Value: func(f *bsff) any { return f.DestinationOperationNextDestinationCompanyMail },
			Rules: func(*bsff, Context) []ozzo.Rule { return emailRules() },
		},
	}
}

func bsffPackagingFields() []Field[model.BsffPackaging] {
	type pkg = model.BsffPackaging
	return []Field[pkg]{
		{
			Path:  "name",
			Value: func(p *pkg) any { return p.Name },
			Rules: func(*pkg, Context) []ozzo.Rule {
				return []ozzo.Rule{ozzo.Required.Error("La dénomination du contenant est obligatoire")}
			},
		},
		{
			Path:  "numero",
			Value: func(p *pkg) any { return p.Numero },
			Rules: func(*pkg, Context) []ozzo.Rule {
				return []ozzo.Rule{ozzo.Required.Error("Le numéro du contenant est obligatoire")}
			},
		},
		{
			Path:  "kilos",
			Value: func(p *pkg) any { return p.Kilos },
			Rules: func(*pkg, Context) []ozzo.Rule {
				return []ozzo.Rule{positive("Le poids du contenant doit être supérieur à 0")}
			},
		},
	}
}

func ficheInterventionFields() []Field[model.FicheIntervention] {
	type fi = model.FicheIntervention
	return []Field[fi]{
		{
			Path:  "numero",
			Value: func(f *fi) any { return f.Numero },
			Rules: func(*fi, Context) []ozzo.Rule {
				return []ozzo.Rule{ozzo.Required.Error("Le numéro de la fiche d'intervention est obligatoire")}
			},
		},
		{
			Path:  "kilos",
			Value: func(f *fi) any { return f.Kilos },
			Rules: func(*fi, Context) []ozzo.Rule {
				return []ozzo.Rule{positive("Le poids doit être supérieur à 0")}
			},
		},
		{
			Path:  "postalCode",
			Value: func(f *fi) any { return f.PostalCode },
			Rules: func(*fi, Context) []ozzo.Rule {
				return []ozzo.Rule{
					ozzo.Required.Error("Le code postal du lieu de l'intervention est obligatoire"),
					ozzo.Length(5, 5).Error("Le code postal doit faire 5 caractères"),
					is.Digit.Error("Le code postal doit faire 5 caractères"),
				}
			},
		},
		{
			Path:  "detenteurCompanySiret",
			Value: func(f *fi) any { return f.DetenteurCompanySiret },
			Rules: func(*fi, Context) []ozzo.Rule { return siretRules(false, "Détenteur") },
		},
	}
}

// positive rejects zero and negative weights, which have no "absent" state.
func positive(msg string) ozzo.Rule {
	return ozzo.By(func(value any) error {
		if v, ok := value.(float64); ok && v <= 0 {
			return errors.New(msg)
		}
		return nil
	})
}
