package validation

import (
	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"trackdechets/internal/codes"
	"trackdechets/internal/model"
)

type bsvhu = model.Bsvhu

var (
	vhuDestinationTypes    = []string{model.DestinationBroyeur, model.DestinationDemolisseur}
	vhuIdentificationTypes = []string{"NUMERO_ORDRE_REGISTRE_POLICE", "NUMERO_ORDRE_LOTS_SORTANTS"}
)

// Bsvhu returns the validator of end-of-life vehicle documents. The destination signs
// reception and operation at once, so there is no reception schema.
func Bsvhu(lookup CompanyLookup) *Validator[model.Bsvhu] {
	catalog := codes.Default()
	kind := string(model.KindBsvhu)

	return NewValidator(model.KindBsvhu,
		Schema[bsvhu]{Stage: model.StageEmission, Fields: bsvhuEmission(catalog, kind)},
		Schema[bsvhu]{Stage: model.StageTransport, Fields: bsvhuTransport()},
		Schema[bsvhu]{Stage: model.StageOperation, Fields: bsvhuOperation(catalog, kind, lookup)},
	)
}

func bsvhuEmission(catalog codes.Catalog, kind string) []Field[bsvhu] {
	fields := []Field[bsvhu]{{
		Path:  "emitterAgrementNumber",
		Value: func(v *bsvhu) any { return v.EmitterAgrementNumber },
		Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
			return []ozzo.Rule{requiredIf(c.Emission, "Émetteur: le numéro d'agrément est obligatoire")}
		},
	}}
	fields = append(fields, companyFields("emitter", "Émetteur", emission, func(v *bsvhu) *companyRef {
		return &companyRef{&v.EmitterCompanyName, &v.EmitterCompanySiret, &v.EmitterCompanyAddress,
			&v.EmitterCompanyContact, &v.EmitterCompanyPhone, &v.EmitterCompanyMail}
	})...)
	fields = append(fields,
		Field[bsvhu]{
			Path:  "wasteCode",
			Value: func(v *bsvhu) any { return v.WasteCode },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le code déchet est obligatoire"),
					oneOf(catalog.WasteCodes(kind), "Ce code déchet n'est pas autorisé pour les VHU"),
				}
			},
		},
		Field[bsvhu]{
			Path:  "packaging",
			Value: func(v *bsvhu) any { return v.Packaging },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le type de conditionnement est obligatoire"),
					oneOf(catalog.Packagings(kind), "Le conditionnement doit être UNITE ou LOT"),
				}
			},
		},
		Field[bsvhu]{
			Path:  "identificationNumbers",
			Value: func(v *bsvhu) any { return v.IdentificationNumbers },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Emission, "Les numéros d'identification sont obligatoires")}
			},
		},
		Field[bsvhu]{
			Path:  "identificationType",
			Value: func(v *bsvhu) any { return v.IdentificationType },
			Rules: func(v *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission && v.Packaging == "UNITE", "Le type d'identification est obligatoire"),
					oneOf(vhuIdentificationTypes, "Ce type d'identification n'existe pas"),
				}
			},
		},
		Field[bsvhu]{
			Path:  "quantityNumber",
			Value: func(v *bsvhu) any { return v.QuantityNumber },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le nombre de VHU est obligatoire"),
					ozzo.Min(1).Error("Le nombre de VHU doit être supérieur à 0"),
				}
			},
		},
		Field[bsvhu]{
			Path:  "quantityTons",
			Value: func(v *bsvhu) any { return v.QuantityTons },
			Rules: func(*bsvhu, Context) []ozzo.Rule {
				return []ozzo.Rule{ozzo.Min(0.0).Error("Le poids doit être supérieur à 0")}
			},
		},
		Field[bsvhu]{
			Path:  "destinationType",
			Value: func(v *bsvhu) any { return v.DestinationType },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le type de destination est obligatoire"),
					oneOf(vhuDestinationTypes, "Le type de destination doit être BROYEUR ou DEMOLISSEUR"),
				}
			},
		},
		Field[bsvhu]{
			Path:  "destinationPlannedOperationCode",
			Value: func(v *bsvhu) any { return v.DestinationPlannedOperationCode },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "L'opération prévue est obligatoire"),
					oneOf(catalog.Operations(kind), msgInvalidOperation),
				}
			},
		},
		Field[bsvhu]{
			Path:  "destinationAgrementNumber",
			Value: func(v *bsvhu) any { return v.DestinationAgrementNumber },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Emission, "Destinataire: le numéro d'agrément est obligatoire")}
			},
		},
	)
	return append(fields, companyFields("destination", "Destinataire", emission, func(v *bsvhu) *companyRef {
		return &companyRef{&v.DestinationCompanyName, &v.DestinationCompanySiret, &v.DestinationCompanyAddress,
			&v.DestinationCompanyContact, &v.DestinationCompanyPhone, &v.DestinationCompanyMail}
	})...)
}

func bsvhuTransport() []Field[bsvhu] {
	fields := companyFields("transporter", "Transporteur", transport, func(v *bsvhu) *companyRef {
		return &companyRef{&v.TransporterCompanyName, &v.TransporterCompanySiret, &v.TransporterCompanyAddress,
			&v.TransporterCompanyContact, &v.TransporterCompanyPhone, &v.TransporterCompanyMail}
	})
	return append(fields,
		Field[bsvhu]{
			Path:  "transporterRecepisseNumber",
			Value: func(v *bsvhu) any { return v.TransporterRecepisseNumber },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le numéro de récépissé est obligatoire")}
			},
		},
		Field[bsvhu]{
			Path:  "transporterRecepisseDepartment",
			Value: func(v *bsvhu) any { return v.TransporterRecepisseDepartment },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le département du transporteur est obligatoire")}
			},
		},
		Field[bsvhu]{
			Path:  "transporterRecepisseValidityLimit",
			Value: func(v *bsvhu) any { return v.TransporterRecepisseValidityLimit },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "La date de validité du récépissé est obligatoire")}
			},
		},
		Field[bsvhu]{
			Path:  "transporterTransportTakenOverAt",
			Value: func(v *bsvhu) any { return v.TransporterTransportTakenOverAt },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "La date de prise en charge est obligatoire")}
			},
		},
	)
}

func bsvhuOperation(catalog codes.Catalog, kind string, lookup CompanyLookup) []Field[bsvhu] {
	// A refused load is never processed: the operation fields stay optional.
	processed := func(v *bsvhu, c Context) bool {
		return c.Operation && v.DestinationReceptionAcceptationStatus != model.Refused
	}
	return []Field[bsvhu]{
		{
			Path:  "destinationReceptionAcceptationStatus",
			Value: func(v *bsvhu) any { return string(v.DestinationReceptionAcceptationStatus) },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Operation, msgAcceptation),
					oneOf(acceptationStatuses(), "Le statut d'acceptation n'est pas valide"),
				}
			},
		},
		{
			Path:  "destinationReceptionRefusalReason",
			Value: func(v *bsvhu) any { return v.DestinationReceptionRefusalReason },
			Rules: func(v *bsvhu, _ Context) []ozzo.Rule {
				return refusalRules(v.DestinationReceptionAcceptationStatus, msgRefusalReason,
					"Le motif de refus ne doit pas être renseigné si le déchet est accepté")
			},
		},
		{
			Path:  "destinationReceptionQuantityNumber",
			Value: func(v *bsvhu) any { return v.DestinationReceptionQuantityNumber },
			Rules: func(*bsvhu, Context) []ozzo.Rule {
				return []ozzo.Rule{ozzo.Min(0).Error("Le nombre de VHU reçus doit être positif")}
			},
		},
		{
			Path:  "destinationReceptionQuantityTons",
			Value: func(v *bsvhu) any { return v.DestinationReceptionQuantityTons },
			Rules: func(*bsvhu, Context) []ozzo.Rule {
				return []ozzo.Rule{ozzo.Min(0.0).Error("Le poids doit être supérieur à 0")}
			},
		},
		{
			Path:  "destinationReceptionDate",
			Value: func(v *bsvhu) any { return v.DestinationReceptionDate },
			Rules: func(_ *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Operation, "La date de réception est obligatoire")}
			},
		},
		{
			Path:  "destinationOperationCode",
			Value: func(v *bsvhu) any { return v.DestinationOperationCode },
			Rules: func(v *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(processed(v, c), "L'opération de traitement est obligatoire"),
					oneOf(catalog.Operations(kind), msgInvalidOperation),
					collectorRule(lookup, model.KindBsvhu, v.DestinationCompanySiret),
				}
			},
		},
		{
			Path:  "destinationOperationDate",
			Value: func(v *bsvhu) any { return v.DestinationOperationDate },
			Rules: func(v *bsvhu, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(processed(v, c), "La date de l'opération est obligatoire")}
			},
		},
	}
}
