package validation

import (
	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"trackdechets/internal/codes"
	"trackdechets/internal/model"
)

type dasri = model.Bsdasri

// Bsdasri returns the validator of medical waste documents. lookup is used to check the
// capability of the recipient when a grouping operation code is given.
func Bsdasri(lookup CompanyLookup) *Validator[model.Bsdasri] {
	catalog := codes.Default()
	kind := string(model.KindBsdasri)

	return NewValidator(model.KindBsdasri,
		Schema[dasri]{Stage: model.StageEmission, Fields: dasriEmission(catalog, kind)},
		Schema[dasri]{Stage: model.StageTransport, Fields: dasriTransport(catalog, kind)},
		Schema[dasri]{Stage: model.StageReception, Fields: dasriReception(catalog, kind)},
		Schema[dasri]{Stage: model.StageOperation, Fields: dasriOperation(catalog, kind, lookup)},
	)
}

func dasriEmission(catalog codes.Catalog, kind string) []Field[dasri] {
	fields := companyFields("emitter", "Émetteur", emission, func(d *dasri) *companyRef {
		return &companyRef{&d.EmitterCompanyName, &d.EmitterCompanySiret, &d.EmitterCompanyAddress,
			&d.EmitterCompanyContact, &d.EmitterCompanyPhone, &d.EmitterCompanyMail}
	})
	return append(fields,
		Field[dasri]{Path: "emitterWorkSiteName", Value: func(d *dasri) any { return d.EmitterWorkSiteName }},
		Field[dasri]{Path: "emitterWorkSiteAddress", Value: func(d *dasri) any { return d.EmitterWorkSiteAddress }},
		Field[dasri]{Path: "emitterWorkSiteCity", Value: func(d *dasri) any { return d.EmitterWorkSiteCity }},
		Field[dasri]{Path: "emitterWorkSitePostalCode", Value: func(d *dasri) any { return d.EmitterWorkSitePostalCode }},
		Field[dasri]{Path: "emitterWorkSiteInfos", Value: func(d *dasri) any { return d.EmitterWorkSiteInfos }},
		Field[dasri]{Path: "emitterOnBehalfOfEcoorganisme", Value: func(d *dasri) any { return d.EmitterOnBehalfOfEcoorganisme }},
		Field[dasri]{
			Path:  "wasteDetailsCode",
			Value: func(d *dasri) any { return d.WasteDetailsCode },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Emission, "Le code déchet est obligatoire"),
					oneOf(catalog.WasteCodes(kind), "Ce code déchet n'est pas autorisé pour les DASRI"),
				}
			},
		},
		Field[dasri]{
			Path:  "wasteDetailsOnuCode",
			Value: func(d *dasri) any { return d.WasteDetailsOnuCode },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Emission, "La mention ADR est obligatoire.")}
			},
		},
		Field[dasri]{
			Path:  "emitterWasteQuantity",
			Value: func(d *dasri) any { return d.EmitterWasteQuantity },
			Rules: func(d *dasri, _ Context) []ozzo.Rule {
				return []ozzo.Rule{
					pairedWith(d.EmitterWasteQuantityType != "",
						"La quantité du déchet émis en kg est obligatoire si vous renseignez le type de quantité"),
					ozzo.Min(0.0).Error("La quantité émise doit être supérieure à 0"),
				}
			},
		},
		Field[dasri]{
			Path:  "emitterWasteQuantityType",
			Value: func(d *dasri) any { return string(d.EmitterWasteQuantityType) },
			Rules: func(d *dasri, _ Context) []ozzo.Rule {
				return []ozzo.Rule{
					pairedWith(isSet(d.EmitterWasteQuantity),
						"Le type de quantité (réelle ou estimée) émise doit être précisé si vous renseignez une quantité"),
					oneOf(quantityTypes(), "Le type de quantité doit être REAL ou ESTIMATED"),
				}
			},
		},
		List("emitterWastePackagingsInfo",
			func(d *dasri) []model.Packaging { return d.EmitterWastePackagingsInfo },
			func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Emission, "Le détail du conditionnement émis est obligatoire.")}
			},
			packagingFields(catalog, kind)...,
		),
		Field[dasri]{Path: "handedOverToTransporterAt", Value: func(d *dasri) any { return d.HandedOverToTransporterAt }},
	)
}

func dasriTransport(catalog codes.Catalog, kind string) []Field[dasri] {
	fields := companyFields("transporter", "Transporteur", transport, func(d *dasri) *companyRef {
		return &companyRef{&d.TransporterCompanyName, &d.TransporterCompanySiret, &d.TransporterCompanyAddress,
			&d.TransporterCompanyContact, &d.TransporterCompanyPhone, &d.TransporterCompanyMail}
	})
	return append(fields,
		Field[dasri]{
			Path:  "transporterReceipt",
			Value: func(d *dasri) any { return d.TransporterReceipt },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le numéro de récépissé est obligatoire")}
			},
		},
		Field[dasri]{
			Path:  "transporterReceiptDepartment",
			Value: func(d *dasri) any { return d.TransporterReceiptDepartment },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le département du transporteur est obligatoire")}
			},
		},
		Field[dasri]{
			Path:  "transporterReceiptValidityLimit",
			Value: func(d *dasri) any { return d.TransporterReceiptValidityLimit },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "La date de validité du récépissé est obligatoire")}
			},
		},
		Field[dasri]{
			Path:  "transporterWasteAcceptationStatus",
			Value: func(d *dasri) any { return string(d.TransporterWasteAcceptationStatus) },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Transport, msgAcceptation),
					oneOf(acceptationStatuses(), "Le statut d'acceptation n'est pas valide"),
				}
			},
		},
		Field[dasri]{
			Path:  "transporterWasteRefusedQuantity",
			Value: func(d *dasri) any { return d.TransporterWasteRefusedQuantity },
			Rules: func(d *dasri, _ Context) []ozzo.Rule {
				refused := d.TransporterWasteAcceptationStatus.IsRefusal()
				return []ozzo.Rule{
					ozzo.When(refused,
						ozzo.NotNil.Error("La quantité de déchets refusés doit être précisée."),
						ozzo.Min(0.0).Error("La quantité doit être supérieure à 0"),
					).Else(ozzo.Empty.Error("Le champ transporterWasteRefusedQuantity ne doit pas être renseigné si le déchet est accepté")),
				}
			},
		},
		Field[dasri]{
			Path:  "transporterWasteRefusalReason",
			Value: func(d *dasri) any { return d.TransporterWasteRefusalReason },
			Rules: func(d *dasri, _ Context) []ozzo.Rule {
				return refusalRules(d.TransporterWasteAcceptationStatus, msgRefusalReason,
					"Le champ transporterWasteRefusalReason ne doit pas être renseigné si le déchet est accepté")
			},
		},
		Field[dasri]{
			Path:  "transporterWasteQuantity",
			Value: func(d *dasri) any { return d.TransporterWasteQuantity },
			Rules: func(d *dasri, _ Context) []ozzo.Rule {
				return []ozzo.Rule{
					pairedWith(d.TransporterWasteQuantityType != "",
						"La quantité du déchet transporté en kg est obligatoire si vous renseignez le type de quantité"),
					ozzo.Min(0.0).Error("La quantité transportée doit être supérieure à 0"),
				}
			},
		},
		Field[dasri]{
			Path:  "transporterWasteQuantityType",
			Value: func(d *dasri) any { return string(d.TransporterWasteQuantityType) },
			Rules: func(d *dasri, _ Context) []ozzo.Rule {
				return []ozzo.Rule{
					pairedWith(isSet(d.TransporterWasteQuantity),
						"Le type de quantité (réelle ou estimée) transportée doit être précisé si vous renseignez une quantité"),
					oneOf(quantityTypes(), "Le type de quantité doit être REAL ou ESTIMATED"),
				}
			},
		},
		List("transporterWastePackagingsInfo",
			func(d *dasri) []model.Packaging { return d.TransporterWastePackagingsInfo },
			func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le détail du conditionnement transporté est obligatoire")}
			},
			packagingFields(catalog, kind)...,
		),
		Field[dasri]{
			Path:  "transporterTakenOverAt",
			Value: func(d *dasri) any { return d.TransporterTakenOverAt },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Transport, "Le date de prise en charge du déchet est obligatoire")}
			},
		},
		Field[dasri]{Path: "handedOverToRecipientAt", Value: func(d *dasri) any { return d.HandedOverToRecipientAt }},
	)
}

func dasriReception(catalog codes.Catalog, kind string) []Field[dasri] {
	fields := companyFields("recipient", "Destinataire", reception, func(d *dasri) *companyRef {
		return &companyRef{&d.RecipientCompanyName, &d.RecipientCompanySiret, &d.RecipientCompanyAddress,
			&d.RecipientCompanyContact, &d.RecipientCompanyPhone, &d.RecipientCompanyMail}
	})
	return append(fields,
		Field[dasri]{
			Path:  "recipientWasteAcceptationStatus",
			Value: func(d *dasri) any { return string(d.RecipientWasteAcceptationStatus) },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{
					requiredIf(c.Reception, msgAcceptation),
					oneOf(acceptationStatuses(), "Le statut d'acceptation n'est pas valide"),
				}
			},
		},
		Field[dasri]{
			Path:  "recipientWasteRefusedQuantity",
			Value: func(d *dasri) any { return d.RecipientWasteRefusedQuantity },
			Rules: func(*dasri, Context) []ozzo.Rule {
				return []ozzo.Rule{ozzo.Min(0.0).Error("La quantité doit être supérieure à 0")}
			},
		},
		Field[dasri]{
			Path:  "recipientWasteRefusalReason",
			Value: func(d *dasri) any { return d.RecipientWasteRefusalReason },
			Rules: func(d *dasri, _ Context) []ozzo.Rule {
				return refusalRules(d.RecipientWasteAcceptationStatus, msgRefusalReason,
					"Le champ recipientWasteRefusalReason ne doit pas être renseigné si le déchet est accepté")
			},
		},
		List("recipientWastePackagingsInfo",
			func(d *dasri) []model.Packaging { return d.RecipientWastePackagingsInfo },
			func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Reception, "Le détail du conditionnement reçu est obligatoire")}
			},
			packagingFields(catalog, kind)...,
		),
		Field[dasri]{Path: "receivedAt", Value: func(d *dasri) any { return d.ReceivedAt }},
	)
}

func dasriOperation(catalog codes.Catalog, kind string, lookup CompanyLookup) []Field[dasri] {
	return []Field[dasri]{
		{
			Path:  "recipientWasteQuantity",
			Value: func(d *dasri) any { return d.RecipientWasteQuantity },
			Rules: func(d *dasri, c Context) []ozzo.Rule {
				final := c.Operation && contains(catalog.ProcessingCodes(kind), d.ProcessingOperation)
				return []ozzo.Rule{
					requiredIf(final, "La quantité du déchet traité en kg est obligatoire si le code correspond à un traitement final"),
					ozzo.Min(0.0).Error("La quantité doit être supérieure à 0"),
				}
			},
		},
		{
			Path:  "processingOperation",
			Value: func(d *dasri) any { return d.ProcessingOperation },
			Rules: func(d *dasri, c Context) []ozzo.Rule {
				// A regrouping document cannot itself be sent to grouping.
				allowed := catalog.Operations(kind)
				if c.IsRegrouping {
					allowed = catalog.ProcessingCodes(kind)
				}
				return []ozzo.Rule{
					requiredIf(c.Operation, requiredMsg("Opération d’élimination / valorisation")),
					oneOf(allowed, msgInvalidOperation),
					collectorRule(lookup, model.KindBsdasri, d.RecipientCompanySiret),
				}
			},
		},
		{
			Path:  "processedAt",
			Value: func(d *dasri) any { return d.ProcessedAt },
			Rules: func(_ *dasri, c Context) []ozzo.Rule {
				return []ozzo.Rule{requiredIf(c.Operation, requiredMsg("Date de traitement"))}
			},
		},
	}
}

func packagingFields(catalog codes.Catalog, kind string) []Field[model.Packaging] {
	type pkg = model.Packaging
	return []Field[pkg]{
		{
			Path:  "type",
			Value: func(p *pkg) any { return p.Type },
			Rules: func(*pkg, Context) []ozzo.Rule {
				return []ozzo.Rule{
					ozzo.Required.Error("Le type de conditionnement doit être précisé."),
					oneOf(catalog.Packagings(kind), "Ce type de conditionnement n'existe pas."),
				}
			},
		},
		{
			Path:  "other",
			Value: func(p *pkg) any { return p.Other },
			Rules: func(p *pkg, _ Context) []ozzo.Rule {
				return []ozzo.Rule{
					ozzo.When(p.Type == "AUTRE",
						ozzo.Required.Error("La description doit être précisée pour le conditionnement 'AUTRE'."),
					).Else(ozzo.Empty.Error("La description ne peut être renseignée que lorsque le type de conditionnement est 'AUTRE'.")),
				}
			},
		},
		{
			Path:  "quantity",
			Value: func(p *pkg) any { return p.Quantity },
			Rules: func(*pkg, Context) []ozzo.Rule {
				return []ozzo.Rule{atLeast(1, "Le nombre de colis doit être supérieur à 0.")}
			},
		},
		{
			Path:  "volume",
			Value: func(p *pkg) any { return p.Volume },
			Rules: func(*pkg, Context) []ozzo.Rule {
				return []ozzo.Rule{atLeast(1, "Le volume de chaque type de contenant doit être supérieur à 0.")}
			},
		},
	}
}

func isSet(v *float64) bool { return v != nil && *v != 0 }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
