package model

import "time"

// Bsdasri is the tracking document of infectious medical waste (DASRI).
type Bsdasri struct {
	Meta

	EmitterCompanyName            string `json:"emitterCompanyName,omitempty"`
	EmitterCompanySiret           string `json:"emitterCompanySiret,omitempty"`
	EmitterCompanyAddress         string `json:"emitterCompanyAddress,omitempty"`
	EmitterCompanyContact         string `json:"emitterCompanyContact,omitempty"`
	EmitterCompanyPhone           string `json:"emitterCompanyPhone,omitempty"`
	EmitterCompanyMail            string `json:"emitterCompanyMail,omitempty"`
	EmitterWorkSiteName           string `json:"emitterWorkSiteName,omitempty"`
	EmitterWorkSiteAddress        string `json:"emitterWorkSiteAddress,omitempty"`
	EmitterWorkSiteCity           string `json:"emitterWorkSiteCity,omitempty"`
	EmitterWorkSitePostalCode     string `json:"emitterWorkSitePostalCode,omitempty"`
	EmitterWorkSiteInfos          string `json:"emitterWorkSiteInfos,omitempty"`
	EmitterOnBehalfOfEcoorganisme *bool  `json:"emitterOnBehalfOfEcoorganisme,omitempty"`

	WasteDetailsCode           string       `json:"wasteDetailsCode,omitempty"`
	WasteDetailsOnuCode        string       `json:"wasteDetailsOnuCode,omitempty"`
	EmitterWasteQuantity       *float64     `json:"emitterWasteQuantity,omitempty"`
	EmitterWasteQuantityType   QuantityType `json:"emitterWasteQuantityType,omitempty"`
	EmitterWastePackagingsInfo []Packaging  `json:"emitterWastePackagingsInfo,omitempty"`
	HandedOverToTransporterAt  *time.Time   `json:"handedOverToTransporterAt,omitempty"`

	TransporterCompanyName          string     `json:"transporterCompanyName,omitempty"`
	TransporterCompanySiret         string     `json:"transporterCompanySiret,omitempty"`
	TransporterCompanyAddress       string     `json:"transporterCompanyAddress,omitempty"`
	TransporterCompanyContact       string     `json:"transporterCompanyContact,omitempty"`
	TransporterCompanyPhone         string     `json:"transporterCompanyPhone,omitempty"`
	TransporterCompanyMail          string     `json:"transporterCompanyMail,omitempty"`
	TransporterReceipt              string     `json:"transporterReceipt,omitempty"`
	TransporterReceiptDepartment    string     `json:"transporterReceiptDepartment,omitempty"`
	TransporterReceiptValidityLimit *time.Time `json:"transporterReceiptValidityLimit,omitempty"`

	TransporterWasteAcceptationStatus AcceptationStatus `json:"transporterWasteAcceptationStatus,omitempty"`
	TransporterWasteRefusalReason     string            `json:"transporterWasteRefusalReason,omitempty"`
	TransporterWasteRefusedQuantity   *float64          `json:"transporterWasteRefusedQuantity,omitempty"`
	TransporterTakenOverAt            *time.Time        `json:"transporterTakenOverAt,omitempty"`
	TransporterWastePackagingsInfo    []Packaging       `json:"transporterWastePackagingsInfo,omitempty"`
	TransporterWasteQuantity          *float64          `json:"transporterWasteQuantity,omitempty"`
	TransporterWasteQuantityType      QuantityType      `json:"transporterWasteQuantityType,omitempty"`
	HandedOverToRecipientAt           *time.Time        `json:"handedOverToRecipientAt,omitempty"`

	RecipientCompanyName    string `json:"recipientCompanyName,omitempty"`
	RecipientCompanySiret   string `json:"recipientCompanySiret,omitempty"`
	RecipientCompanyAddress string `json:"recipientCompanyAddress,omitempty"`
	RecipientCompanyContact string `json:"recipientCompanyContact,omitempty"`
	RecipientCompanyPhone   string `json:"recipientCompanyPhone,omitempty"`
	RecipientCompanyMail    string `json:"recipientCompanyMail,omitempty"`

	RecipientWastePackagingsInfo    []Packaging       `json:"recipientWastePackagingsInfo,omitempty"`
	RecipientWasteAcceptationStatus AcceptationStatus `json:"recipientWasteAcceptationStatus,omitempty"`
	RecipientWasteRefusalReason     string            `json:"recipientWasteRefusalReason,omitempty"`
	RecipientWasteRefusedQuantity   *float64          `json:"recipientWasteRefusedQuantity,omitempty"`
	ReceivedAt                      *time.Time        `json:"receivedAt,omitempty"`

	ProcessingOperation    string     `json:"processingOperation,omitempty"`
	ProcessedAt            *time.Time `json:"processedAt,omitempty"`
	RecipientWasteQuantity *float64   `json:"recipientWasteQuantity,omitempty"`

	EmissionSignature  Signature `json:"emissionSignature"`
	TransportSignature Signature `json:"transportSignature"`
	ReceptionSignature Signature `json:"receptionSignature"`
	OperationSignature Signature `json:"operationSignature"`

	RegroupedBsdasris []string `json:"regroupedBsdasris,omitempty"`
}

var _ Bsd = (*Bsdasri)(nil)

func (d *Bsdasri) Kind() Kind { return KindBsdasri }

func (d *Bsdasri) Sirets() Sirets {
	return Sirets{
		Emitter:     d.EmitterCompanySiret,
		Transporter: d.TransporterCompanySiret,
		Destination: d.RecipientCompanySiret,
	}
}

func (d *Bsdasri) Stages() []Stage { return StageOrder }

func (d *Bsdasri) Signature(stage Stage) *Signature {
	switch stage {
	case StageEmission:
		return &d.EmissionSignature
	case StageTransport:
		return &d.TransportSignature
	case StageReception:
		return &d.ReceptionSignature
	case StageOperation:
		return &d.OperationSignature
	}
	return nil
}

func (d *Bsdasri) Refused(stage Stage) bool {
	switch stage {
	case StageTransport:
		return d.TransporterWasteAcceptationStatus == Refused
	case StageReception:
		return d.RecipientWasteAcceptationStatus == Refused
	}
	return false
}

func (d *Bsdasri) OperationCode() string { return d.ProcessingOperation }

func (d *Bsdasri) Grouped() []string { return d.RegroupedBsdasris }

// PrepareDuplicate keeps the actors and the waste description, and drops
// everything recorded while the waste was in transit.
func (d *Bsdasri) PrepareDuplicate() {
	d.Meta = Meta{}
	d.HandedOverToTransporterAt = nil
	d.TransporterWasteAcceptationStatus = ""
	d.TransporterWasteRefusalReason = ""
	d.TransporterWasteRefusedQuantity = nil
	d.TransporterTakenOverAt = nil
	d.TransporterWastePackagingsInfo = nil
	d.TransporterWasteQuantity = nil
	d.TransporterWasteQuantityType = ""
	d.HandedOverToRecipientAt = nil
	d.RecipientWastePackagingsInfo = nil
	d.RecipientWasteAcceptationStatus = ""
	d.RecipientWasteRefusalReason = ""
	d.RecipientWasteRefusedQuantity = nil
	d.ReceivedAt = nil
	d.ProcessingOperation = ""
	d.ProcessedAt = nil
	d.RecipientWasteQuantity = nil
	d.EmissionSignature = Signature{}
	d.TransportSignature = Signature{}
	d.ReceptionSignature = Signature{}
	d.OperationSignature = Signature{}
	d.RegroupedBsdasris = nil
}
