package model

import "time"

// Bsvhu destination types.
const (
	DestinationBroyeur     = "BROYEUR"
	DestinationDemolisseur = "DEMOLISSEUR"
)

// Bsvhu is the tracking document of end-of-life vehicles. It has no separate
// reception signature: the destination records reception and operation together.
type Bsvhu struct {
	Meta

	EmitterAgrementNumber string `json:"emitterAgrementNumber,omitempty"`
	EmitterCompanyName    string `json:"emitterCompanyName,omitempty"`
	EmitterCompanySiret   string `json:"emitterCompanySiret,omitempty"`
	EmitterCompanyAddress string `json:"emitterCompanyAddress,omitempty"`
	EmitterCompanyContact string `json:"emitterCompanyContact,omitempty"`
	EmitterCompanyPhone   string `json:"emitterCompanyPhone,omitempty"`
	EmitterCompanyMail    string `json:"emitterCompanyMail,omitempty"`

	WasteCode             string   `json:"wasteCode,omitempty"`
	Packaging             string   `json:"packaging,omitempty"`
	IdentificationNumbers []string `json:"identificationNumbers,omitempty"`
	IdentificationType    string   `json:"identificationType,omitempty"`
	QuantityNumber        *int     `json:"quantityNumber,omitempty"`
	QuantityTons          *float64 `json:"quantityTons,omitempty"`

	DestinationType                 string `json:"destinationType,omitempty"`
	DestinationPlannedOperationCode string `json:"destinationPlannedOperationCode,omitempty"`
	DestinationAgrementNumber       string `json:"destinationAgrementNumber,omitempty"`
	DestinationCompanyName          string `json:"destinationCompanyName,omitempty"`
	DestinationCompanySiret         string `json:"destinationCompanySiret,omitempty"`
	DestinationCompanyAddress       string `json:"destinationCompanyAddress,omitempty"`
	DestinationCompanyContact       string `json:"destinationCompanyContact,omitempty"`
	DestinationCompanyPhone         string `json:"destinationCompanyPhone,omitempty"`
	DestinationCompanyMail          string `json:"destinationCompanyMail,omitempty"`

	TransporterCompanyName            string     `json:"transporterCompanyName,omitempty"`
	TransporterCompanySiret           string     `json:"transporterCompanySiret,omitempty"`
	TransporterCompanyAddress         string     `json:"transporterCompanyAddress,omitempty"`
	TransporterCompanyContact         string     `json:"transporterCompanyContact,omitempty"`
	TransporterCompanyPhone           string     `json:"transporterCompanyPhone,omitempty"`
	TransporterCompanyMail            string     `json:"transporterCompanyMail,omitempty"`
	TransporterRecepisseNumber        string     `json:"transporterRecepisseNumber,omitempty"`
	TransporterRecepisseDepartment    string     `json:"transporterRecepisseDepartment,omitempty"`
	TransporterRecepisseValidityLimit *time.Time `json:"transporterRecepisseValidityLimit,omitempty"`
	TransporterTransportTakenOverAt   *time.Time `json:"transporterTransportTakenOverAt,omitempty"`

	DestinationReceptionAcceptationStatus AcceptationStatus `json:"destinationReceptionAcceptationStatus,omitempty"`
	DestinationReceptionRefusalReason     string            `json:"destinationReceptionRefusalReason,omitempty"`
	DestinationReceptionQuantityNumber    *int              `json:"destinationReceptionQuantityNumber,omitempty"`
	DestinationReceptionQuantityTons      *float64          `json:"destinationReceptionQuantityTons,omitempty"`
	DestinationReceptionDate              *time.Time        `json:"destinationReceptionDate,omitempty"`
	DestinationOperationCode              string            `json:"destinationOperationCode,omitempty"`
	DestinationOperationDate              *time.Time        `json:"destinationOperationDate,omitempty"`

	EmitterEmissionSignature      Signature `json:"emitterEmissionSignature"`
	TransporterTransportSignature Signature `json:"transporterTransportSignature"`
	DestinationOperationSignature Signature `json:"destinationOperationSignature"`
}

var _ Bsd = (*Bsvhu)(nil)

var bsvhuStages = []Stage{StageEmission, StageTransport, StageOperation}

func (v *Bsvhu) Kind() Kind { return KindBsvhu }

func (v *Bsvhu) Sirets() Sirets {
	return Sirets{
		Emitter:     v.EmitterCompanySiret,
		Transporter: v.TransporterCompanySiret,
		Destination: v.DestinationCompanySiret,
	}
}

func (v *Bsvhu) Stages() []Stage { return bsvhuStages }

func (v *Bsvhu) Signature(stage Stage) *Signature {
	switch stage {
	case StageEmission:
		return &v.EmitterEmissionSignature
	case StageTransport:
		return &v.TransporterTransportSignature
	case StageOperation:
		return &v.DestinationOperationSignature
	}
	return nil
}

func (v *Bsvhu) Refused(stage Stage) bool {
	return stage == StageOperation && v.DestinationReceptionAcceptationStatus == Refused
}

func (v *Bsvhu) OperationCode() string { return v.DestinationOperationCode }

func (v *Bsvhu) Grouped() []string { return nil }

func (v *Bsvhu) PrepareDuplicate() {
	v.Meta = Meta{}
	v.TransporterTransportTakenOverAt = nil
	v.DestinationReceptionAcceptationStatus = ""
	v.DestinationReceptionRefusalReason = ""
	v.DestinationReceptionQuantityNumber = nil
	v.DestinationReceptionQuantityTons = nil
	v.DestinationReceptionDate = nil
	v.DestinationOperationCode = ""
	v.DestinationOperationDate = nil
	v.EmitterEmissionSignature = Signature{}
	v.TransporterTransportSignature = Signature{}
	v.DestinationOperationSignature = Signature{}
}
