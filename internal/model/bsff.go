package model

import "time"

// Bsff types.
const (
	BsffTracerFluide             = "TRACER_FLUIDE"
	BsffCollectePetitesQuantites = "COLLECTE_PETITES_QUANTITES"
	BsffGroupement               = "GROUPEMENT"
	BsffReconditionnement        = "RECONDITIONNEMENT"
	BsffReexpedition             = "REEXPEDITION"
)

// BsffTypes lists the valid Bsff types.
var BsffTypes = []string{
	BsffTracerFluide, BsffCollectePetitesQuantites, BsffGroupement, BsffReconditionnement, BsffReexpedition,
}

// TransportModes lists the valid transport modes.
var TransportModes = []string{"ROAD", "RAIL", "AIR", "RIVER", "SEA"}

// BsffPackaging is one container of fluorinated gas.
type BsffPackaging struct {
	Name   string  `json:"name"`
	Numero string  `json:"numero"`
	Kilos  float64 `json:"kilos"`
}

// FicheIntervention is an intervention on refrigeration equipment aggregated by a Bsff.
type FicheIntervention struct {
	Numero                string  `json:"numero"`
	Kilos                 float64 `json:"kilos"`
	PostalCode            string  `json:"postalCode"`
	DetenteurCompanyName  string  `json:"detenteurCompanyName,omitempty"`
	DetenteurCompanySiret string  `json:"detenteurCompanySiret,omitempty"`
	OperateurCompanySiret string  `json:"operateurCompanySiret,omitempty"`
}

// Bsff is the tracking document of fluorinated gases recovered from equipment.
type Bsff struct {
	Meta

	Type string `json:"type,omitempty"`

	EmitterCompanyName    string `json:"emitterCompanyName,omitempty"`
	EmitterCompanySiret   string `json:"emitterCompanySiret,omitempty"`
	EmitterCompanyAddress string `json:"emitterCompanyAddress,omitempty"`
	EmitterCompanyContact string `json:"emitterCompanyContact,omitempty"`
	EmitterCompanyPhone   string `json:"emitterCompanyPhone,omitempty"`
	EmitterCompanyMail    string `json:"emitterCompanyMail,omitempty"`

	Packagings         []BsffPackaging `json:"packagings,omitempty"`
	WasteCode          string          `json:"wasteCode,omitempty"`
	WasteNature        string          `json:"wasteNature,omitempty"`
	WasteAdr           string          `json:"wasteAdr,omitempty"`
	QuantityKilos      *float64        `json:"quantityKilos,omitempty"`
	QuantityIsEstimate bool            `json:"quantityIsEstimate,omitempty"`

	TransporterCompanyName            string     `json:"transporterCompanyName,omitempty"`
	TransporterCompanySiret           string     `json:"transporterCompanySiret,omitempty"`
	TransporterCompanyVatNumber       string     `json:"transporterCompanyVatNumber,omitempty"`
	TransporterCompanyAddress         string     `json:"transporterCompanyAddress,omitempty"`
	TransporterCompanyContact         string     `json:"transporterCompanyContact,omitempty"`
	TransporterCompanyPhone           string     `json:"transporterCompanyPhone,omitempty"`
	TransporterCompanyMail            string     `json:"transporterCompanyMail,omitempty"`
	TransporterRecepisseNumber        string     `json:"transporterRecepisseNumber,omitempty"`
	TransporterRecepisseDepartment    string     `json:"transporterRecepisseDepartment,omitempty"`
	TransporterRecepisseValidityLimit *time.Time `json:"transporterRecepisseValidityLimit,omitempty"`
	TransporterTransportMode          string     `json:"transporterTransportMode,omitempty"`

	DestinationCompanyName    string `json:"destinationCompanyName,omitempty"`
	DestinationCompanySiret   string `json:"destinationCompanySiret,omitempty"`
	DestinationCompanyAddress string `json:"destinationCompanyAddress,omitempty"`
	DestinationCompanyContact string `json:"destinationCompanyContact,omitempty"`
	DestinationCompanyPhone   string `json:"destinationCompanyPhone,omitempty"`
	DestinationCompanyMail    string `json:"destinationCompanyMail,omitempty"`
	DestinationCap            string `json:"destinationCap,omitempty"`

	DestinationPlannedOperationCode string `json:"destinationPlannedOperationCode,omitempty"`

	DestinationReceptionDate              *time.Time        `json:"destinationReceptionDate,omitempty"`
	DestinationReceptionKilos             *float64          `json:"destinationReceptionKilos,omitempty"`
	DestinationReceptionAcceptationStatus AcceptationStatus `json:"destinationReceptionAcceptationStatus,omitempty"`
	DestinationReceptionRefusal           string            `json:"destinationReceptionRefusal,omitempty"`

	DestinationOperationCode                          string `json:"destinationOperationCode,omitempty"`
	DestinationOperationNextDestinationCompanyName    string `json:"destinationOperationNextDestinationCompanyName,omitempty"`
	DestinationOperationNextDestinationCompanySiret   string `json:"destinationOperationNextDestinationCompanySiret,omitempty"`
	DestinationOperationNextDestinationCompanyAddress string `json:"destinationOperationNextDestinationCompanyAddress,omitempty"`
	DestinationOperationNextDestinationCompanyContact string `json:"destinationOperationNextDestinationCompanyContact,omitempty"`
	DestinationOperationNextDestinationCompanyPhone   string `json:"destinationOperationNextDestinationCompanyPhone,omitempty"`
	DestinationOperationNextDestinationCompanyMail    string `json:"destinationOperationNextDestinationCompanyMail,omitempty"`

	EmitterEmissionSignature      Signature `json:"emitterEmissionSignature"`
	TransporterTransportSignature Signature `json:"transporterTransportSignature"`
	DestinationReceptionSignature Signature `json:"destinationReceptionSignature"`
	DestinationOperationSignature Signature `json:"destinationOperationSignature"`

	FicheInterventions []FicheIntervention `json:"ficheInterventions,omitempty"`
	PreviousBsffs      []string            `json:"previousBsffs,omitempty"`
}

var _ Bsd = (*Bsff)(nil)

func (f *Bsff) Kind() Kind { return KindBsff }

func (f *Bsff) Sirets() Sirets {
	return Sirets{
		Emitter:     f.EmitterCompanySiret,
		Transporter: f.TransporterCompanySiret,
		Destination: f.DestinationCompanySiret,
	}
}

func (f *Bsff) Stages() []Stage { return StageOrder }

func (f *Bsff) Signature(stage Stage) *Signature {
	switch stage {
	case StageEmission:
		return &f.EmitterEmissionSignature
	case StageTransport:
		return &f.TransporterTransportSignature
	case StageReception:
		return &f.DestinationReceptionSignature
	case StageOperation:
		return &f.DestinationOperationSignature
	}
	return nil
}

func (f *Bsff) Refused(stage Stage) bool {
	return stage == StageReception && f.DestinationReceptionAcceptationStatus == Refused
}

func (f *Bsff) OperationCode() string { return f.DestinationOperationCode }

func (f *Bsff) Grouped() []string { return f.PreviousBsffs }

// PrepareDuplicate keeps the actors, the waste and the packagings.
func (f *Bsff) PrepareDuplicate() {
	f.Meta = Meta{}
	f.TransporterTransportMode = ""
	f.DestinationReceptionDate = nil
	f.DestinationReceptionKilos = nil
	f.DestinationReceptionAcceptationStatus = ""
	f.DestinationReceptionRefusal = ""
	f.DestinationOperationCode = ""
	f.DestinationOperationNextDestinationCompanyName = ""
	f.DestinationOperationNextDestinationCompanySiret = ""
	f.DestinationOperationNextDestinationCompanyAddress = ""
	f.DestinationOperationNextDestinationCompanyContact = ""
	f.DestinationOperationNextDestinationCompanyPhone = ""
	f.DestinationOperationNextDestinationCompanyMail = ""
	f.EmitterEmissionSignature = Signature{}
	f.TransporterTransportSignature = Signature{}
	f.DestinationReceptionSignature = Signature{}
	f.DestinationOperationSignature = Signature{}
	f.FicheInterventions = nil
	f.PreviousBsffs = nil
}
