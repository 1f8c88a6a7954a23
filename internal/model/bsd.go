package model

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies a waste-document type.
type Kind string

const (
	KindBsdasri Kind = "BSDASRI"
	KindBsff    Kind = "BSFF"
	KindBsvhu   Kind = "BSVHU"
)

// Kinds lists every supported document kind.
var Kinds = []Kind{KindBsdasri, KindBsff, KindBsvhu}

func (k Kind) String() string { return string(k) }

// Prefix is used to build readable document ids (DASRI-20260101-XXXXXXXXX).
func (k Kind) Prefix() string {
	switch k {
	case KindBsdasri:
		return "DASRI"
	case KindBsff:
		return "FF"
	case KindBsvhu:
		return "VHU"
	}
	return "BSD"
}

// ParseKind accepts a kind in any case, singular or plural ("bsdasris", "BSFF").
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToUpper(s), "S"))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// Status is the lifecycle state of a document. It only moves forward.
type Status string

const (
	StatusInitial                 Status = "INITIAL"
	StatusSignedByProducer        Status = "SIGNED_BY_PRODUCER"
	StatusSignedByEmitter         Status = "SIGNED_BY_EMITTER"
	StatusSent                    Status = "SENT"
	StatusReceived                Status = "RECEIVED"
	StatusProcessed               Status = "PROCESSED"
	StatusAwaitingGroup           Status = "AWAITING_GROUP"
	StatusIntermediatelyProcessed Status = "INTERMEDIATELY_PROCESSED"
	StatusRefused                 Status = "REFUSED"
)

// Stage is a signature checkpoint of the custody chain.
type Stage string

const (
	StageEmission  Stage = "EMISSION"
	StageTransport Stage = "TRANSPORT"
	StageReception Stage = "RECEPTION"
	StageOperation Stage = "OPERATION"
)

// StageOrder is the strict order in which signatures are collected.
var StageOrder = []Stage{StageEmission, StageTransport, StageReception, StageOperation}

// Index returns the position of s in StageOrder, or -1.
func (s Stage) Index() int {
	for i, st := range StageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStage accepts a stage name in any case.
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToUpper(s))
	if st.Index() < 0 {
		return "", fmt.Errorf("unknown signature type %q", s)
	}
	return st, nil
}

// AcceptationStatus is the decision of a transporter or destination on a waste load.
type AcceptationStatus string

const (
	Accepted         AcceptationStatus = "ACCEPTED"
	Refused          AcceptationStatus = "REFUSED"
	PartiallyRefused AcceptationStatus = "PARTIALLY_REFUSED"
)

// AcceptationStatuses lists the valid acceptation statuses.
var AcceptationStatuses = []AcceptationStatus{Accepted, Refused, PartiallyRefused}

// IsRefusal reports whether a refusal reason must be given.
func (a AcceptationStatus) IsRefusal() bool {
	return a == Refused || a == PartiallyRefused
}

// QuantityType tells whether a quantity was weighed or estimated.
type QuantityType string

const (
	QuantityReal      QuantityType = "REAL"
	QuantityEstimated QuantityType = "ESTIMATED"
)

// QuantityTypes lists the valid quantity types.
var QuantityTypes = []QuantityType{QuantityReal, QuantityEstimated}

// Meta carries the fields every document shares. They are managed by the service
// and never taken from user input.
type Meta struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	IsDraft   bool      `json:"isDraft"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Header gives access to the shared fields of any document embedding Meta.
func (m *Meta) Header() *Meta { return m }

// Signature marks a stage as signed.
type Signature struct {
	Author string     `json:"author,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

// Signed reports whether the signature has been given.
func (s *Signature) Signed() bool { return s != nil && s.Date != nil }

// Sirets are the company identifiers of the actors of a document.
type Sirets struct {
	Emitter     string
	Transporter string
	Destination string
}

// All returns the non-empty sirets.
func (s Sirets) All() []string {
	out := make([]string, 0, 3)
	for _, v := range []string{s.Emitter, s.Transporter, s.Destination} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Actor returns the siret of the company that signs stage.
func (s Sirets) Actor(stage Stage) string {
	switch stage {
	case StageEmission:
		return s.Emitter
	case StageTransport:
		return s.Transporter
	case StageReception, StageOperation:
		return s.Destination
	}
	return ""
}

// Bsd is implemented by every waste-tracking document.
type Bsd interface {
	Kind() Kind
	Header() *Meta
	Sirets() Sirets
	// Stages returns the signature stages of the document kind, in order.
	Stages() []Stage
	// Signature returns the signature slot of stage, or nil when the kind has no such stage.
	Signature(stage Stage) *Signature
	// Refused reports whether the acceptation given at stage is a total refusal.
	Refused(stage Stage) bool
	OperationCode() string
	// Grouped returns the ids of the documents this one regroups.
	Grouped() []string
	// PrepareDuplicate clears everything that must not be copied to a duplicate.
	PrepareDuplicate()
}

// Packaging describes one packaging line of a medical waste load.
type Packaging struct {
	Type     string `json:"type"`
	Other    string `json:"other,omitempty"`
	Quantity int    `json:"quantity"`
	Volume   int    `json:"volume"`
}
