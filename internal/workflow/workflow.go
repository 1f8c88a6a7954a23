// Package workflow holds the signature state machine of each document kind: which stage a
// status waits for, and which status a signature leads to.
package workflow

import (
	"errors"
	"fmt"

	"trackdechets/internal/model"
)

// ErrInvalidTransition is returned when a signature does not match the document status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Definition is the state machine of one document kind.
type Definition struct {
	kind     model.Kind
	expected map[model.Status]model.Stage
	signed   map[model.Stage]model.Status
	// grouped is the status reached when the operation code is a grouping code.
	grouped model.Status
}

var definitions = map[model.Kind]*Definition{
	model.KindBsdasri: {
		kind: model.KindBsdasri,
		expected: map[model.Status]model.Stage{
			model.StatusInitial:          model.StageEmission,
			model.StatusSignedByProducer: model.StageTransport,
			model.StatusSent:             model.StageReception,
			model.StatusReceived:         model.StageOperation,
		},
		signed: map[model.Stage]model.Status{
			model.StageEmission:  model.StatusSignedByProducer,
			model.StageTransport: model.StatusSent,
			model.StageReception: model.StatusReceived,
			model.StageOperation: model.StatusProcessed,
		},
		grouped: model.StatusAwaitingGroup,
	},
	model.KindBsff: {
		kind: model.KindBsff,
		expected: map[model.Status]model.Stage{
			model.StatusInitial:         model.StageEmission,
			model.StatusSignedByEmitter: model.StageTransport,
			model.StatusSent:            model.StageReception,
			model.StatusReceived:        model.StageOperation,
		},
		signed: map[model.Stage]model.Status{
			model.StageEmission:  model.StatusSignedByEmitter,
			model.StageTransport: model.StatusSent,
			model.StageReception: model.StatusReceived,
			model.StageOperation: model.StatusProcessed,
		},
		grouped: model.StatusIntermediatelyProcessed,
	},
	model.KindBsvhu: {
		kind: model.KindBsvhu,
		expected: map[model.Status]model.Stage{
			model.StatusInitial:          model.StageEmission,
			model.StatusSignedByProducer: model.StageTransport,
			model.StatusSent:             model.StageOperation,
		},
		signed: map[model.Stage]model.Status{
			model.StageEmission:  model.StatusSignedByProducer,
			model.StageTransport: model.StatusSent,
			model.StageOperation: model.StatusProcessed,
		},
		grouped: model.StatusAwaitingGroup,
	},
}

// For returns the definition of kind.
func For(kind model.Kind) (*Definition, error) {
	d, ok := definitions[kind]
	if !ok {
		return nil, fmt.Errorf("no workflow for document kind %q", kind)
	}
	return d, nil
}

// Expected returns the stage a document in status waits for. Final statuses wait for nothing.
func (d *Definition) Expected(status model.Status) (model.Stage, bool) {
	st, ok := d.expected[status]
	return st, ok
}

// CanSign checks that stage is the next signature of a document in status.
func (d *Definition) CanSign(status model.Status, stage model.Stage) error {
	want, ok := d.expected[status]
	if !ok {
		return fmt.Errorf("%w: %s in status %s cannot be signed", ErrInvalidTransition, d.kind, status)
	}
	if want != stage {
		return fmt.Errorf("%w: %s in status %s expects a %s signature, got %s",
			ErrInvalidTransition, d.kind, status, want, stage)
	}
	return nil
}

// Next returns the status reached once stage is signed. A refusal ends the workflow;
// a grouping operation parks the document until it is regrouped.
func (d *Definition) Next(stage model.Stage, refused, grouping bool) (model.Status, error) {
	next, ok := d.signed[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s signature", ErrInvalidTransition, d.kind, stage)
	}
	switch {
	case refused:
		return model.StatusRefused, nil
	case stage == model.StageOperation && grouping:
		return d.grouped, nil
	}
	return next, nil
}

// GroupableStatus is the status a document must have to be regrouped.
func (d *Definition) GroupableStatus() model.Status { return d.grouped }

// IsFinal reports whether no further signature is expected.
func (d *Definition) IsFinal(status model.Status) bool {
	_, ok := d.expected[status]
	return !ok
}

// FrozenStages returns the latest signed stage of doc and every stage before it. Fields
// owned by these stages can no longer be edited.
func FrozenStages(doc model.Bsd) []model.Stage {
	stages := doc.Stages()
	last := -1
	for i, st := range stages {
		if doc.Signature(st).Signed() {
			last = i
		}
	}
	return append([]model.Stage(nil), stages[:last+1]...)
}

// IsFrozen reports whether the fields of stage are frozen on doc.
func IsFrozen(doc model.Bsd, stage model.Stage) bool {
	for _, st := range FrozenStages(doc) {
		if st == stage {
			return true
		}
	}
	return false
}
