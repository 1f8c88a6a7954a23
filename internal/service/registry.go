package service

import (
	"fmt"

	"trackdechets/internal/model"
)

// Registry gives access to the service of each document kind.
type Registry map[model.Kind]BsdService

// NewRegistry builds the services of every supported kind.
func NewRegistry(d Deps) Registry {
	return Registry{
		model.KindBsdasri: NewBsdasriService(d),
		model.KindBsff:    NewBsffService(d),
		model.KindBsvhu:   NewBsvhuService(d),
	}
}

// For returns the service of kind.
func (r Registry) For(kind model.Kind) (BsdService, error) {
	s, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("%w: type de bordereau inconnu %q", ErrInvalidInput, kind)
	}
	return s, nil
}
