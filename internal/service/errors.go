package service

import (
	"errors"
	"fmt"

	"trackdechets/internal/model"
	"trackdechets/internal/validation"
	"trackdechets/internal/workflow"
)

var (
	ErrUnauthenticated = errors.New("vous n'êtes pas connecté")
	ErrForbidden       = errors.New("vous n'êtes pas autorisé à effectuer cette action")
	ErrNotFound        = errors.New("bordereau introuvable")
	ErrInvalidInput    = errors.New("données invalides")
	ErrPDFUnavailable  = errors.New("la génération de PDF n'est pas configurée")
	// ErrInvalidTransition is returned when an operation does not fit the document status.
	ErrInvalidTransition = workflow.ErrInvalidTransition
)

// Machine-readable error codes shared by the REST and GraphQL surfaces.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// ValidationError reports the field violations blocking an operation.
type ValidationError struct {
	// Stage is the signature that was requested, empty for drafts.
	Stage  model.Stage
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Errors)
	}
	return fmt.Sprintf("%s: signature %s impossible: %s", ErrInvalidInput, e.Stage, e.Errors)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Code maps err to its machine-readable code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidTransition):
		return CodeBadUserInput
	}
	return CodeInternal
}
