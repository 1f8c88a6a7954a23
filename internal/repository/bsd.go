package repository

import (
	"context"
	"encoding/json"
	"time"

	"trackdechets/internal/model"
)

// BsdRecord is the stored form of a document. The fields used for filtering are kept in
// columns; the full document is kept as a JSON payload.
type BsdRecord struct {
	ID               string
	Kind             model.Kind
	Status           model.Status
	IsDraft          bool
	IsDeleted        bool
	EmitterSiret     string
	TransporterSiret string
	DestinationSiret string
	// GroupedIn is the id of the document regrouping this one, if any.
	GroupedIn string
	Payload   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BsdFilter restricts a listing. Deleted documents are never listed.
type BsdFilter struct {
	Kind     model.Kind
	Statuses []model.Status
	// Sirets keeps documents where one of the sirets is an actor.
	Sirets []string
}

// StatusLog records one status change.
type StatusLog struct {
	ID       string
	BsdID    string
	Status   model.Status
	Stage    model.Stage
	UserID   string
	Author   string
	LoggedAt time.Time
}

// BsdRepository defines data access for documents using SQL queries only.
// No business logic here: strictly persistence operations.
type BsdRepository interface {
	// Create inserts a new document record.
	Create(ctx context.Context, rec *BsdRecord) error

	// Update overwrites the mutable columns and the payload. It returns sql.ErrNoRows if
	// the record does not exist.
	Update(ctx context.Context, rec *BsdRecord) error

	// FindByID returns a document by its ID, deleted or not. It returns sql.ErrNoRows if missing.
	FindByID(ctx context.Context, id string) (*BsdRecord, error)

	// FindByIDs returns the documents with the given ids. Missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]BsdRecord, error)

	// List returns a page of documents, most recently updated first, and the total count.
	List(ctx context.Context, f BsdFilter, q CursorQuery) (*PageResult[BsdRecord], error)

	// SoftDelete flags a document as deleted.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// SetGroupedIn marks the given documents as regrouped into groupID, or releases them
	// when groupID is empty.
	SetGroupedIn(ctx context.Context, ids []string, groupID string) error

	// FindGroupedIn returns the documents regrouped into groupID.
	FindGroupedIn(ctx context.Context, groupID string) ([]BsdRecord, error)

	// AppendStatusLog records a status change.
	AppendStatusLog(ctx context.Context, l StatusLog) error
}

// CursorQuery holds cursor pagination parameters: First items after the item with id After.
type CursorQuery struct {
	First int
	After string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items       []T
	Total       int
	HasNextPage bool
	EndCursor   string
}
