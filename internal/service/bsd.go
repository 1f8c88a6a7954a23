package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trackdechets/internal/codes"
	"trackdechets/internal/mailer"
	"trackdechets/internal/metrics"
	"trackdechets/internal/model"
	"trackdechets/internal/pdf"
	"trackdechets/internal/repository"
	"trackdechets/internal/storage"
	"trackdechets/internal/validation"
	"trackdechets/internal/workflow"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// SignInput requests the signature of a stage.
type SignInput struct {
	Stage  model.Stage `json:"type"`
	Author string      `json:"author"`
}

// ListQuery holds the listing parameters.
type ListQuery struct {
	First    int
	After    string
	Statuses []model.Status
}

// ListResult is the service-level DTO for a page of documents.
type ListResult struct {
	Items       []model.Bsd `json:"items"`
	TotalCount  int         `json:"totalCount"`
	HasNextPage bool        `json:"hasNextPage"`
	EndCursor   string      `json:"endCursor,omitempty"`
}

// PDFResult points at a printed document.
type PDFResult struct {
	DownloadLink string `json:"downloadLink"`
	Cached       bool   `json:"cached"`
}

// BsdService defines the use cases of one document kind. Every method except RequiredFor
// needs an authenticated user in ctx (see WithUser) belonging to one of the companies of
// the document.
type BsdService interface {
	Kind() model.Kind

	// Create stores a new draft from a JSON input. Signatures and metadata in the input are ignored.
	Create(ctx context.Context, input json.RawMessage) (model.Bsd, error)

	Get(ctx context.Context, id string) (model.Bsd, error)

	// List returns the documents of the user's companies, most recently updated first.
	List(ctx context.Context, q ListQuery) (*ListResult, error)

	// Update merges a partial JSON input into the document. Fields of signed stages are
	// silently kept.
	Update(ctx context.Context, id string, input json.RawMessage) (model.Bsd, error)

	// Delete soft-deletes a document that has not been signed yet.
	Delete(ctx context.Context, id string) (model.Bsd, error)

	// Duplicate copies the emission data of a document into a new draft.
	Duplicate(ctx context.Context, id string) (model.Bsd, error)

	// Publish turns a draft into a document ready for the emission signature.
	Publish(ctx context.Context, id string) (model.Bsd, error)

	// Sign records the signature of the next stage and advances the status.
	Sign(ctx context.Context, id string, in SignInput) (model.Bsd, error)

	// Errors validates every stage and returns the violations, without failing.
	Errors(ctx context.Context, id string) (validation.Errors, error)

	// RequiredFor returns the stages whose signature requires path.
	RequiredFor(path string) []model.Stage

	// PDF prints the document, caching the result, and returns a time-limited link.
	PDF(ctx context.Context, id string) (*PDFResult, error)

	// OpenPDF prints the document, caching the result, and streams it.
	OpenPDF(ctx context.Context, id string) (*PDFStream, error)
}

// Deps are the collaborators shared by the document services.
type Deps struct {
	Bsds      repository.BsdRepository
	Companies repository.CompanyRepository
	// Store and Renderer are optional; PDF operations fail with ErrPDFUnavailable without them.
	Store    storage.Storage
	Renderer pdf.Renderer
	// Mailer is optional; refusals are then not notified.
	Mailer  mailer.Mailer
	Metrics *metrics.Metrics
	Log     *zap.Logger

	PresignExpiry     time.Duration
	RefusalTemplateID int
	Now               func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

type bsdService[T any, PT interface {
	*T
	model.Bsd
}] struct {
	kind      model.Kind
	validator *validation.Validator[T]
	def       *workflow.Definition
	catalog   codes.Catalog
	d         Deps
	log       *zap.Logger
}

func newBsdService[T any, PT interface {
	*T
	model.Bsd
}](kind model.Kind, schema func(validation.CompanyLookup) *validation.Validator[T], d Deps) *bsdService[T, PT] {
	def, err := workflow.For(kind)
	if err != nil {
		panic(err)
	}
	return &bsdService[T, PT]{
		kind:      kind,
		validator: schema(NewCompanyLookup(d.Companies)),
		def:       def,
		catalog:   codes.Default(),
		d:         d,
		log:       d.logger().With(zap.String("component", "service"), zap.String("kind", string(kind))),
	}
}

// NewBsdasriService constructs the medical waste service.
func NewBsdasriService(d Deps) BsdService {
	return newBsdService[model.Bsdasri, *model.Bsdasri](model.KindBsdasri, validation.Bsdasri, d)
}

// NewBsffService constructs the fluorinated gas service.
func NewBsffService(d Deps) BsdService {
	return newBsdService[model.Bsff, *model.Bsff](model.KindBsff, validation.Bsff, d)
}

// NewBsvhuService constructs the end-of-life vehicle service.
func NewBsvhuService(d Deps) BsdService {
	return newBsdService[model.Bsvhu, *model.Bsvhu](model.KindBsvhu, validation.Bsvhu, d)
}

func (s *bsdService[T, PT]) Kind() model.Kind { return s.kind }

func (s *bsdService[T, PT]) RequiredFor(path string) []model.Stage {
	return s.validator.RequiredFor(path)
}

func (s *bsdService[T, PT]) Create(ctx context.Context, input json.RawMessage) (model.Bsd, error) {
	user, err := UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.decode(input)
	if err != nil {
		return nil, err
	}
	clearSignatures(doc)
	now := s.d.now()
	*doc.Header() = model.Meta{
		ID:        newID(s.kind, now),
		Status:    model.StatusInitial,
		IsDraft:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := authorize(ctx, s.d.Companies, user, doc.Sirets(), msgNotOnDocument); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, doc, validation.Context{}, ""); err != nil {
		return nil, err
	}
	if err := s.checkGrouping(ctx, doc); err != nil {
		return nil, err
	}

	rec, err := toRecord(doc)
	if err != nil {
		return nil, err
	}
	if err := s.d.Bsds.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}
	if ids := doc.Grouped(); len(ids) > 0 {
		if err := s.d.Bsds.SetGroupedIn(ctx, ids, rec.ID); err != nil {
			return nil, fmt.Errorf("group %s: %w", s.kind, err)
		}
	}
	s.log.Info("bsd_created", zap.String("bsd_id", rec.ID), zap.String("user_id", user.ID))
	return doc, nil
}

func (s *bsdService[T, PT]) Get(ctx context.Context, id string) (model.Bsd, error) {
	doc, _, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *bsdService[T, PT]) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	user, err := UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	if q.First < 0 || q.First > maxPageSize {
		return nil, fmt.Errorf("%w: first doit être compris entre 0 et %d", ErrInvalidInput, maxPageSize)
	}
	if q.First == 0 {
		q.First = defaultPageSize
	}

	companies, err := s.d.Companies.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out := &ListResult{Items: []model.Bsd{}}
	if len(companies) == 0 {
		return out, nil
	}
	sirets := make([]string, 0, len(companies))
	for _, c := range companies {
		sirets = append(sirets, c.Siret)
	}

	page, err := s.d.Bsds.List(ctx,
		repository.BsdFilter{Kind: s.kind, Statuses: q.Statuses, Sirets: sirets},
		repository.CursorQuery{First: q.First, After: q.After},
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	for i := range page.Items {
		doc, err := s.fromRecord(&page.Items[i])
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, doc)
	}
	out.TotalCount = page.Total
	out.HasNextPage = page.HasNextPage
	out.EndCursor = page.EndCursor
	return out, nil
}

func (s *bsdService[T, PT]) Update(ctx context.Context, id string, input json.RawMessage) (model.Bsd, error) {
	doc, user, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	h := doc.Header()
	if s.def.IsFinal(h.Status) {
		return nil, fmt.Errorf("%w: un bordereau au statut %s ne peut plus être modifié", ErrInvalidTransition, h.Status)
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(input, &patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	current, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		return nil, err
	}
	frozen := workflow.FrozenStages(doc)
	var ignored []string
	for k, v := range patch {
		if !s.editable(k, frozen) {
			ignored = append(ignored, k)
			continue
		}
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	updated, err := s.decode(raw)
	if err != nil {
		return nil, err
	}
	*updated.Header() = *h
	updated.Header().UpdatedAt = s.d.now()

	if err := authorize(ctx, s.d.Companies, user, updated.Sirets(), msgOwnSiretRemoved); err != nil {
		return nil, err
	}
	c, stage := validation.Context{}, model.Stage("")
	if !h.IsDraft {
		c, stage = validation.ContextFor(model.StageEmission), model.StageEmission
	}
	if err := s.validate(ctx, updated, c, stage); err != nil {
		return nil, err
	}

	before, after := doc.Grouped(), updated.Grouped()
	groupingChanged := !slices.Equal(before, after)
	if groupingChanged {
		if err := s.checkGrouping(ctx, updated); err != nil {
			return nil, err
		}
	}

	rec, err := toRecord(updated)
	if err != nil {
		return nil, err
	}
	if err := s.d.Bsds.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind, err)
	}
	if groupingChanged {
		if err := s.regroup(ctx, id, before, after); err != nil {
			return nil, err
		}
	}
	if len(ignored) > 0 {
		slices.Sort(ignored)
		s.log.Debug("bsd_update_ignored_fields", zap.String("bsd_id", id), zap.Strings("fields", ignored))
	}
	return updated, nil
}

func (s *bsdService[T, PT]) Delete(ctx context.Context, id string) (model.Bsd, error) {
	doc, user, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	h := doc.Header()
	if h.Status != model.StatusInitial {
		return nil, fmt.Errorf("%w: seuls les bordereaux au statut %s peuvent être supprimés", ErrInvalidTransition, model.StatusInitial)
	}

	now := s.d.now()
	if err := s.d.Bsds.SoftDelete(ctx, id, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete %s: %w", s.kind, err)
	}
	if ids := doc.Grouped(); len(ids) > 0 {
		if err := s.d.Bsds.SetGroupedIn(ctx, ids, ""); err != nil {
			return nil, fmt.Errorf("release grouped %s: %w", s.kind, err)
		}
	}
	if s.d.Store != nil {
		if err := s.d.Store.Delete(ctx, pdfKey(id)); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.log.Warn("pdf_cache_delete_failed", zap.String("bsd_id", id), zap.Error(err))
		}
	}
	h.IsDeleted = true
	h.UpdatedAt = now
	s.log.Info("bsd_deleted", zap.String("bsd_id", id), zap.String("user_id", user.ID))
	return doc, nil
}

func (s *bsdService[T, PT]) Duplicate(ctx context.Context, id string) (model.Bsd, error) {
	doc, user, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.PrepareDuplicate()
	now := s.d.now()
	*doc.Header() = model.Meta{
		ID:        newID(s.kind, now),
		Status:    model.StatusInitial,
		IsDraft:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	rec, err := toRecord(doc)
	if err != nil {
		return nil, err
	}
	if err := s.d.Bsds.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("duplicate %s: %w", s.kind, err)
	}
	s.log.Info("bsd_duplicated", zap.String("bsd_id", rec.ID), zap.String("source_id", id), zap.String("user_id", user.ID))
	return doc, nil
}

func (s *bsdService[T, PT]) Publish(ctx context.Context, id string) (model.Bsd, error) {
	doc, _, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	h := doc.Header()
	if !h.IsDraft {
		return nil, fmt.Errorf("%w: le bordereau %s est déjà publié", ErrInvalidTransition, id)
	}
	if err := s.validate(ctx, doc, validation.ContextFor(model.StageEmission), model.StageEmission); err != nil {
		return nil, err
	}
	h.IsDraft = false
	h.UpdatedAt = s.d.now()

	rec, err := toRecord(doc)
	if err != nil {
		return nil, err
	}
	if err := s.d.Bsds.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("publish %s: %w", s.kind, err)
	}
	return doc, nil
}

func (s *bsdService[T, PT]) Sign(ctx context.Context, id string, in SignInput) (model.Bsd, error) {
	if strings.TrimSpace(in.Author) == "" {
		return nil, fmt.Errorf("%w: le nom du signataire est requis", ErrInvalidInput)
	}
	doc, user, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	h := doc.Header()
	if h.IsDraft {
		return nil, fmt.Errorf("%w: un brouillon doit être publié avant d'être signé", ErrInvalidTransition)
	}
	if err := s.def.CanSign(h.Status, in.Stage); err != nil {
		return nil, err
	}
	sig := doc.Signature(in.Stage)
	if sig == nil {
		return nil, fmt.Errorf("%w: %s n'a pas de signature %s", ErrInvalidTransition, s.kind, in.Stage)
	}

	actor := doc.Sirets().Actor(in.Stage)
	member := false
	if actor != "" {
		if member, err = s.d.Companies.IsMember(ctx, user.ID, actor); err != nil {
			return nil, fmt.Errorf("check membership: %w", err)
		}
	}
	if !member {
		return nil, fmt.Errorf("%w: seul l'établissement %q peut signer l'étape %s", ErrForbidden, actor, in.Stage)
	}

	if err := s.validate(ctx, doc, validation.ContextFor(in.Stage), in.Stage); err != nil {
		return nil, err
	}

	now := s.d.now()
	*sig = model.Signature{Author: in.Author, Date: &now}
	grouping := s.catalog.IsGrouping(string(s.kind), doc.OperationCode())
	next, err := s.def.Next(in.Stage, doc.Refused(in.Stage), grouping)
	if err != nil {
		return nil, err
	}
	h.Status = next
	h.UpdatedAt = now

	rec, err := toRecord(doc)
	if err != nil {
		return nil, err
	}
	if err := s.d.Bsds.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("sign %s: %w", s.kind, err)
	}
	if err := s.d.Bsds.AppendStatusLog(ctx, repository.StatusLog{
		ID:       uuid.NewString(),
		BsdID:    id,
		Status:   next,
		Stage:    in.Stage,
		UserID:   user.ID,
		Author:   in.Author,
		LoggedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("log status: %w", err)
	}
	s.d.Metrics.Signed(s.kind, in.Stage, next)
	s.log.Info("bsd_signed",
		zap.String("bsd_id", id),
		zap.String("stage", string(in.Stage)),
		zap.String("status", string(next)),
		zap.String("user_id", user.ID),
	)

	if next == model.StatusRefused {
		s.notifyRefusal(ctx, doc)
	}
	if in.Stage == model.StageOperation && next == model.StatusProcessed && len(doc.Grouped()) > 0 {
		if err := s.processGrouped(ctx, doc.Grouped(), in.Author, user.ID, now); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (s *bsdService[T, PT]) Errors(ctx context.Context, id string) (validation.Errors, error) {
	doc, _, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	c := validation.AllStages()
	c.IsRegrouping = len(doc.Grouped()) > 0
	errs, err := s.validator.Validate(ctx, (*T)(doc), c)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", s.kind, err)
	}
	if errs == nil {
		errs = validation.Errors{}
	}
	return errs, nil
}

// processGrouped closes the documents regrouped by a document that has been processed.
func (s *bsdService[T, PT]) processGrouped(ctx context.Context, ids []string, author, userID string, now time.Time) error {
	recs, err := s.d.Bsds.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load grouped %s: %w", s.kind, err)
	}
	for i := range recs {
		child, err := s.fromRecord(&recs[i])
		if err != nil {
			return err
		}
		ch := child.Header()
		ch.Status = model.StatusProcessed
		ch.UpdatedAt = now
		rec, err := toRecord(child)
		if err != nil {
			return err
		}
		if err := s.d.Bsds.Update(ctx, rec); err != nil {
			return fmt.Errorf("process grouped %s: %w", ch.ID, err)
		}
		if err := s.d.Bsds.AppendStatusLog(ctx, repository.StatusLog{
			ID:       uuid.NewString(),
			BsdID:    ch.ID,
			Status:   model.StatusProcessed,
			Stage:    model.StageOperation,
			UserID:   userID,
			Author:   author,
			LoggedAt: now,
		}); err != nil {
			return fmt.Errorf("log status: %w", err)
		}
	}
	return nil
}

// regroup moves the grouped_in link from the documents removed from a grouping to the added ones.
func (s *bsdService[T, PT]) regroup(ctx context.Context, id string, before, after []string) error {
	var removed, added []string
	for _, b := range before {
		if !slices.Contains(after, b) {
			removed = append(removed, b)
		}
	}
	for _, a := range after {
		if !slices.Contains(before, a) {
			added = append(added, a)
		}
	}
	if err := s.d.Bsds.SetGroupedIn(ctx, removed, ""); err != nil {
		return fmt.Errorf("release grouped %s: %w", s.kind, err)
	}
	if err := s.d.Bsds.SetGroupedIn(ctx, added, id); err != nil {
		return fmt.Errorf("group %s: %w", s.kind, err)
	}
	return nil
}

// checkGrouping verifies that every regrouped document is awaiting a grouping at the
// emitter of doc and is not regrouped elsewhere.
func (s *bsdService[T, PT]) checkGrouping(ctx context.Context, doc PT) error {
	ids := doc.Grouped()
	if len(ids) == 0 {
		return nil
	}
	recs, err := s.d.Bsds.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load grouped %s: %w", s.kind, err)
	}
	found := make(map[string]*repository.BsdRecord, len(recs))
	for i := range recs {
		found[recs[i].ID] = &recs[i]
	}

	var problems []string
	emitter := doc.Sirets().Emitter
	for _, id := range ids {
		rec, ok := found[id]
		switch {
		case !ok || rec.IsDeleted || rec.Kind != s.kind:
			problems = append(problems, fmt.Sprintf("le bordereau %s n'existe pas", id))
		case rec.Status != s.def.GroupableStatus():
			problems = append(problems, fmt.Sprintf("le bordereau %s n'est pas au statut %s", id, s.def.GroupableStatus()))
		case rec.DestinationSiret != emitter:
			problems = append(problems, fmt.Sprintf("le bordereau %s n'a pas été traité par l'émetteur du regroupement", id))
		case rec.GroupedIn != "" && rec.GroupedIn != doc.Header().ID:
			problems = append(problems, fmt.Sprintf("le bordereau %s est déjà regroupé dans %s", id, rec.GroupedIn))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func (s *bsdService[T, PT]) notifyRefusal(ctx context.Context, doc PT) {
	if s.d.Mailer == nil {
		return
	}
	var contact struct {
		Name string `json:"emitterCompanyName"`
		Mail string `json:"emitterCompanyMail"`
	}
	raw, err := json.Marshal(doc)
	if err == nil {
		err = json.Unmarshal(raw, &contact)
	}
	id := doc.Header().ID
	if err != nil || contact.Mail == "" {
		s.log.Warn("refusal_mail_skipped", zap.String("bsd_id", id), zap.String("reason", "no emitter mail"))
		return
	}

	m := mailer.Mail{
		To:         []mailer.Contact{{Email: contact.Mail, Name: contact.Name}},
		Subject:    fmt.Sprintf("Le déchet de l'entreprise %s a été refusé", contact.Name),
		TemplateID: s.d.RefusalTemplateID,
		Vars: map[string]any{
			"id":                 id,
			"kind":               string(s.kind),
			"emitterCompanyName": contact.Name,
		},
	}
	if s.d.Renderer != nil {
		b, err := s.render(ctx, doc)
		if err != nil {
			s.log.Warn("refusal_pdf_failed", zap.String("bsd_id", id), zap.Error(err))
		} else {
			m.Attachments = []mailer.Attachment{{Filename: id + ".pdf", ContentType: "application/pdf", Content: b}}
		}
	}
	if err := s.d.Mailer.Send(ctx, m); err != nil {
		s.d.Metrics.MailFailed()
		s.log.Error("refusal_mail_failed", zap.String("bsd_id", id), zap.Error(err))
	}
}

// editable reports whether the JSON key k may be changed on a document whose frozen
// stages are frozen. Keys outside every schema belong to the emission.
func (s *bsdService[T, PT]) editable(k string, frozen []model.Stage) bool {
	if headerKeys[k] || strings.HasSuffix(k, "Signature") {
		return false
	}
	stage, ok := s.validator.StageOf(k)
	if !ok {
		stage = model.StageEmission
	}
	return !slices.Contains(frozen, stage)
}

var headerKeys = map[string]bool{
	"id": true, "status": true, "isDraft": true, "isDeleted": true, "createdAt": true, "updatedAt": true,
}

func (s *bsdService[T, PT]) validate(ctx context.Context, doc PT, c validation.Context, stage model.Stage) error {
	c.IsRegrouping = len(doc.Grouped()) > 0
	errs, err := s.validator.Validate(ctx, (*T)(doc), c)
	if err != nil {
		return fmt.Errorf("validate %s: %w", s.kind, err)
	}
	if len(errs) == 0 {
		return nil
	}
	if stage != "" {
		s.d.Metrics.ValidationFailed(s.kind, stage, len(errs))
	}
	return &ValidationError{Stage: stage, Errors: errs}
}

// loadAuthorized returns a live document the current user has access to.
func (s *bsdService[T, PT]) loadAuthorized(ctx context.Context, id string) (PT, *model.User, error) {
	user, err := UserFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	if id == "" {
		return nil, nil, fmt.Errorf("%w: id requis", ErrInvalidInput)
	}
	rec, err := s.d.Bsds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("find %s: %w", s.kind, err)
	}
	if rec.Kind != s.kind || rec.IsDeleted {
		return nil, nil, ErrNotFound
	}
	doc, err := s.fromRecord(rec)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(ctx, s.d.Companies, user, doc.Sirets(), msgForbidden); err != nil {
		return nil, nil, err
	}
	return doc, user, nil
}

func (s *bsdService[T, PT]) decode(raw []byte) (PT, error) {
	doc := PT(new(T))
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return doc, nil
}

// fromRecord decodes a stored document. Columns win over the payload for the metadata.
func (s *bsdService[T, PT]) fromRecord(rec *repository.BsdRecord) (PT, error) {
	doc := PT(new(T))
	if err := json.Unmarshal(rec.Payload, doc); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", s.kind, rec.ID, err)
	}
	*doc.Header() = model.Meta{
		ID:        rec.ID,
		Status:    rec.Status,
		IsDraft:   rec.IsDraft,
		IsDeleted: rec.IsDeleted,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	return doc, nil
}

func toRecord(doc model.Bsd) (*repository.BsdRecord, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", doc.Kind(), err)
	}
	h := doc.Header()
	sirets := doc.Sirets()
	return &repository.BsdRecord{
		ID:               h.ID,
		Kind:             doc.Kind(),
		Status:           h.Status,
		IsDraft:          h.IsDraft,
		IsDeleted:        h.IsDeleted,
		EmitterSiret:     sirets.Emitter,
		TransporterSiret: sirets.Transporter,
		DestinationSiret: sirets.Destination,
		Payload:          payload,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}, nil
}

func clearSignatures(doc model.Bsd) {
	for _, st := range doc.Stages() {
		if sig := doc.Signature(st); sig != nil {
			*sig = model.Signature{}
		}
	}
}

// newID builds a readable id such as DASRI-20261017-3F9A0C1B2.
func newID(kind model.Kind, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("%s-%s-%s", kind.Prefix(), now.Format("20060102"), suffix)
}
