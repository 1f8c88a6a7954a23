package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trackdechets/internal/repository"
)

// BsdPostgres is a PostgreSQL implementation of repository.BsdRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type BsdPostgres struct {
	db *sql.DB
}

// NewBsdPostgres creates a new BsdPostgres repository.
func NewBsdPostgres(db *sql.DB) *BsdPostgres {
	return &BsdPostgres{db: db}
}

var _ repository.BsdRepository = (*BsdPostgres)(nil)

const bsdColumns = `id, kind, status, is_draft, is_deleted, emitter_siret, transporter_siret,
		destination_siret, grouped_in, payload, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBsd(s scanner) (*repository.BsdRecord, error) {
	var (
		rec       repository.BsdRecord
		groupedIn sql.NullString
		payload   []byte
	)
	if err := s.Scan(
		&rec.ID,
		&rec.Kind,
		&rec.Status,
		&rec.IsDraft,
		&rec.IsDeleted,
		&rec.EmitterSiret,
		&rec.TransporterSiret,
		&rec.DestinationSiret,
		&groupedIn,
		&payload,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.GroupedIn = groupedIn.String
	rec.Payload = payload
	return &rec, nil
}

func scanBsds(rows *sql.Rows) ([]repository.BsdRecord, error) {
	defer rows.Close()
	items := make([]repository.BsdRecord, 0)
	for rows.Next() {
		rec, err := scanBsd(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// placeholders returns "$n, $n+1, ..." for count values starting at n.
func placeholders(n, count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", n+i)
	}
	return strings.Join(ps, ", ")
}

// Create inserts a new document row.
func (r *BsdPostgres) Create(ctx context.Context, rec *repository.BsdRecord) error {
	const q = `
		INSERT INTO bsds (id, kind, status, is_draft, is_deleted, emitter_siret, transporter_siret,
			destination_siret, grouped_in, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.Kind,
		rec.Status,
		rec.IsDraft,
		rec.IsDeleted,
		rec.EmitterSiret,
		rec.TransporterSiret,
		rec.DestinationSiret,
		nullable(rec.GroupedIn),
		[]byte(rec.Payload),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// Update overwrites status, draft flag, actor sirets and payload.
func (r *BsdPostgres) Update(ctx context.Context, rec *repository.BsdRecord) error {
	const q = `
		UPDATE bsds
		SET status = $2, is_draft = $3, emitter_siret = $4, transporter_siret = $5,
			destination_siret = $6, payload = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.Status,
		rec.IsDraft,
		rec.EmitterSiret,
		rec.TransporterSiret,
		rec.DestinationSiret,
		[]byte(rec.Payload),
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID fetches a single document by its ID.
func (r *BsdPostgres) FindByID(ctx context.Context, id string) (*repository.BsdRecord, error) {
	q := `SELECT ` + bsdColumns + ` FROM bsds WHERE id = $1`
	return scanBsd(r.db.QueryRowContext(ctx, q, id))
}

// FindByIDs fetches the documents with the given ids.
func (r *BsdPostgres) FindByIDs(ctx context.Context, ids []string) ([]repository.BsdRecord, error) {
	if len(ids) == 0 {
		return []repository.BsdRecord{}, nil
	}
	q := `SELECT ` + bsdColumns + ` FROM bsds WHERE id IN (` + placeholders(1, len(ids)) + `) ORDER BY id`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanBsds(rows)
}

func filterClause(f repository.BsdFilter) (string, []any) {
	where := []string{"kind = $1", "is_deleted = false"}
	args := []any{f.Kind}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(args)+1, len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if len(f.Sirets) > 0 {
		in := placeholders(len(args)+1, len(f.Sirets))
		where = append(where, fmt.Sprintf(
			"(emitter_siret IN (%[1]s) OR transporter_siret IN (%[1]s) OR destination_siret IN (%[1]s))", in))
		for _, s := range f.Sirets {
			args = append(args, s)
		}
	}
	return strings.Join(where, " AND "), args
}

// List returns documents most recently updated first, using cursor pagination, and a total
// count. The count and the page are fetched concurrently.
func (r *BsdPostgres) List(ctx context.Context, f repository.BsdFilter, cq repository.CursorQuery) (*repository.PageResult[repository.BsdRecord], error) {
	where, args := filterClause(f)

	var (
		total int
		items []repository.BsdRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qCount := `SELECT COUNT(*) FROM bsds WHERE ` + where
		return r.db.QueryRowContext(gctx, qCount, args...).Scan(&total)
	})
	g.Go(func() error {
		pageWhere, pageArgs := where, append([]any(nil), args...)
		if cq.After != "" {
			pageArgs = append(pageArgs, cq.After)
			pageWhere += fmt.Sprintf(
				" AND (updated_at, id) < (SELECT updated_at, id FROM bsds WHERE id = $%d)", len(pageArgs))
		}
		// One extra row tells whether there is a next page.
		pageArgs = append(pageArgs, cq.First+1)
		qList := `SELECT ` + bsdColumns + ` FROM bsds WHERE ` + pageWhere +
			fmt.Sprintf(` ORDER BY updated_at DESC, id DESC LIMIT $%d`, len(pageArgs))
		rows, err := r.db.QueryContext(gctx, qList, pageArgs...)
		if err != nil {
			return err
		}
		items, err = scanBsds(rows)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &repository.PageResult[repository.BsdRecord]{Items: items, Total: total}
	if len(items) > cq.First {
		res.HasNextPage = true
		res.Items = items[:cq.First]
	}
	if len(res.Items) > 0 {
		res.EndCursor = res.Items[len(res.Items)-1].ID
	}
	return res, nil
}

// SoftDelete flags a document as deleted.
func (r *BsdPostgres) SoftDelete(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE bsds SET is_deleted = true, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetGroupedIn marks the given documents as regrouped into groupID. An empty groupID
// releases them.
func (r *BsdPostgres) SetGroupedIn(ctx context.Context, ids []string, groupID string) error {
	if len(ids) == 0 {
		return nil
	}
	q := `UPDATE bsds SET grouped_in = $1 WHERE id IN (` + placeholders(2, len(ids)) + `)`
	args := []any{nullable(groupID)}
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// FindGroupedIn returns the documents regrouped into groupID.
func (r *BsdPostgres) FindGroupedIn(ctx context.Context, groupID string) ([]repository.BsdRecord, error) {
	q := `SELECT ` + bsdColumns + ` FROM bsds WHERE grouped_in = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	return scanBsds(rows)
}

// AppendStatusLog records a status change.
func (r *BsdPostgres) AppendStatusLog(ctx context.Context, l repository.StatusLog) error {
	const q = `
		INSERT INTO bsd_status_logs (id, bsd_id, status, stage, user_id, author, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q, l.ID, l.BsdID, l.Status, l.Stage, nullable(l.UserID), l.Author, l.LoggedAt)
	return err
}
