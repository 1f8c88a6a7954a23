package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackdechets/internal/model"
	"trackdechets/internal/repository"
)

var bsdCols = []string{"id", "kind", "status", "is_draft", "is_deleted", "emitter_siret", "transporter_siret",
	"destination_siret", "grouped_in", "payload", "created_at", "updated_at"}

func bsdRow(rows *sqlmock.Rows, id string, groupedIn any, at time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "BSDASRI", "INITIAL", false, false, "11111111111111", "", "", groupedIn,
		[]byte(`{"id":"`+id+`"}`), at, at)
}

func TestBsdPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewBsdPostgres(db)
	now := time.Now().UTC()
	rec := &repository.BsdRecord{
		ID:           "DASRI-20261017-ABCDEF123",
		Kind:         model.KindBsdasri,
		Status:       model.StatusInitial,
		IsDraft:      true,
		EmitterSiret: "11111111111111",
		Payload:      []byte(`{}`),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec("INSERT INTO bsds").
		WithArgs(rec.ID, rec.Kind, rec.Status, true, false, rec.EmitterSiret, "", "",
			sql.NullString{}, []byte(`{}`), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBsdPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewBsdPostgres(db)
	ctx := context.Background()
	rec := &repository.BsdRecord{ID: "FF-1", Status: model.StatusSent, Payload: []byte(`{}`)}

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE bsds SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Update(ctx, rec))
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectExec("UPDATE bsds SET status").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Update(ctx, rec), sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBsdPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewBsdPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := bsdRow(sqlmock.NewRows(bsdCols), "DASRI-1", "DASRI-9", time.Now())
		mock.ExpectQuery("SELECT (.+) FROM bsds WHERE id = ?").
			WithArgs("DASRI-1").
			WillReturnRows(rows)

		rec, err := repo.FindByID(ctx, "DASRI-1")

		require.NoError(t, err)
		assert.Equal(t, "DASRI-1", rec.ID)
		assert.Equal(t, model.KindBsdasri, rec.Kind)
		assert.Equal(t, "DASRI-9", rec.GroupedIn)
		assert.JSONEq(t, `{"id":"DASRI-1"}`, string(rec.Payload))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bsds WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		rec, err := repo.FindByID(ctx, "missing")

		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, rec)
	})
}

func TestBsdPostgres_FindByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewBsdPostgres(db)
	now := time.Now()
	rows := sqlmock.NewRows(bsdCols)
	bsdRow(rows, "A", nil, now)
	bsdRow(rows, "B", nil, now)
	mock.ExpectQuery(`SELECT (.+) FROM bsds WHERE id IN \(\$1, \$2\)`).
		WithArgs("A", "B").
		WillReturnRows(rows)

	recs, err := repo.FindByIDs(context.Background(), []string{"A", "B"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Empty(t, recs[0].GroupedIn)

	recs, err = repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBsdPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()
	// count and page run concurrently
	mock.MatchExpectationsInOrder(false)

	repo := NewBsdPostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("first page with more to come", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bsds WHERE kind = \$1 AND is_deleted = false AND status IN \(\$2\)`).
			WithArgs(model.KindBsdasri, model.StatusInitial).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		rows := sqlmock.NewRows(bsdCols)
		bsdRow(rows, "C", nil, now)
		bsdRow(rows, "B", nil, now)
		bsdRow(rows, "A", nil, now)
		mock.ExpectQuery(`SELECT (.+) FROM bsds WHERE (.+) ORDER BY updated_at DESC, id DESC LIMIT \$3`).
			WithArgs(model.KindBsdasri, model.StatusInitial, 3).
			WillReturnRows(rows)

		res, err := repo.List(ctx,
			repository.BsdFilter{Kind: model.KindBsdasri, Statuses: []model.Status{model.StatusInitial}},
			repository.CursorQuery{First: 2})

		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
		assert.Len(t, res.Items, 2)
		assert.True(t, res.HasNextPage)
		assert.Equal(t, "B", res.EndCursor)
	})

	t.Run("after cursor filtered by siret", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bsds WHERE (.+)emitter_siret IN \(\$2\) OR transporter_siret IN \(\$2\)`).
			WithArgs(model.KindBsff, "11111111111111").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		rows := bsdRow(sqlmock.NewRows(bsdCols), "A", nil, now)
		mock.ExpectQuery(`SELECT (.+) FROM bsds WHERE (.+) < \(SELECT updated_at, id FROM bsds WHERE id = \$3\) ORDER BY (.+) LIMIT \$4`).
			WithArgs(model.KindBsff, "11111111111111", "B", 3).
			WillReturnRows(rows)

		res, err := repo.List(ctx,
			repository.BsdFilter{Kind: model.KindBsff, Sirets: []string{"11111111111111"}},
			repository.CursorQuery{First: 2, After: "B"})

		require.NoError(t, err)
		assert.Len(t, res.Items, 1)
		assert.False(t, res.HasNextPage)
		assert.Equal(t, "A", res.EndCursor)
	})

	t.Run("count fails", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bsds`).
			WillReturnError(errors.New("db down"))
		mock.ExpectQuery(`SELECT (.+) FROM bsds WHERE (.+) ORDER BY`).
			WillReturnRows(sqlmock.NewRows(bsdCols))

		res, err := repo.List(ctx, repository.BsdFilter{Kind: model.KindBsvhu}, repository.CursorQuery{First: 10})

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}

func TestBsdPostgres_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewBsdPostgres(db)
	at := time.Now()

	mock.ExpectExec("UPDATE bsds SET is_deleted = true").
		WithArgs("VHU-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SoftDelete(context.Background(), "VHU-1", at))

	mock.ExpectExec("UPDATE bsds SET is_deleted = true").
		WithArgs("missing", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), "missing", at), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBsdPostgres_Grouping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewBsdPostgres(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE bsds SET grouped_in = \$1 WHERE id IN \(\$2, \$3\)`).
		WithArgs(sql.NullString{String: "DASRI-G", Valid: true}, "DASRI-1", "DASRI-2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.SetGroupedIn(ctx, []string{"DASRI-1", "DASRI-2"}, "DASRI-G"))
	require.NoError(t, repo.SetGroupedIn(ctx, nil, "DASRI-G"))

	rows := sqlmock.NewRows(bsdCols)
	bsdRow(rows, "DASRI-1", "DASRI-G", time.Now())
	mock.ExpectQuery("SELECT (.+) FROM bsds WHERE grouped_in = ?").
		WithArgs("DASRI-G").
		WillReturnRows(rows)

	recs, err := repo.FindGroupedIn(ctx, "DASRI-G")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "DASRI-G", recs[0].GroupedIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBsdPostgres_AppendStatusLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewBsdPostgres(db)
	at := time.Now()
	mock.ExpectExec("INSERT INTO bsd_status_logs").
		WithArgs("log-1", "FF-1", model.StatusSent, model.StageTransport, sql.NullString{String: "u1", Valid: true}, "Marc", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.AppendStatusLog(context.Background(), repository.StatusLog{
		ID: "log-1", BsdID: "FF-1", Status: model.StatusSent, Stage: model.StageTransport,
		UserID: "u1", Author: "Marc", LoggedAt: at,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
