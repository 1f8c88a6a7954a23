package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackdechets/internal/model"
)

func TestUserPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	u := &model.User{Email: "jean@hopital.fr", Name: "Jean"}
	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), u.Email, u.Name, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	mock.ExpectExec("INSERT INTO access_tokens").
		WithArgs("hash", u.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.CreateToken(ctx, u.ID, "hash"))

	mock.ExpectQuery("SELECT (.+) FROM users u JOIN access_tokens").
		WithArgs("hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at"}).
			AddRow(u.ID, u.Email, u.Name, time.Now()))
	found, err := repo.FindByTokenHash(ctx, "hash")
	require.NoError(t, err)
	assert.Equal(t, u.Email, found.Email)

	mock.ExpectQuery("SELECT (.+) FROM users u JOIN access_tokens").
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByTokenHash(ctx, "unknown")
	assert.True(t, IsNoRowsError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
