package database

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/messaging-gateway/environments"
	"github.com/onurcolak/messaging-gateway/migrations"
)

func TestDSN(t *testing.T) {
	dsn := DSN(environments.DatabaseConfig{
		Host: "db", Port: "3306", User: "gateway", Password: "secret", DBName: "messaging_gateway",
	})

	assert.True(t, strings.HasPrefix(dsn, "gateway:secret@tcp(db:3306)/messaging_gateway?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}

	assert.Equal(t, 3, ups)
	assert.Equal(t, ups, downs)
}

func TestSeedTestData_SkipsWhenDataExists(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM conversations").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	require.NoError(t, SeedTestData(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedTestData_InsertsConversationsAndMessages(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM conversations").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for _, conv := range seedConversations {
		mock.ExpectExec("INSERT INTO conversations").WillReturnResult(sqlmock.NewResult(0, 1))
		for range conv.messages {
			mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}
	mock.ExpectCommit()

	require.NoError(t, SeedTestData(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
