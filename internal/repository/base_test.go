package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockPostgres creates a GORM *gorm.DB backed by sqlmock so
// postgres-only SQL can be asserted without a server.
func setupMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestLockPostBindsIntegerKeys(t *testing.T) {
	gormDB, mock := setupMockPostgres(t)

	// The two-key overload is pg_advisory_xact_lock(int4, int4). Without
	// the casts the driver binds bigint parameters and function resolution
	// fails with 42883, poisoning every comment write.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1::int, $2::int)")).
		WithArgs(postLockClass, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return lockPost(tx, 42)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockPostSkipsOtherDialects(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return lockPost(tx, 1)
	}))
}
