// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolationCode is the PostgreSQL error code for unique_violation.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a uniqueness-constraint failure.
// The sqlite fallback keeps repository tests honest about the same guard.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// lockPost serializes comment-forest writes per post. Overlapping subtree
// deletions on the same post would otherwise race on the shared comments
// counter; the transaction-scoped advisory lock releases on commit or
// rollback. Non-Postgres dialects (sqlite in tests) skip it.
//
// The casts are load-bearing: the two-key overload is
// pg_advisory_xact_lock(int4, int4), and the driver binds Go integers as
// bigint, which Postgres will not implicitly narrow during function
// resolution.
func lockPost(tx *gorm.DB, postID uint) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?::int, ?::int)", postLockClass, int64(postID)).Error
}

// postLockClass namespaces per-post advisory locks against other lock users.
const postLockClass = 3077
