package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// checkAffectedRows возвращает notFoundError, если запрос не затронул ни одной строки.
func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return true
		}
		// ON DELETE RESTRICT срабатывает как триггер (SQLITE_CONSTRAINT_TRIGGER),
		// отличить его можно только по тексту.
		return liteErr.Code == sqlite3.ErrConstraint && strings.Contains(liteErr.Error(), "FOREIGN KEY")
	}
	return false
}

// versionClause builds the optimistic concurrency predicate. A zero version
// means the caller had no token, so only the row's existence is checked.
func versionClause(version int, placeholder int) (string, []any) {
	if version <= 0 {
		return "", nil
	}
	return fmt.Sprintf(" AND version = $%d", placeholder), []any{version}
}

func exists(ctx context.Context, ex Executor, query string, args ...any) (bool, error) {
	var found bool
	if err := ex.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}
