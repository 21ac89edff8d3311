package persistence

import (
	"errors"
	"strconv"
	"strings"

	"github.com/inventa/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscape is appended to every LIKE so sqlite honours the same escape character as postgres
const likeEscape = ` ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}

// paginate applies the filter's page window
func paginate(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
}

// forUpdate locks the selected rows until the surrounding transaction ends.
// The sqlite dialect drops the clause since it locks the whole database on write.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// onlyTrashed selects soft-deleted rows only
func onlyTrashed(db *gorm.DB) *gorm.DB {
	return db.Unscoped().Where("deleted_at IS NOT NULL")
}

// excludingID skips the row being updated in uniqueness checks
func excludingID(id uint64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id == 0 {
			return db
		}
		return db.Where("id <> ?", id)
	}
}

// parseQuantity reports whether a search term is a whole number usable as a quantity threshold
func parseQuantity(term string) (int64, bool) {
	n, err := strconv.ParseInt(term, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// translateError maps driver errors onto domain errors
func isUniqueViolation(err error) bool {
	_, ok := uniqueViolation(err)
	return ok
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if field, ok := uniqueViolation(err); ok {
		return shared.NewValidationError(field, "has already been taken")
	}
	return err
}

// uniqueViolation reports whether err is a unique constraint failure and
// which column caused it.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// constraint names follow idx_<table>_<column>
		name := pgErr.ConstraintName
		if i := strings.LastIndex(name, "_"); i >= 0 {
			name = name[i+1:]
		}
		return name, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		// "UNIQUE constraint failed: <table>.<column>"
		msg := liteErr.Error()
		if i := strings.LastIndex(msg, "."); i >= 0 {
			return msg[i+1:], true
		}
		return "", true
	}

	return "", false
}
