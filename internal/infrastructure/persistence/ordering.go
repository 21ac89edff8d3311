package persistence

import (
	"slices"
	"strings"
)

// ordering whitelists the columns a listing may be sorted by. Requested
// columns never reach SQL unless they appear here.
type ordering []string

var (
	productOrdering = ordering{"id", "created_at", "updated_at", "deleted_at", "name", "code", "price", "quantity"}
	userOrdering    = ordering{"id", "created_at", "updated_at", "deleted_at", "name", "email"}
	auditOrdering   = ordering{"id", "created_at", "updated_at", "event_time", "action", "affected_table", "affected_id", "actor_id"}
)

// clause builds the ORDER BY for column and direction, or returns fallback
// when column is empty or not whitelisted. Direction defaults to DESC.
// id always breaks ties so pages stay stable.
func (o ordering) clause(column, direction, fallback string) string {
	column = strings.TrimSpace(column)
	if column == "" || !slices.Contains(o, column) {
		return fallback
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(direction), "asc") {
		dir = "ASC"
	}
	if column == "id" {
		return "id " + dir
	}
	return column + " " + dir + ", id " + dir
}
