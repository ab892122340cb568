package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"started_at": true,
	"status":     true,
}

// applyPaginationAndSort applies limit/offset and an allow-listed sort order.
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string) *gorm.DB {
	if !sortableColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
