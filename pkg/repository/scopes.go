package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

func OrderBy(order string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}

func Paginate(offset, limit int) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}

// Search matches term case-insensitively against any of columns.
func Search(term string, columns ...string) Scope {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return nil
	}
	pattern := "%" + strings.ToLower(term) + "%"
	return func(db *gorm.DB) *gorm.DB {
		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			clauses = append(clauses, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE ?", col))
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// JSONArrayContains filters rows whose JSON array column holds value.
// Postgres uses jsonb containment; other dialects fall back to a text match.
func JSONArrayContains(column, value string) Scope {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector != nil && db.Dialector.Name() == "postgres" {
			return db.Where(fmt.Sprintf("%s::jsonb @> ?::jsonb", column), fmt.Sprintf("[%q]", value))
		}
		return db.Where(fmt.Sprintf("%s LIKE ?", column), fmt.Sprintf("%%%q%%", value))
	}
}
