package repository

import (
	"fmt"
	"strings"

	"twse-announcements/internal/query"

	"gorm.io/gorm"
)

var columns = map[query.Field]string{
	query.FieldQueryDate:   "query_date",
	query.FieldDate:        "date",
	query.FieldFactDate:    "fact_date",
	query.FieldCompanyCode: "company_code",
	query.FieldTitle:       "title",
}

// regexClause renders a case-insensitive match for the active dialect.
// Postgres has ~*; other dialects are expected to provide REGEXP with Go
// regexp semantics.
func regexClause(dialect, column, pattern string) (string, interface{}) {
	if dialect == "postgres" {
		return column + " ~* ?", pattern
	}
	return column + " REGEXP ?", "(?i)" + pattern
}

// renderConditions turns OR-ed conditions into one parenthesised SQL
// expression and its arguments.
func renderConditions(dialect string, conds []query.Condition) (string, []interface{}, error) {
	parts := make([]string, 0, len(conds))
	args := make([]interface{}, 0, len(conds)*2)

	for _, c := range conds {
		col, ok := columns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field: %s", c.Field)
		}
		switch c.Op {
		case query.OpRange:
			parts = append(parts, fmt.Sprintf("(%s >= ? AND %s <= ?)", col, col))
			args = append(args, c.Value, c.To)
		case query.OpGTE:
			parts = append(parts, col+" >= ?")
			args = append(args, c.Value)
		case query.OpLTE:
			parts = append(parts, col+" <= ?")
			args = append(args, c.Value)
		case query.OpEq:
			parts = append(parts, col+" = ?")
			args = append(args, c.Value)
		case query.OpRegex:
			clause, arg := regexClause(dialect, col, c.Value)
			parts = append(parts, clause)
			args = append(args, arg)
		default:
			return "", nil, fmt.Errorf("unknown filter operator: %s", c.Op)
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

// applyFilter scopes db to f, including order and limit. The post-filter is
// left to the caller.
func applyFilter(db *gorm.DB, f query.Filter) (*gorm.DB, error) {
	dialect := db.Dialector.Name()
	tx := db

	if f.Company != "" {
		tx = tx.Where("company_code = ?", f.Company)
	}
	if f.QueryDate != "" {
		tx = tx.Where("query_date = ?", f.QueryDate)
	}
	if len(f.DateConditions) > 0 {
		clause, args, err := renderConditions(dialect, f.DateConditions)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(clause, args...)
	}
	if f.Search != "" {
		clause, arg := regexClause(dialect, "title", f.Search)
		tx = tx.Where(clause, arg)
	}

	for _, k := range query.DefaultOrder {
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		tx = tx.Order(k.Field + " " + dir)
	}
	return tx.Limit(query.ClampLimit(f.Limit)), nil
}
