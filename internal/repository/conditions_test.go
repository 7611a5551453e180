package repository

import (
	"testing"

	"twse-announcements/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRenderConditions(t *testing.T) {
	conds := []query.Condition{
		{Field: query.FieldDate, Op: query.OpRange, Value: "114/08/14", To: "114/08/16"},
		{Field: query.FieldQueryDate, Op: query.OpGTE, Value: "2025-08-14"},
		{Field: query.FieldFactDate, Op: query.OpLTE, Value: "2025-08-16"},
		{Field: query.FieldQueryDate, Op: query.OpEq, Value: "2025-08-15"},
		{Field: query.FieldFactDate, Op: query.OpRegex, Value: `^(114|2025)/(0?8|8)/(0?15|15)$`},
	}

	clause, args, err := renderConditions("postgres", conds)
	require.NoError(t, err)
	assert.Equal(t,
		"((date >= ? AND date <= ?) OR query_date >= ? OR fact_date <= ? OR query_date = ? OR fact_date ~* ?)",
		clause)
	assert.Equal(t, []interface{}{
		"114/08/14", "114/08/16", "2025-08-14", "2025-08-16", "2025-08-15", `^(114|2025)/(0?8|8)/(0?15|15)$`,
	}, args)

	clause, args, err = renderConditions("sqlite", conds[4:])
	require.NoError(t, err)
	assert.Equal(t, "(fact_date REGEXP ?)", clause)
	assert.Equal(t, []interface{}{`(?i)^(114|2025)/(0?8|8)/(0?15|15)$`}, args)
}

func TestRenderConditionsRejectsUnknownInput(t *testing.T) {
	_, _, err := renderConditions("postgres", []query.Condition{{Field: "password", Op: query.OpEq, Value: "x"}})
	assert.ErrorContains(t, err, "unknown filter field")

	_, _, err = renderConditions("postgres", []query.Condition{{Field: query.FieldDate, Op: "like", Value: "x"}})
	assert.ErrorContains(t, err, "unknown filter operator")
}

func TestRenderRangeFilterCoversEveryGeneratedCondition(t *testing.T) {
	f := query.Build(query.Params{StartDate: "2025-08-14", EndDate: "2025-08-16"})
	clause, args, err := renderConditions("postgres", f.DateConditions)
	require.NoError(t, err)

	assert.Len(t, f.DateConditions, 12)
	// nine ranges with two args each, three regexes with one
	assert.Len(t, args, 21)
	assert.Contains(t, clause, "(query_date >= ? AND query_date <= ?)")
	assert.Contains(t, clause, "date ~* ?")
}

func TestFilterDocument(t *testing.T) {
	f := query.Filter{
		Company:   "2330",
		QueryDate: "2025-08-15",
		DateConditions: []query.Condition{
			{Field: query.FieldDate, Op: query.OpRange, Value: "114/08/14", To: "114/08/16"},
			{Field: query.FieldFactDate, Op: query.OpRegex, Value: "^114/"},
		},
		Search: "董事會",
	}

	doc, err := filterDocument(f)
	require.NoError(t, err)

	want := bson.D{
		{Key: "company_code", Value: "2330"},
		{Key: "query_date", Value: "2025-08-15"},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "date", Value: bson.D{{Key: "$gte", Value: "114/08/14"}, {Key: "$lte", Value: "114/08/16"}}}},
			bson.D{{Key: "fact_date", Value: bson.D{{Key: "$regex", Value: "^114/"}, {Key: "$options", Value: "i"}}}},
		}},
		{Key: "title", Value: bson.D{{Key: "$regex", Value: "董事會"}, {Key: "$options", Value: "i"}}},
	}
	assert.Equal(t, want, doc)
}

func TestFilterDocumentEmpty(t *testing.T) {
	doc, err := filterDocument(query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestSortDocument(t *testing.T) {
	assert.Equal(t, bson.D{
		{Key: "date", Value: -1},
		{Key: "time", Value: -1},
		{Key: "created_at", Value: -1},
	}, sortDocument())
}
