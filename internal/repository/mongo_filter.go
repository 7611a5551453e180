package repository

import (
	"fmt"

	"twse-announcements/internal/query"

	"go.mongodb.org/mongo-driver/bson"
)

// conditionDocument renders one condition as a field predicate.
func conditionDocument(c query.Condition) (bson.D, error) {
	col, ok := columns[c.Field]
	if !ok {
		return nil, fmt.Errorf("unknown filter field: %s", c.Field)
	}
	switch c.Op {
	case query.OpRange:
		return bson.D{{Key: col, Value: bson.D{{Key: "$gte", Value: c.Value}, {Key: "$lte", Value: c.To}}}}, nil
	case query.OpGTE:
		return bson.D{{Key: col, Value: bson.D{{Key: "$gte", Value: c.Value}}}}, nil
	case query.OpLTE:
		return bson.D{{Key: col, Value: bson.D{{Key: "$lte", Value: c.Value}}}}, nil
	case query.OpEq:
		return bson.D{{Key: col, Value: c.Value}}, nil
	case query.OpRegex:
		return bson.D{{Key: col, Value: regexDocument(c.Value)}}, nil
	default:
		return nil, fmt.Errorf("unknown filter operator: %s", c.Op)
	}
}

func regexDocument(pattern string) bson.D {
	return bson.D{{Key: "$regex", Value: pattern}, {Key: "$options", Value: "i"}}
}

// filterDocument renders f without order or limit.
func filterDocument(f query.Filter) (bson.D, error) {
	doc := bson.D{}
	if f.Company != "" {
		doc = append(doc, bson.E{Key: "company_code", Value: f.Company})
	}
	if f.QueryDate != "" {
		doc = append(doc, bson.E{Key: "query_date", Value: f.QueryDate})
	}
	if len(f.DateConditions) > 0 {
		or := make(bson.A, 0, len(f.DateConditions))
		for _, c := range f.DateConditions {
			d, err := conditionDocument(c)
			if err != nil {
				return nil, err
			}
			or = append(or, d)
		}
		doc = append(doc, bson.E{Key: "$or", Value: or})
	}
	if f.Search != "" {
		doc = append(doc, bson.E{Key: "title", Value: regexDocument(f.Search)})
	}
	return doc, nil
}

// sortDocument mirrors query.DefaultOrder.
func sortDocument() bson.D {
	doc := make(bson.D, 0, len(query.DefaultOrder))
	for _, k := range query.DefaultOrder {
		dir := 1
		if k.Descending {
			dir = -1
		}
		doc = append(doc, bson.E{Key: k.Field, Value: dir})
	}
	return doc
}
