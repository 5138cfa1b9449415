package engine

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// CompileSearch builds a case-insensitive substring filter across the given
// fields. An empty term produces no filter; so does an empty field list,
// which turns search into a documented no-op rather than an error.
//
// The term is treated as a literal: regex metacharacters are escaped before
// compilation.
func CompileSearch(fields []string, term string) bson.M {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return nil
	}

	pattern := regexp.QuoteMeta(term)
	clauses := make([]bson.M, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
	}
	return bson.M{"$or": clauses}
}
