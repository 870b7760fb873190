// Package services holds the business rules of the API: existence and
// uniqueness checks, relation replacement and the technology cascade.
package services

import (
	"context"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/errs"
)

const (
	entityTechnology = "Technology"
	entityProject    = "Project"
	entityQuestion   = "Question"
	entityResource   = "Resource"
)

// ensureTechnology fails with NotFound naming id when no such technology exists.
func ensureTechnology(ctx context.Context, db database.Database, id uint) error {
	exists, err := db.TechnologyRepo().Exists(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("find", entityTechnology, err)
	}
	if !exists {
		return errs.NewNotFoundByID(entityTechnology, id)
	}
	return nil
}

// distinct drops repeated values while keeping first occurrences in order.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// references holds resolved relation ids and the names callers used for them.
type references struct {
	ids   []uint
	names map[uint]string
}

// resolveNames maps names to ids through byName, failing with NotFound on the first unknown name.
func resolveNames(entity string, names []string, byName map[string]uint) (references, error) {
	refs := references{ids: make([]uint, 0, len(names)), names: make(map[uint]string, len(names))}
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return references{}, errs.NewNotFoundByName(entity, name)
		}
		refs.ids = append(refs.ids, id)
		refs.names[id] = name
	}
	return refs, nil
}
