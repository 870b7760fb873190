package database

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultTake = 10

	OrderAsc  = "asc"
	OrderDesc = "desc"

	defaultSortColumn = "created_at"
)

// ListQuery is the filter-independent part of every list operation.
type ListQuery struct {
	Search  string
	Skip    int
	Take    int
	OrderBy string
	Order   string
}

// Page is one window of a filtered, ordered result set. Total counts every
// matching row regardless of Skip and Take.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Take  int   `json:"take"`
}

// sortColumns maps the public orderBy names a resource accepts to its columns.
type sortColumns map[string]string

func (q ListQuery) normalized() ListQuery {
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Take <= 0 {
		q.Take = DefaultTake
	}
	return q
}

// orderColumns resolves OrderBy/Order against the allow-list. Unknown values fall
// back to created_at desc. id breaks ties so pages never overlap.
func (q ListQuery) orderColumns(table string, allowed sortColumns) []clause.OrderByColumn {
	column, ok := allowed[q.OrderBy]
	if !ok {
		column = defaultSortColumn
	}
	desc := q.Order != OrderAsc

	return []clause.OrderByColumn{
		{Column: clause.Column{Table: table, Name: column}, Desc: desc},
		{Column: clause.Column{Table: table, Name: "id"}, Desc: desc},
	}
}

func ordered(tx *gorm.DB, columns []clause.OrderByColumn) *gorm.DB {
	for _, column := range columns {
		tx = tx.Order(column)
	}
	return tx
}

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// containsPattern builds the lower-cased "%term%" argument for insensitiveLike.
func containsPattern(search string) string {
	return "%" + escapeLike(strings.ToLower(search)) + "%"
}

// insensitiveLike renders a case-insensitive substring predicate for column.
func insensitiveLike(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

func noScope(tx *gorm.DB) *gorm.DB { return tx }

// findPage runs the count and the windowed select concurrently over the same filter.
// db must not be bound to a transaction.
func findPage[T any](ctx context.Context, db *gorm.DB, q ListQuery, table string, allowed sortColumns, filter, preload func(*gorm.DB) *gorm.DB) (Page[T], error) {
	q = q.normalized()
	if filter == nil {
		filter = noScope
	}
	if preload == nil {
		preload = noScope
	}

	var (
		items []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.WithContext(gctx).Model(new(T)).Scopes(filter).Count(&total).Error
	})
	g.Go(func() error {
		tx := db.WithContext(gctx).Model(new(T)).Scopes(filter, preload)
		return ordered(tx, q.orderColumns(table, allowed)).
			Offset(q.Skip).
			Limit(q.Take).
			Find(&items).Error
	})
	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}

	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Skip: q.Skip, Take: q.Take}, nil
}
