package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestListQueryNormalized(t *testing.T) {
	q := ListQuery{Skip: -3, Take: 0}.normalized()
	assert.Equal(t, 0, q.Skip)
	assert.Equal(t, DefaultTake, q.Take)

	q = ListQuery{Skip: 5, Take: 2}.normalized()
	assert.Equal(t, 5, q.Skip)
	assert.Equal(t, 2, q.Take)
}

func TestOrderColumns(t *testing.T) {
	tests := []struct {
		name       string
		query      ListQuery
		wantColumn string
		wantDesc   bool
	}{
		{"defaults", ListQuery{}, "created_at", true},
		{"allowed asc", ListQuery{OrderBy: "name", Order: OrderAsc}, "name", false},
		{"unknown column falls back", ListQuery{OrderBy: "password", Order: OrderAsc}, "created_at", false},
		{"unknown direction falls back", ListQuery{OrderBy: "name", Order: "sideways"}, "name", true},
		{"injection attempt", ListQuery{OrderBy: "name; DROP TABLE technologies", Order: "desc"}, "created_at", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns := tt.query.orderColumns("technologies", technologySortColumns)
			assert.Equal(t, []clause.OrderByColumn{
				{Column: clause.Column{Table: "technologies", Name: tt.wantColumn}, Desc: tt.wantDesc},
				{Column: clause.Column{Table: "technologies", Name: "id"}, Desc: tt.wantDesc},
			}, columns)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, `%go\_lang%`, containsPattern("Go_Lang"))
}

func TestDiffIDs(t *testing.T) {
	add, remove := diffIDs([]uint{1, 2, 3}, []uint{3, 4, 4, 5})
	assert.Equal(t, []uint{4, 5}, add)
	assert.Equal(t, []uint{1, 2}, remove)

	add, remove = diffIDs(nil, nil)
	assert.Empty(t, add)
	assert.Empty(t, remove)
}
