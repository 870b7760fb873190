package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/database/databasetest"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rpupo63/tech-knowledge-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTechnology(t *testing.T, db database.Database, name string, tags ...string) *models.Technology {
	t.Helper()
	ctx := context.Background()
	technology := &models.Technology{Name: name, Description: "Description of " + name}
	require.NoError(t, db.TechnologyRepo().Add(ctx, technology))
	require.NoError(t, db.TechnologyTagRepo().Replace(ctx, technology.ID, tags))
	return technology
}

func addProject(t *testing.T, db database.Database, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, Description: "Description of " + name}
	require.NoError(t, db.ProjectRepo().Add(context.Background(), project))
	return project
}

func TestTechnologyRepoFindByID(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	rust := addTechnology(t, db, "Rust", "systems", "memory-safe")
	project := addProject(t, db, "Compiler")
	require.NoError(t, db.TechnologyProjectRepo().ReplaceProjects(ctx, rust.ID, []uint{project.ID}))
	require.NoError(t, db.QuestionRepo().Add(ctx, &models.Question{Question: "What is ownership?", Answer: "A set of rules", TechnologyID: rust.ID}))

	found, err := db.TechnologyRepo().FindByID(ctx, rust.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"systems", "memory-safe"}, found.Tags())
	require.Len(t, found.Projects, 1)
	assert.Equal(t, "Compiler", found.Projects[0].Name)
	assert.Len(t, found.Questions, 1)

	missing, err := db.TechnologyRepo().FindByID(ctx, rust.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTechnologyRepoUniqueName(t *testing.T) {
	db := databasetest.New(t)
	addTechnology(t, db, "Go", "lang")

	err := db.TechnologyRepo().Add(context.Background(), &models.Technology{Name: "Go", Description: "Another go"})
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateKey(err), "got %v", err)
}

func TestTechnologyRepoListFilters(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	golang := addTechnology(t, db, "Go", "backend", "compiled")
	addTechnology(t, db, "TypeScript", "frontend")
	addTechnology(t, db, "100% Pure", "backend")
	site := addProject(t, db, "Site")
	require.NoError(t, db.TechnologyProjectRepo().ReplaceProjects(ctx, golang.ID, []uint{site.ID}))

	page, err := db.TechnologyRepo().List(ctx, database.TechnologyFilter{Tag: "backend"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = db.TechnologyRepo().List(ctx, database.TechnologyFilter{Tag: "backend", Project: "Site"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "Go", page.Items[0].Name)

	page, err = db.TechnologyRepo().List(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Search: "SCRIPT"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "TypeScript", page.Items[0].Name)

	// "%" must match literally
	page, err = db.TechnologyRepo().List(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Search: "0%"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "100% Pure", page.Items[0].Name)

	// search also matches an exact tag
	page, err = db.TechnologyRepo().List(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Search: "frontend"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, []string{"frontend"}, page.Items[0].Tags())
}

func TestTechnologyRepoListPagesAreDisjoint(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		addTechnology(t, db, fmt.Sprintf("Tech %d", i), "tag")
	}
	// identical timestamps force the id tiebreak
	require.NoError(t, db.GetDB().Model(&models.Technology{}).Where("1 = 1").Update("created_at", time.Unix(0, 0)).Error)

	seen := map[uint]bool{}
	for skip := 0; skip < 7; skip += 3 {
		page, err := db.TechnologyRepo().List(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Skip: skip, Take: 3}})
		require.NoError(t, err)
		assert.EqualValues(t, 7, page.Total)
		for _, item := range page.Items {
			assert.False(t, seen[item.ID], "technology %d returned twice", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 7)
}

func TestTechnologyRepoFindByTags(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	addTechnology(t, db, "Go", "backend", "compiled", "gc")
	addTechnology(t, db, "Rust", "backend", "compiled")
	addTechnology(t, db, "Python", "backend")

	found, err := db.TechnologyRepo().FindByTags(ctx, []string{"compiled", "backend", "compiled"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Go", found[0].Name)
	assert.Equal(t, "Rust", found[1].Name)

	found, err = db.TechnologyRepo().FindByTags(ctx, []string{"backend", "nope"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTechnologyProjectRepoReplace(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	golang := addTechnology(t, db, "Go", "lang")
	a := addProject(t, db, "Alpha")
	b := addProject(t, db, "Bravo")
	c := addProject(t, db, "Charlie")

	require.NoError(t, db.TechnologyProjectRepo().ReplaceProjects(ctx, golang.ID, []uint{a.ID, b.ID}))
	require.NoError(t, db.TechnologyProjectRepo().ReplaceProjects(ctx, golang.ID, []uint{b.ID, c.ID}))

	ids, err := db.TechnologyProjectRepo().ProjectIDs(ctx, golang.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, ids)

	technologies, err := db.TechnologyRepo().FindByProject(ctx, "Charlie")
	require.NoError(t, err)
	require.Len(t, technologies, 1)
	assert.Equal(t, golang.ID, technologies[0].ID)

	require.NoError(t, db.TechnologyProjectRepo().ReplaceTechnologies(ctx, c.ID, nil))
	ids, err = db.TechnologyProjectRepo().ProjectIDs(ctx, golang.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, ids)
}

func TestQuestionRepoForeignKey(t *testing.T) {
	db := databasetest.New(t)

	err := db.QuestionRepo().Add(context.Background(), &models.Question{Question: "Q?", Answer: "A", TechnologyID: 404})
	require.Error(t, err)
	assert.True(t, errs.IsForeignKeyViolation(err), "got %v", err)
}

func TestLinkForeignKeyNamesPair(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	rust := &models.Technology{Name: "Rust", Description: "A systems programming language"}
	require.NoError(t, db.TechnologyRepo().Add(ctx, rust))

	err := db.TechnologyProjectRepo().ReplaceProjects(ctx, rust.ID, []uint{404})
	require.Error(t, err)
	assert.True(t, errs.IsForeignKeyViolation(err), "got %v", err)

	var link *database.LinkError
	require.ErrorAs(t, err, &link)
	assert.Equal(t, rust.ID, link.TechnologyID)
	assert.Equal(t, uint(404), link.ProjectID)
}

func TestTransactionRollsBack(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.TechnologyRepo().Add(ctx, &models.Technology{Name: "Zig", Description: "A language"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := db.TechnologyRepo().FindByName(ctx, "Zig")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestQuestionRepoListByTechnology(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	golang := addTechnology(t, db, "Go", "lang")
	rust := addTechnology(t, db, "Rust", "lang")
	require.NoError(t, db.QuestionRepo().Add(ctx, &models.Question{Question: "What is a goroutine?", Answer: "A green thread", TechnologyID: golang.ID}))
	require.NoError(t, db.QuestionRepo().Add(ctx, &models.Question{Question: "What is a channel?", Answer: "A typed pipe", TechnologyID: golang.ID}))
	require.NoError(t, db.QuestionRepo().Add(ctx, &models.Question{Question: "What is borrowing?", Answer: "References", TechnologyID: rust.ID}))

	page, err := db.QuestionRepo().List(ctx, database.QuestionFilter{TechnologyID: golang.ID, ListQuery: database.ListQuery{OrderBy: "question", Order: "asc"}})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	assert.Equal(t, "What is a channel?", page.Items[0].Question)
	require.NotNil(t, page.Items[0].Technology)
	assert.Equal(t, "Go", page.Items[0].Technology.Name)

	questions, err := db.QuestionRepo().FindByTechnology(ctx, rust.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is borrowing?", questions[0].Question)
}
