package services

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
	"gorm.io/gorm"
)

func rustInput() TechnologyInput {
	return TechnologyInput{
		Name:        "Rust",
		Description: "A systems programming language focused on safety",
		Tags:        []string{"systems", "memory-safety"},
	}
}

func TestTechnologyServiceCreateAndFetch(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	projects := NewProjectService(db)
	technologies := NewTechnologyService(db)

	_, err := projects.Create(ctx, ProjectInput{Name: "Kernel", Description: "A hobby operating system"})
	require.NoError(t, err)

	in := rustInput()
	in.Projects = []string{"Kernel"}
	created, err := technologies.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Rust", created.Name)
	assert.Equal(t, in.Description, created.Description)
	assert.Equal(t, in.Tags, created.Tags())

	fetched, err := technologies.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
	assert.Equal(t, in.Tags, fetched.Tags())
	require.Len(t, fetched.Projects, 1)
	assert.Equal(t, "Kernel", fetched.Projects[0].Name)

	// the link is visible from the project side as well
	kernel, err := db.ProjectRepo().FindByName(ctx, "Kernel")
	require.NoError(t, err)
	project, err := projects.FindOne(ctx, kernel.ID)
	require.NoError(t, err)
	require.Len(t, project.Technologies, 1)
	assert.Equal(t, "Rust", project.Technologies[0].Name)
}

func TestTechnologyServiceCreateConflict(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technologies := NewTechnologyService(db)

	_, err := technologies.Create(ctx, rustInput())
	require.NoError(t, err)

	other := TechnologyInput{Name: "Rust", Description: "Something else entirely", Tags: []string{"other"}}
	_, err = technologies.Create(ctx, other)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
	assert.Equal(t, 409, errs.StatusCode(err))
}

func TestTechnologyServiceCreateUnknownProject(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technologies := NewTechnologyService(db)

	in := rustInput()
	in.Projects = []string{"Ghost"}
	_, err := technologies.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Contains(t, err.Error(), "Ghost")

	found, err := db.TechnologyRepo().FindByName(ctx, "Rust")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTechnologyServiceFindOneMissing(t *testing.T) {
	technologies := NewTechnologyService(databasetest.New(t))

	_, err := technologies.FindOne(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, "Technology with ID 42 not found", err.Error())
}

func TestTechnologyServiceUpdate(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technologies := NewTechnologyService(db)
	projects := NewProjectService(db)

	for _, name := range []string{"Alpha", "Bravo"} {
		_, err := projects.Create(ctx, ProjectInput{Name: name, Description: "Project " + name + " description"})
		require.NoError(t, err)
	}
	in := rustInput()
	in.Projects = []string{"Alpha"}
	rust, err := technologies.Create(ctx, in)
	require.NoError(t, err)
	_, err = technologies.Create(ctx, TechnologyInput{Name: "Go", Description: "A simple compiled language", Tags: []string{"backend"}})
	require.NoError(t, err)

	description := "Fearless concurrency and zero cost abstractions"
	tags := []string{"systems"}
	projectNames := []string{"Bravo"}
	updated, err := technologies.Update(ctx, rust.ID, TechnologyPatch{Description: &description, Tags: &tags, Projects: &projectNames})
	require.NoError(t, err)
	assert.Equal(t, "Rust", updated.Name)
	assert.Equal(t, description, updated.Description)
	assert.Equal(t, tags, updated.Tags())
	require.Len(t, updated.Projects, 1)
	assert.Equal(t, "Bravo", updated.Projects[0].Name)

	taken := "Go"
	_, err = technologies.Update(ctx, rust.ID, TechnologyPatch{Name: &taken})
	assert.True(t, errs.IsConflict(err))

	same := "Rust"
	_, err = technologies.Update(ctx, rust.ID, TechnologyPatch{Name: &same})
	assert.NoError(t, err)

	_, err = technologies.Update(ctx, 999, TechnologyPatch{Description: &description})
	assert.True(t, errs.IsNotFound(err))
}

func TestTechnologyServicePagination(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technologies := NewTechnologyService(db)

	for i := 0; i < 6; i++ {
		_, err := technologies.Create(ctx, TechnologyInput{
			Name:        fmt.Sprintf("Tech %02d", i),
			Description: "A technology used in tests",
			Tags:        []string{"t"},
		})
		require.NoError(t, err)
	}
	require.NoError(t, db.GetDB().Model(&models.Technology{}).Where("1 = 1").Update("created_at", time.Unix(1700000000, 0)).Error)

	first, err := technologies.FindAll(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Skip: 0, Take: 3}})
	require.NoError(t, err)
	second, err := technologies.FindAll(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Skip: 3, Take: 3}})
	require.NoError(t, err)
	both, err := technologies.FindAll(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Skip: 0, Take: 6}})
	require.NoError(t, err)

	ids := func(items []models.Technology) []uint {
		out := make([]uint, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}
	assert.Equal(t, ids(both.Items), append(ids(first.Items), ids(second.Items)...))
	assert.EqualValues(t, 6, first.Total)
	assert.Equal(t, 3, second.Skip)

	fallback, err := technologies.FindAll(ctx, database.TechnologyFilter{ListQuery: database.ListQuery{Take: 6, OrderBy: "bogus"}})
	require.NoError(t, err)
	assert.Equal(t, ids(both.Items), ids(fallback.Items))
}

func TestTechnologyServiceFindByTags(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technologies := NewTechnologyService(db)

	_, err := technologies.Create(ctx, TechnologyInput{Name: "Both", Description: "Has tag a and b", Tags: []string{"a", "b", "c"}})
	require.NoError(t, err)
	_, err = technologies.Create(ctx, TechnologyInput{Name: "OnlyA", Description: "Has only tag a", Tags: []string{"a"}})
	require.NoError(t, err)

	found, err := technologies.FindByTags(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Both", found[0].Name)

	// the single-tag list filter still matches both
	page, err := technologies.FindAll(ctx, database.TechnologyFilter{Tag: "a"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	_, err = technologies.FindByTags(ctx, []string{" ", ""})
	assert.True(t, errs.IsBadRequest(err))
}

func TestTechnologyServiceFindByProject(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technologies := NewTechnologyService(db)
	projects := NewProjectService(db)

	_, err := technologies.Create(ctx, rustInput())
	require.NoError(t, err)
	_, err = projects.Create(ctx, ProjectInput{Name: "Kernel", Description: "A hobby operating system", Technologies: []string{"Rust"}})
	require.NoError(t, err)

	found, err := technologies.FindByProject(ctx, "Kernel")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Rust", found[0].Name)

	found, err = technologies.FindByProject(ctx, "Nope")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func seedCascade(t *testing.T, db database.Database) (*models.Technology, []uint, []uint) {
	t.Helper()
	ctx := context.Background()

	technology, err := NewTechnologyService(db).Create(ctx, rustInput())
	require.NoError(t, err)
	_, err = NewProjectService(db).Create(ctx, ProjectInput{Name: "Kernel", Description: "A hobby operating system", Technologies: []string{"Rust"}})
	require.NoError(t, err)

	var questionIDs, resourceIDs []uint
	for _, text := range []string{"What is ownership?", "What is borrowing?"} {
		q, err := NewQuestionService(db).Create(ctx, QuestionInput{Question: text, Answer: "See the book", TechnologyID: technology.ID})
		require.NoError(t, err)
		questionIDs = append(questionIDs, q.ID)
	}
	r, err := NewResourceService(db).Create(ctx, ResourceInput{Title: "The Book", URL: "https://doc.rust-lang.org/book/", TechnologyID: technology.ID})
	require.NoError(t, err)
	resourceIDs = append(resourceIDs, r.ID)

	return technology, questionIDs, resourceIDs
}

func TestTechnologyServiceRemoveCascades(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technology, questionIDs, resourceIDs := seedCascade(t, db)

	removed, err := NewTechnologyService(db).Remove(ctx, technology.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rust", removed.Name)
	assert.Len(t, removed.Questions, 2)
	assert.Len(t, removed.Resources, 1)

	_, err = NewTechnologyService(db).FindOne(ctx, technology.ID)
	assert.True(t, errs.IsNotFound(err))
	for _, id := range questionIDs {
		_, err := NewQuestionService(db).FindOne(ctx, id)
		assert.True(t, errs.IsNotFound(err))
	}
	for _, id := range resourceIDs {
		_, err := NewResourceService(db).FindOne(ctx, id)
		assert.True(t, errs.IsNotFound(err))
	}

	var tagRows int64
	require.NoError(t, db.GetDB().Model(&models.TechnologyTag{}).Where("technology_id = ?", technology.ID).Count(&tagRows).Error)
	assert.Zero(t, tagRows)

	kernel, err := db.ProjectRepo().FindByName(ctx, "Kernel")
	require.NoError(t, err)
	require.NotNil(t, kernel, "projects survive the cascade")
	linked, err := db.TechnologyProjectRepo().TechnologyIDs(ctx, kernel.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestTechnologyServiceRemoveIsAllOrNothing(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technology, questionIDs, resourceIDs := seedCascade(t, db)

	injected := errors.New("injected failure")
	err := db.GetDB().Callback().Delete().Before("gorm:delete").Register("test:fail_technology_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "technologies" {
			_ = tx.AddError(injected)
		}
	})
	require.NoError(t, err)

	_, err = NewTechnologyService(db).Remove(ctx, technology.ID)
	require.Error(t, err)
	assert.Equal(t, 500, errs.StatusCode(err))
	assert.ErrorIs(t, err, errs.ErrDatabaseQuery)

	require.NoError(t, db.GetDB().Callback().Delete().Remove("test:fail_technology_delete"))

	fetched, err := NewTechnologyService(db).FindOne(ctx, technology.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"systems", "memory-safety"}, fetched.Tags())
	assert.Len(t, fetched.Projects, 1)
	for _, id := range questionIDs {
		_, err := NewQuestionService(db).FindOne(ctx, id)
		assert.NoError(t, err)
	}
	for _, id := range resourceIDs {
		_, err := NewResourceService(db).FindOne(ctx, id)
		assert.NoError(t, err)
	}
}

func TestTechnologyServiceDuplicateNameRace(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	technologies := NewTechnologyService(db)
	_, err := technologies.Create(ctx, rustInput())
	require.NoError(t, err)

	checked := technologies.ensureNameFree(ctx, "Rust", 0)
	require.True(t, errs.IsConflict(checked))

	// a second insert that skipped the name check hits the unique index
	raced := db.TechnologyRepo().Add(ctx, &models.Technology{Name: "Rust", Description: "A concurrent duplicate"})
	require.True(t, errs.IsDuplicateKey(raced))

	for _, cause := range []error{raced, gorm.ErrDuplicatedKey} {
		err := technologies.writeError("create", "Rust", references{}, cause)
		assert.True(t, errs.IsConflict(err))
		assert.Equal(t, 409, errs.StatusCode(err))
		assert.Equal(t, checked.Error(), err.Error())
	}
}

func TestTechnologyServiceProjectDeletedAfterResolve(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	_, err := NewProjectService(db).Create(ctx, ProjectInput{Name: "Kernel", Description: "A hobby operating system"})
	require.NoError(t, err)

	err = db.GetDB().Callback().Create().After("gorm:create").Register("test:drop_project", func(tx *gorm.DB) {
		if tx.Statement.Table == "technologies" {
			if err := tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM projects WHERE name = ?", "Kernel").Error; err != nil {
				_ = tx.AddError(err)
			}
		}
	})
	require.NoError(t, err)

	in := rustInput()
	in.Projects = []string{"Kernel"}
	_, err = NewTechnologyService(db).Create(ctx, in)
	require.NoError(t, db.GetDB().Callback().Create().Remove("test:drop_project"))

	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, 404, errs.StatusCode(err))
	assert.Contains(t, err.Error(), "Project with name Kernel")

	rust, err := db.TechnologyRepo().FindByName(ctx, "Rust")
	require.NoError(t, err)
	assert.Nil(t, rust)
}
