package database

import (
	"context"
	"fmt"

	"github.com/rpupo63/tech-knowledge-api/models"
	"gorm.io/gorm"
)

type Database struct {
	db                    *gorm.DB
	technologyRepo        *TechnologyRepo
	technologyTagRepo     *TechnologyTagRepo
	technologyProjectRepo *TechnologyProjectRepo
	projectRepo           *ProjectRepo
	questionRepo          *QuestionRepo
	resourceRepo          *ResourceRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                    db,
		technologyRepo:        NewTechnologyRepo(db),
		technologyTagRepo:     NewTechnologyTagRepo(db),
		technologyProjectRepo: NewTechnologyProjectRepo(db),
		projectRepo:           NewProjectRepo(db),
		questionRepo:          NewQuestionRepo(db),
		resourceRepo:          NewResourceRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) TechnologyRepo() *TechnologyRepo {
	return d.technologyRepo
}

func (d Database) TechnologyTagRepo() *TechnologyTagRepo {
	return d.technologyTagRepo
}

func (d Database) TechnologyProjectRepo() *TechnologyProjectRepo {
	return d.technologyProjectRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) QuestionRepo() *QuestionRepo {
	return d.questionRepo
}

func (d Database) ResourceRepo() *ResourceRepo {
	return d.resourceRepo
}

// GetDB returns the shared GORM handle.
func (d Database) GetDB() *gorm.DB {
	return d.db
}

// Transaction runs fn with a Database whose repositories share one transaction.
// fn returning an error rolls every write back. List operations must not be
// used on tx since they query concurrently.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks that the primary connection is usable.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or extends the schema for every model.
func (d Database) Migrate() error {
	return models.Migrate(d.db)
}
