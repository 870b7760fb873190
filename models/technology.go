package models

import (
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// Technology is a catalogued technology together with its tags and relations.
type Technology struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(50);not null;uniqueIndex:idx_technologies_name"`
	Description string          `json:"description" gorm:"type:varchar(500);not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"not null;index"`
	TagRows     []TechnologyTag `json:"-" gorm:"foreignKey:TechnologyID;references:ID"`
	Projects    []Project       `json:"projects,omitempty" gorm:"many2many:technology_projects;"`
	Questions   []Question      `json:"questions,omitempty" gorm:"foreignKey:TechnologyID;references:ID"`
	Resources   []Resource      `json:"resources,omitempty" gorm:"foreignKey:TechnologyID;references:ID"`
}

// Tags returns the tag values in the order they were submitted.
func (t Technology) Tags() []string {
	rows := make([]TechnologyTag, len(t.TagRows))
	copy(rows, t.TagRows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	tags := make([]string, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, row.Value)
	}
	return tags
}

// MarshalJSON flattens TagRows into a plain "tags" string array.
func (t Technology) MarshalJSON() ([]byte, error) {
	type technology Technology
	return json.Marshal(struct {
		technology
		Tags []string `json:"tags"`
	}{technology(t), t.Tags()})
}

// TagMaxLength is the widest tag value the store accepts.
const TagMaxLength = 100

// TechnologyTag is one tag of a technology. Position keeps the submitted order.
type TechnologyTag struct {
	ID           uint   `json:"-" gorm:"primaryKey"`
	TechnologyID uint   `json:"-" gorm:"not null;index:idx_technology_tags_technology_id;uniqueIndex:idx_technology_tags_unique"`
	Value        string `json:"value" gorm:"type:varchar(100);not null;uniqueIndex:idx_technology_tags_unique;index:idx_technology_tags_value"`
	Position     int    `json:"-" gorm:"not null;default:0"`
}

// NewTechnologyTags builds tag rows for technologyID preserving the order of values.
func NewTechnologyTags(technologyID uint, values []string) []TechnologyTag {
	rows := make([]TechnologyTag, 0, len(values))
	for i, value := range values {
		rows = append(rows, TechnologyTag{TechnologyID: technologyID, Value: value, Position: i})
	}
	return rows
}

// TechnologyProject is a row of the technology <-> project association set.
type TechnologyProject struct {
	TechnologyID uint `gorm:"primaryKey"`
	ProjectID    uint `gorm:"primaryKey"`
}

func (TechnologyProject) TableName() string { return "technology_projects" }
