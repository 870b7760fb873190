package models

import "time"

// Resource is a learning resource (article, course, docs page) for a technology
type Resource struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	Title        string      `json:"title" gorm:"type:text;not null"`
	URL          string      `json:"url" gorm:"type:text;not null"`
	TechnologyID uint        `json:"technologyId" gorm:"not null;index:idx_resources_technology_id"`
	CreatedAt    time.Time   `json:"createdAt" gorm:"not null;index"`
	Technology   *Technology `json:"technology,omitempty" gorm:"foreignKey:TechnologyID;references:ID"`
}
