package models

import "time"

// Question is a study question with its answer, attached to a technology
type Question struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	Question     string      `json:"question" gorm:"type:text;not null"`
	Answer       string      `json:"answer" gorm:"type:text;not null"`
	TechnologyID uint        `json:"technologyId" gorm:"not null;index:idx_questions_technology_id"`
	CreatedAt    time.Time   `json:"createdAt" gorm:"not null;index"`
	Technology   *Technology `json:"technology,omitempty" gorm:"foreignKey:TechnologyID;references:ID"`
}
