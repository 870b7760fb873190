package models

import "time"

// Project is a project built with one or more technologies
type Project struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_projects_name"`
	Description  string       `json:"description" gorm:"type:varchar(500);not null"`
	CreatedAt    time.Time    `json:"createdAt" gorm:"not null;index"`
	Technologies []Technology `json:"technologies,omitempty" gorm:"many2many:technology_projects;"`
}
