package model

import (
	"time"

	"gorm.io/gorm"
)

// Lead represents a prospective buyer captured from a conversation or entered
// manually. Leads created from conversation extraction are keyed by
// (organization_id, conversation_id) so repeated partial extractions update
// one row instead of piling up duplicates.
type Lead struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null;uniqueIndex:idx_lead_conversation"`
	ProjectID      *uint          `json:"project_id,omitempty" gorm:"index"`
	ConversationID *uint          `json:"conversation_id,omitempty" gorm:"uniqueIndex:idx_lead_conversation"`
	Name           string         `json:"name" gorm:"type:varchar(100)"`
	Email          string         `json:"email" gorm:"type:varchar(100)"`
	Phone          string         `json:"phone" gorm:"type:varchar(32)"`
	Source         string         `json:"source" gorm:"type:varchar(32);default:'conversation'"`
	Status         string         `json:"status" gorm:"type:varchar(32);default:'new'"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
