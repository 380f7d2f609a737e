package model

import (
	"time"

	"gorm.io/gorm"
)

// Widget represents an embeddable chat widget bound to an agent. EmbedCode
// caches the rendered snippet; it is cleared whenever the configuration
// changes so cached and fresh renders stay byte-identical.
type Widget struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	ProjectID      *uint          `json:"project_id,omitempty" gorm:"index"`
	AgentID        uint           `json:"agent_id" gorm:"index;not null"`
	Theme          string         `json:"theme" gorm:"type:varchar(32);default:'light'"`
	Position       string         `json:"position" gorm:"type:varchar(32);default:'bottom-right'"`
	Greeting       string         `json:"greeting" gorm:"type:text"`
	EmbedCode      string         `json:"embed_code,omitempty" gorm:"type:text"`
	Active         bool           `json:"active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
