package model

import (
	"time"

	"gorm.io/gorm"
)

// Document statuses. A row enters as processing and always leaves to ready or
// error; rows found stuck in processing at startup are re-enqueued.
const (
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusError      = "error"
)

// Document represents a reference document attached to a project
type Document struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	ProjectID      uint           `json:"project_id" gorm:"index;not null"`
	Name           string         `json:"name" gorm:"type:varchar(255);not null"`
	ContentType    string         `json:"content_type" gorm:"type:varchar(100)"`
	Content        string         `json:"content,omitempty" gorm:"type:text"`
	Status         string         `json:"status" gorm:"type:varchar(32);not null;default:'processing';index"`
	StatusMessage  string         `json:"status_message,omitempty" gorm:"type:text"`
	ChunkCount     int            `json:"chunk_count" gorm:"default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Chunks []DocumentChunk `json:"chunks,omitempty" gorm:"foreignKey:DocumentID"`
}

// DocumentChunk is one piece of a chunked document
type DocumentChunk struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	DocumentID uint      `json:"document_id" gorm:"index;not null"`
	Position   int       `json:"position" gorm:"not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
}
