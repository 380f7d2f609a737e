package model

import (
	"time"

	"gorm.io/gorm"
)

// Conversation statuses
const (
	ConversationStatusOngoing   = "ongoing"
	ConversationStatusCompleted = "completed"
	ConversationStatusAbandoned = "abandoned"
)

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation represents a chat thread between a visitor and an agent.
// The transcript lives in conversation_turns rows, appended only; the row
// here carries status and denormalized counters for listing.
type Conversation struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	AgentID        uint           `json:"agent_id" gorm:"index;not null"`
	ProjectID      *uint          `json:"project_id,omitempty" gorm:"index"`
	Status         string         `json:"status" gorm:"type:varchar(32);not null;default:'ongoing'"`
	TurnCount      int            `json:"turn_count" gorm:"default:0"`
	LastMessageAt  *time.Time     `json:"last_message_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Turns []ConversationTurn `json:"turns,omitempty" gorm:"foreignKey:ConversationID"`
}

// ConversationTurn is one entry of a conversation transcript. Seq is dense
// per conversation and unique, which makes concurrent appends collide in the
// database instead of silently overwriting each other.
type ConversationTurn struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;uniqueIndex:idx_conversation_seq"`
	Seq            int       `json:"seq" gorm:"not null;uniqueIndex:idx_conversation_seq"`
	Role           string    `json:"role" gorm:"type:varchar(16);not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"timestamp"`
}

// TranscriptEntry is the wire shape of one turn in API responses
type TranscriptEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript converts ordered turn rows into the wire transcript shape
func Transcript(turns []ConversationTurn) []TranscriptEntry {
	entries := make([]TranscriptEntry, 0, len(turns))
	for _, turn := range turns {
		entries = append(entries, TranscriptEntry{
			Role:      turn.Role,
			Content:   turn.Content,
			Timestamp: turn.CreatedAt,
		})
	}
	return entries
}
