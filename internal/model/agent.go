package model

import (
	"time"

	"gorm.io/gorm"
)

// Provisioning states for the local/remote agent pair. The local record is
// the source of truth; the state tracks how far the remote side got so the
// reconciliation sweep can repair interrupted transitions.
const (
	ProvisionStatePendingRemote = "pending_remote"
	ProvisionStateProvisioned   = "provisioned"
	ProvisionStatePendingDelete = "pending_delete"
)

// DefaultVoiceID is used when an agent is created without an explicit voice
const DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

// Agent represents a conversational agent. It pairs a local configuration
// record with a remote provider agent referenced by ElevenLabsAgentID.
type Agent struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	OrganizationID    uint           `json:"organization_id" gorm:"index;not null"`
	ProjectID         *uint          `json:"project_id,omitempty" gorm:"index"`
	Name              string         `json:"name" gorm:"type:varchar(100);not null"`
	SystemPrompt      string         `json:"system_prompt" gorm:"type:text"`
	Greeting          string         `json:"greeting" gorm:"type:text"`
	VoiceID           string         `json:"voice_id" gorm:"type:varchar(64)"`
	VoiceStability    float64        `json:"voice_stability" gorm:"default:0.5"`
	VoiceSimilarity   float64        `json:"voice_similarity" gorm:"default:0.75"`
	ElevenLabsAgentID string         `json:"eleven_labs_agent_id" gorm:"type:varchar(64);index"`
	ProvisionState    string         `json:"provision_state" gorm:"type:varchar(32);not null;default:'pending_remote';index"`
	RemotePayload     string         `json:"remote_payload,omitempty" gorm:"type:jsonb"` // exact create payload kept for audit
	KnowledgeBaseIDs  string         `json:"knowledge_base_ids,omitempty" gorm:"type:jsonb"`
	Active            bool           `json:"active" gorm:"default:true"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}
