package elevenlabs

// PromptConfig holds the system prompt for an agent
type PromptConfig struct {
	Prompt string `json:"prompt"`
}

// AgentBehavior holds the prompt and greeting for an agent
type AgentBehavior struct {
	Prompt       PromptConfig `json:"prompt"`
	FirstMessage string       `json:"first_message"`
}

// ConversationConfig wraps the agent behavior section of the provider payload
type ConversationConfig struct {
	Agent AgentBehavior `json:"agent"`
}

// CreateAgentRequest is the body for POST /convai/agents/create
type CreateAgentRequest struct {
	Name               string             `json:"name"`
	ConversationConfig ConversationConfig `json:"conversation_config"`
}

// UpdateAgentRequest is the body for PATCH /convai/agents/{id}
type UpdateAgentRequest struct {
	Name               *string             `json:"name,omitempty"`
	ConversationConfig *ConversationConfig `json:"conversation_config,omitempty"`
	KnowledgeBaseIDs   []string            `json:"knowledge_base,omitempty"`
}

// Agent is the provider's representation of an agent
type Agent struct {
	AgentID            string             `json:"agent_id"`
	Name               string             `json:"name"`
	ConversationConfig ConversationConfig `json:"conversation_config"`
	KnowledgeBaseIDs   []string           `json:"knowledge_base"`
}

// AgentSummary is a list entry from GET /convai/agents
type AgentSummary struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
}

type listAgentsResponse struct {
	Agents []AgentSummary `json:"agents"`
}

// KnowledgeBaseItem is a stored reference document on the provider side
type KnowledgeBaseItem struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// VoiceSettings tune synthesis for a chat reply
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ChatRequest is the body for POST /chat
type ChatRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
}

// ExtractedData carries contact fields the provider pulled out of a turn
type ExtractedData struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Empty reports whether no contact field was extracted
func (d *ExtractedData) Empty() bool {
	return d == nil || (d.Name == "" && d.Email == "" && d.Phone == "")
}

// ChatResponse is the reply from POST /chat
type ChatResponse struct {
	Text          string         `json:"text"`
	AudioURL      *string        `json:"audio_url,omitempty"`
	ExtractedData *ExtractedData `json:"extracted_data,omitempty"`
}
