package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agent-service/internal/middleware"
	"agent-service/internal/model"
	"agent-service/pkg/database"
	"agent-service/pkg/elevenlabs"
	"agent-service/pkg/logger"
	"agent-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Converse handles one conversation turn: resolve the agent, load or create
// the conversation, call the remote provider with the visitor message, and
// persist the user and assistant turns together in one transaction. A
// provider failure writes nothing, so a retried request cannot duplicate
// half a turn. This route is public; the widget posts to it cross-origin.
func Converse(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		AgentID        uint   `json:"agent_id"`
		Message        string `json:"message"`
		ConversationID *uint  `json:"conversation_id"`
		ProjectID      *uint  `json:"project_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse converse request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.AgentID == 0 || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent_id and message are required"})
	}

	db := database.GetDB()

	var agent model.Agent
	if result := db.First(&agent, req.AgentID); result.Error != nil {
		log.Error("Agent not found", zap.Uint("agent_id", req.AgentID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "agent not found"})
	}

	var conversation model.Conversation
	if req.ConversationID != nil {
		if result := db.Where("id = ? AND agent_id = ?", *req.ConversationID, agent.ID).First(&conversation); result.Error != nil {
			log.Error("Conversation not found",
				zap.Uint("conversation_id", *req.ConversationID),
				zap.Error(result.Error))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conversation not found"})
		}
	} else {
		conversation = model.Conversation{
			OrganizationID: agent.OrganizationID,
			AgentID:        agent.ID,
			ProjectID:      req.ProjectID,
			Status:         model.ConversationStatusOngoing,
		}
		if conversation.ProjectID == nil {
			conversation.ProjectID = agent.ProjectID
		}
		if result := db.Create(&conversation); result.Error != nil {
			log.Error("Failed to create conversation", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conversation creation failed"})
		}
	}

	// The provider keeps its own conversational state; only the latest
	// message goes over the wire.
	chatReq := &elevenlabs.ChatRequest{
		Text:    req.Message,
		ModelID: conf.ElevenLabs.ModelID,
		VoiceSettings: &elevenlabs.VoiceSettings{
			Stability:       agent.VoiceStability,
			SimilarityBoost: agent.VoiceSimilarity,
		},
	}

	chatStart := time.Now()
	reply, err := provider.Chat(chatReq)
	prometheus.ProviderChatDuration.Observe(time.Since(chatStart).Seconds())
	if err != nil {
		log.Error("Remote chat call failed",
			zap.Uint("conversation_id", conversation.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "conversation turn failed",
			"details": upstreamDetails(err),
		})
	}

	if err := appendTurns(db, conversation.ID, req.Message, reply.Text); err != nil {
		log.Error("Failed to persist conversation turns",
			zap.Uint("conversation_id", conversation.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to persist conversation"})
	}

	prometheus.ConverseCounter.Inc()

	if !reply.ExtractedData.Empty() {
		if err := upsertLead(db, &conversation, reply.ExtractedData); err != nil {
			// Losing a lead update is preferable to failing the turn; the
			// next extraction on this conversation retries the upsert.
			log.Warn("Lead upsert failed",
				zap.Uint("conversation_id", conversation.ID),
				zap.Error(err))
		} else {
			prometheus.LeadCaptureCounter.Inc()
		}
	}

	log.Info("Conversation turn handled",
		zap.Uint("conversation_id", conversation.ID),
		zap.Uint("agent_id", agent.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"conversation_id": conversation.ID,
		"reply_text":      reply.Text,
		"audio_url":       reply.AudioURL,
	})
}

// appendTurns writes the user and assistant turns with consecutive sequence
// numbers. The unique (conversation_id, seq) index turns a concurrent append
// into a constraint violation instead of a lost update.
func appendTurns(db *gorm.DB, conversationID uint, userMessage, assistantReply string) error {
	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		var maxSeq int
		if err := tx.Model(&model.ConversationTurn{}).
			Where("conversation_id = ?", conversationID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		turns := []model.ConversationTurn{
			{ConversationID: conversationID, Seq: maxSeq + 1, Role: model.RoleUser, Content: userMessage},
			{ConversationID: conversationID, Seq: maxSeq + 2, Role: model.RoleAssistant, Content: assistantReply},
		}
		for i := range turns {
			if result := tx.Create(&turns[i]); result.Error != nil {
				return result.Error
			}
		}

		return tx.Model(&model.Conversation{}).
			Where("id = ?", conversationID).
			Updates(map[string]interface{}{
				"turn_count":      maxSeq + 2,
				"last_message_at": now,
			}).Error
	})
}

// upsertLead records extracted contact data against the conversation,
// keyed by (organization_id, conversation_id)
func upsertLead(db *gorm.DB, conversation *model.Conversation, data *elevenlabs.ExtractedData) error {
	var lead model.Lead
	result := db.Where("organization_id = ? AND conversation_id = ?",
		conversation.OrganizationID, conversation.ID).First(&lead)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		conversationID := conversation.ID
		lead = model.Lead{
			OrganizationID: conversation.OrganizationID,
			ProjectID:      conversation.ProjectID,
			ConversationID: &conversationID,
			Name:           data.Name,
			Email:          data.Email,
			Phone:          data.Phone,
			Source:         "conversation",
			Status:         "new",
		}
		return db.Create(&lead).Error
	}

	// Partial extractions accumulate; never blank out a field we already have
	if data.Name != "" {
		lead.Name = data.Name
	}
	if data.Email != "" {
		lead.Email = data.Email
	}
	if data.Phone != "" {
		lead.Phone = data.Phone
	}
	return db.Save(&lead).Error
}

// GetConversation retrieves a conversation with its assembled transcript
func GetConversation(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid conversation ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation ID"})
	}

	var conversation model.Conversation
	if result := database.GetDB().Where("id = ? AND organization_id = ?", id, orgID).First(&conversation); result.Error != nil {
		log.Error("Conversation not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conversation not found"})
	}

	var turns []model.ConversationTurn
	if result := database.GetDB().Where("conversation_id = ?", conversation.ID).Order("seq ASC").Find(&turns); result.Error != nil {
		log.Error("Failed to load transcript", zap.Uint("conversation_id", conversation.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load transcript"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"conversation": conversation,
		"transcript":   model.Transcript(turns),
	})
}

// ListConversations retrieves conversations for the caller's organization,
// optionally filtered by agent
func ListConversations(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	query := database.GetDB().Where("organization_id = ?", orgID)
	if agentID := c.QueryParam("agent_id"); agentID != "" {
		query = query.Where("agent_id = ?", agentID)
	}

	var conversations []model.Conversation
	if result := query.Order("updated_at DESC").Find(&conversations); result.Error != nil {
		log.Error("Failed to retrieve conversations", zap.Uint("organization_id", orgID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve conversations"})
	}

	return c.JSON(http.StatusOK, conversations)
}
