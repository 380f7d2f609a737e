package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"agent-service/internal/middleware"
	"agent-service/internal/model"
	"agent-service/pkg/database"
	"agent-service/pkg/elevenlabs"
	"agent-service/pkg/logger"
	"agent-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateAgent provisions a conversational agent: local record first
// (pending_remote), then the remote provider agent, then the record is
// flipped to provisioned with the remote id. A remote failure rolls the
// local record back; a rollback failure is left for the sweep.
func CreateAgent(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		log.Error("Organization context missing from claims")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	var req struct {
		Name         string `json:"name"`
		ProjectID    *uint  `json:"project_id"`
		SystemPrompt string `json:"system_prompt"`
		VoiceID      string `json:"voice_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse agent creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid agent data", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	prompt := req.SystemPrompt
	if prompt == "" {
		prompt = fmt.Sprintf("You are %s, a friendly real-estate assistant. Answer questions about the development, "+
			"collect the visitor's name, email and phone when offered, and suggest booking a viewing.", req.Name)
	}
	greeting := fmt.Sprintf("Hi! I'm %s. How can I help you find your new home today?", req.Name)

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = model.DefaultVoiceID
	}

	agent := model.Agent{
		OrganizationID:  orgID,
		ProjectID:       req.ProjectID,
		Name:            req.Name,
		SystemPrompt:    prompt,
		Greeting:        greeting,
		VoiceID:         voiceID,
		VoiceStability:  0.5,
		VoiceSimilarity: 0.75,
		ProvisionState:  model.ProvisionStatePendingRemote,
		Active:          true,
	}

	db := database.GetDB()
	if result := db.Create(&agent); result.Error != nil {
		log.Error("Failed to create agent record", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "agent creation failed"})
	}

	remoteReq := &elevenlabs.CreateAgentRequest{
		Name: req.Name,
		ConversationConfig: elevenlabs.ConversationConfig{
			Agent: elevenlabs.AgentBehavior{
				Prompt:       elevenlabs.PromptConfig{Prompt: prompt},
				FirstMessage: greeting,
			},
		},
	}

	remoteAgent, err := provider.CreateAgent(remoteReq)
	if err != nil {
		prometheus.AgentProvisionErrorCounter.WithLabelValues("create").Inc()
		log.Error("Remote agent provisioning failed", zap.Uint("agent_id", agent.ID), zap.Error(err))

		// Roll the pending record back so a failed provisioning leaves no
		// local agent. If this fails too, the sweep purges the row later.
		if result := db.Unscoped().Delete(&model.Agent{}, agent.ID); result.Error != nil {
			log.Error("Failed to roll back pending agent record",
				zap.Uint("agent_id", agent.ID),
				zap.Error(result.Error))
		}

		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "agent provisioning failed",
			"details": upstreamDetails(err),
		})
	}

	payload, _ := json.Marshal(remoteReq)
	agent.ElevenLabsAgentID = remoteAgent.AgentID
	agent.ProvisionState = model.ProvisionStateProvisioned
	agent.RemotePayload = string(payload)

	if result := db.Save(&agent); result.Error != nil {
		// The remote agent now exists but the local record is stuck in
		// pending_remote; the sweep reconciles it.
		log.Error("Failed to persist provisioned agent",
			zap.Uint("agent_id", agent.ID),
			zap.String("remote_agent_id", remoteAgent.AgentID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "agent creation failed"})
	}

	prometheus.AgentCreateCounter.Inc()
	log.Info("Agent created",
		zap.String("name", agent.Name),
		zap.Uint("id", agent.ID),
		zap.String("remote_agent_id", agent.ElevenLabsAgentID),
		zap.Uint("organization_id", agent.OrganizationID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Agent created successfully",
		"agent":   agent,
	})
}

// GetAgent retrieves agent details
func GetAgent(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid agent ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid agent ID"})
	}

	var agent model.Agent
	if result := database.GetDB().Where("id = ? AND organization_id = ?", id, orgID).First(&agent); result.Error != nil {
		log.Error("Agent not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "agent not found"})
	}

	return c.JSON(http.StatusOK, agent)
}

// ListAgents retrieves all agents belonging to the caller's organization,
// optionally filtered by project
func ListAgents(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	query := database.GetDB().Where("organization_id = ?", orgID)
	if projectID := c.QueryParam("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var agents []model.Agent
	if result := query.Order("created_at DESC").Find(&agents); result.Error != nil {
		log.Error("Failed to retrieve agents", zap.Uint("organization_id", orgID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve agents"})
	}

	return c.JSON(http.StatusOK, agents)
}

// DeleteAgent removes an agent. Remote deletion is best effort: a provider
// failure is logged and swallowed, and the local record is removed either
// way. The response reports whether remote deletion was attempted.
func DeleteAgent(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid agent ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid agent ID"})
	}

	db := database.GetDB()

	var agent model.Agent
	if result := db.Where("id = ? AND organization_id = ?", id, orgID).First(&agent); result.Error != nil {
		log.Error("Agent not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "agent not found"})
	}

	// Mark the transition first so an interrupted delete is visible to the
	// sweep instead of looking like a healthy provisioned agent.
	if result := db.Model(&agent).Update("provision_state", model.ProvisionStatePendingDelete); result.Error != nil {
		log.Error("Failed to mark agent for deletion", zap.Uint("agent_id", agent.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "agent deletion failed"})
	}

	remoteAttempted := false
	if agent.ElevenLabsAgentID != "" {
		remoteAttempted = true
		if err := provider.DeleteAgent(agent.ElevenLabsAgentID); err != nil {
			prometheus.AgentProvisionErrorCounter.WithLabelValues("delete").Inc()
			log.Warn("Remote agent deletion failed, continuing with local deletion",
				zap.String("remote_agent_id", agent.ElevenLabsAgentID),
				zap.Error(err))
		}
	}

	if result := db.Delete(&agent); result.Error != nil {
		log.Error("Failed to delete agent record", zap.Uint("agent_id", agent.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "agent deletion failed"})
	}

	prometheus.AgentDeleteCounter.Inc()
	log.Info("Agent deleted",
		zap.Uint("agent_id", agent.ID),
		zap.Bool("remote_deletion_attempted", remoteAttempted))

	return c.JSON(http.StatusOK, echo.Map{
		"message":                   "Agent deleted successfully",
		"remote_deletion_attempted": remoteAttempted,
	})
}

// CleanupAgents runs the reconciliation sweep on demand. Only remote agents
// no local record references are deleted; see reconcile.Sweeper.
func CleanupAgents(c echo.Context) error {
	log := logger.FromEcho(c)

	results, err := sweeper.Run()
	if err != nil {
		log.Error("Cleanup sweep failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "cleanup sweep failed",
			"details": upstreamDetails(err),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Cleanup sweep completed",
		"results": results,
	})
}

// upstreamDetails extracts the verbatim provider error body when available
func upstreamDetails(err error) string {
	var apiErr *elevenlabs.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return err.Error()
}
