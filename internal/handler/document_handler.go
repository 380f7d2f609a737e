package handler

import (
	"encoding/base64"
	"encoding/json"
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

// CreateDocument inserts a document row in processing state and hands it to
// the background worker for chunking
func CreateDocument(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	var req struct {
		ProjectID   uint   `json:"project_id"`
		Name        string `json:"name"`
		ContentType string `json:"content_type"`
		Content     string `json:"content"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse document creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.ProjectID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and project_id are required"})
	}

	db := database.GetDB()

	var project model.Project
	if result := db.Where("id = ? AND organization_id = ?", req.ProjectID, orgID).First(&project); result.Error != nil {
		log.Error("Project not found", zap.Uint("project_id", req.ProjectID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	document := model.Document{
		OrganizationID: orgID,
		ProjectID:      project.ID,
		Name:           req.Name,
		ContentType:    req.ContentType,
		Content:        req.Content,
		Status:         model.DocumentStatusProcessing,
	}

	if result := db.Create(&document); result.Error != nil {
		log.Error("Failed to create document record", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "document creation failed"})
	}

	if err := docWorker.Enqueue(document.ID); err != nil {
		// The row stays in processing; the scheduled requeue of aged rows
		// picks it up rather than losing the transition.
		log.Warn("Document queue full, deferring processing",
			zap.Uint("document_id", document.ID),
			zap.Error(err))
	}

	log.Info("Document created",
		zap.Uint("document_id", document.ID),
		zap.Uint("project_id", project.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Document created successfully",
		"document": document,
	})
}

// GetDocument retrieves a document with its chunks
func GetDocument(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid document ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document ID"})
	}

	var document model.Document
	if result := database.GetDB().Preload("Chunks").Where("id = ? AND organization_id = ?", id, orgID).First(&document); result.Error != nil {
		log.Error("Document not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
	}

	return c.JSON(http.StatusOK, document)
}

// ListDocuments retrieves documents for the caller's organization, optionally
// filtered by project
func ListDocuments(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	query := database.GetDB().Where("organization_id = ?", orgID)
	if projectID := c.QueryParam("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var documents []model.Document
	if result := query.Order("created_at DESC").Find(&documents); result.Error != nil {
		log.Error("Failed to retrieve documents", zap.Uint("organization_id", orgID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve documents"})
	}

	return c.JSON(http.StatusOK, documents)
}

// UploadAgentDocuments uploads files and text documents to the provider's
// knowledge base and attaches the new item ids to the agent via
// read-modify-write. Already-uploaded items are not rolled back when a later
// step fails; the per-item results report exactly what happened.
func UploadAgentDocuments(c echo.Context) error {
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

	var req struct {
		Files []struct {
			Filename string `json:"filename"`
			Data     string `json:"data"` // base64
		} `json:"files"`
		Texts []struct {
			Name string `json:"name"`
			Text string `json:"text"`
		} `json:"texts"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse upload request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if len(req.Files) == 0 && len(req.Texts) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one file or text document is required"})
	}

	db := database.GetDB()

	var agent model.Agent
	if result := db.Where("id = ? AND organization_id = ?", id, orgID).First(&agent); result.Error != nil {
		log.Error("Agent not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "agent not found"})
	}

	if agent.ElevenLabsAgentID == "" || agent.ProvisionState != model.ProvisionStateProvisioned {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent is not provisioned"})
	}

	type itemResult struct {
		Name    string `json:"name"`
		ID      string `json:"id,omitempty"`
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}

	var results []itemResult
	var newIDs []string

	for _, file := range req.Files {
		item := itemResult{Name: file.Filename}

		data, err := base64.StdEncoding.DecodeString(file.Data)
		if err != nil {
			item.Error = "invalid base64 data"
			results = append(results, item)
			prometheus.KnowledgeBaseSyncCounter.WithLabelValues("failed").Inc()
			continue
		}

		kbItem, err := provider.CreateKnowledgeBaseFile(file.Filename, data)
		if err != nil {
			log.Warn("Knowledge-base file upload failed",
				zap.String("filename", file.Filename),
				zap.Error(err))
			item.Error = upstreamDetails(err)
			prometheus.KnowledgeBaseSyncCounter.WithLabelValues("failed").Inc()
		} else {
			item.ID = kbItem.ID
			item.Success = true
			newIDs = append(newIDs, kbItem.ID)
			prometheus.KnowledgeBaseSyncCounter.WithLabelValues("ok").Inc()
		}
		results = append(results, item)
	}

	for _, text := range req.Texts {
		item := itemResult{Name: text.Name}

		kbItem, err := provider.CreateKnowledgeBaseText(text.Name, text.Text)
		if err != nil {
			log.Warn("Knowledge-base text upload failed",
				zap.String("name", text.Name),
				zap.Error(err))
			item.Error = upstreamDetails(err)
			prometheus.KnowledgeBaseSyncCounter.WithLabelValues("failed").Inc()
		} else {
			item.ID = kbItem.ID
			item.Success = true
			newIDs = append(newIDs, kbItem.ID)
			prometheus.KnowledgeBaseSyncCounter.WithLabelValues("ok").Inc()
		}
		results = append(results, item)
	}

	attached := false
	if len(newIDs) > 0 {
		merged, err := attachKnowledgeBase(&agent, newIDs)
		if err != nil {
			// Uploaded items stay on the provider account unattached; the
			// caller sees them in results and can retry the attach.
			log.Error("Failed to attach knowledge-base items to agent",
				zap.Uint("agent_id", agent.ID),
				zap.Error(err))
		} else {
			attached = true
			kbJSON, _ := json.Marshal(merged)
			if result := db.Model(&agent).Update("knowledge_base_ids", string(kbJSON)); result.Error != nil {
				log.Warn("Failed to record knowledge-base ids locally",
					zap.Uint("agent_id", agent.ID),
					zap.Error(result.Error))
			}
		}
	}

	log.Info("Knowledge-base upload finished",
		zap.Uint("agent_id", agent.ID),
		zap.Int("uploaded", len(newIDs)),
		zap.Bool("attached", attached))

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Knowledge-base upload finished",
		"results":  results,
		"attached": attached,
	})
}

// attachKnowledgeBase merges new item ids into the agent's remote
// knowledge-base list via GET + PATCH and returns the merged list
func attachKnowledgeBase(agent *model.Agent, newIDs []string) ([]string, error) {
	remote, err := provider.GetAgent(agent.ElevenLabsAgentID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(remote.KnowledgeBaseIDs))
	merged := append([]string{}, remote.KnowledgeBaseIDs...)
	for _, id := range remote.KnowledgeBaseIDs {
		existing[id] = true
	}
	for _, id := range newIDs {
		if !existing[id] {
			merged = append(merged, id)
		}
	}

	_, err = provider.UpdateAgent(agent.ElevenLabsAgentID, &elevenlabs.UpdateAgentRequest{
		KnowledgeBaseIDs: merged,
	})
	if err != nil {
		return nil, err
	}

	return merged, nil
}
