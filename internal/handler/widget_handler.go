package handler

import (
	"net/http"
	"strconv"

	"agent-service/internal/middleware"
	"agent-service/internal/model"
	"agent-service/pkg/database"
	"agent-service/pkg/logger"
	"agent-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateWidget creates an embeddable widget bound to an agent
func CreateWidget(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	var req struct {
		AgentID   uint   `json:"agent_id"`
		ProjectID *uint  `json:"project_id"`
		Theme     string `json:"theme"`
		Position  string `json:"position"`
		Greeting  string `json:"greeting"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse widget creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.AgentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent_id is required"})
	}

	db := database.GetDB()

	var agent model.Agent
	if result := db.Where("id = ? AND organization_id = ?", req.AgentID, orgID).First(&agent); result.Error != nil {
		log.Error("Agent not found", zap.Uint("agent_id", req.AgentID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "agent not found"})
	}

	widget := model.Widget{
		OrganizationID: orgID,
		ProjectID:      req.ProjectID,
		AgentID:        agent.ID,
		Theme:          req.Theme,
		Position:       req.Position,
		Greeting:       req.Greeting,
		Active:         true,
	}
	if widget.Theme == "" {
		widget.Theme = "light"
	}
	if widget.Position == "" {
		widget.Position = "bottom-right"
	}
	if widget.ProjectID == nil {
		widget.ProjectID = agent.ProjectID
	}

	if result := db.Create(&widget); result.Error != nil {
		log.Error("Failed to create widget", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "widget creation failed"})
	}

	log.Info("Widget created",
		zap.Uint("widget_id", widget.ID),
		zap.Uint("agent_id", agent.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Widget created successfully",
		"widget":  widget,
	})
}

// GetWidget retrieves widget details
func GetWidget(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid widget ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid widget ID"})
	}

	var widget model.Widget
	if result := database.GetDB().Where("id = ? AND organization_id = ?", id, orgID).First(&widget); result.Error != nil {
		log.Error("Widget not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "widget not found"})
	}

	return c.JSON(http.StatusOK, widget)
}

// UpdateWidget updates widget configuration and clears the cached embed
// snippet so the next render reflects the new settings
func UpdateWidget(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid widget ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid widget ID"})
	}

	var req struct {
		Theme    *string `json:"theme"`
		Position *string `json:"position"`
		Greeting *string `json:"greeting"`
		Active   *bool   `json:"active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse widget update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.GetDB()

	var widget model.Widget
	if result := db.Where("id = ? AND organization_id = ?", id, orgID).First(&widget); result.Error != nil {
		log.Error("Widget not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "widget not found"})
	}

	if req.Theme != nil {
		widget.Theme = *req.Theme
	}
	if req.Position != nil {
		widget.Position = *req.Position
	}
	if req.Greeting != nil {
		widget.Greeting = *req.Greeting
	}
	if req.Active != nil {
		widget.Active = *req.Active
	}

	// Configuration changed, invalidate the cached snippet
	widget.EmbedCode = ""

	if result := db.Save(&widget); result.Error != nil {
		log.Error("Failed to update widget", zap.Uint("widget_id", widget.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "widget update failed"})
	}

	log.Info("Widget updated", zap.Uint("widget_id", widget.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Widget updated successfully",
		"widget":  widget,
	})
}

// WidgetEmbed renders or serves the cached embed snippet for a widget.
// `?type=code` returns the raw snippet as text; anything else returns a JSON
// envelope. Both paths serve the identical string for an unchanged config.
func WidgetEmbed(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid widget ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid widget ID"})
	}

	db := database.GetDB()

	var widget model.Widget
	if result := db.First(&widget, id); result.Error != nil {
		log.Error("Widget not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "widget not found"})
	}

	embedCode := widget.EmbedCode
	if embedCode == "" {
		prometheus.WidgetEmbedCounter.WithLabelValues("miss").Inc()

		var agent model.Agent
		if result := db.First(&agent, widget.AgentID); result.Error != nil {
			log.Error("Widget's agent not found", zap.Uint("agent_id", widget.AgentID), zap.Error(result.Error))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "agent not found"})
		}

		projectName := ""
		if widget.ProjectID != nil {
			var project model.Project
			if result := db.First(&project, *widget.ProjectID); result.Error == nil {
				projectName = project.Name
			}
		}

		embedCode, err = RenderEmbed(&widget, agent.Name, projectName, conf.Widget.ScriptURL)
		if err != nil {
			log.Error("Failed to render embed snippet", zap.Uint("widget_id", widget.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "embed rendering failed"})
		}

		// Cache failures only cost a re-render on the next request
		if result := db.Model(&widget).Update("embed_code", embedCode); result.Error != nil {
			log.Warn("Failed to cache embed snippet", zap.Uint("widget_id", widget.ID), zap.Error(result.Error))
		}
	} else {
		prometheus.WidgetEmbedCounter.WithLabelValues("hit").Inc()
	}

	if c.QueryParam("type") == "code" {
		return c.String(http.StatusOK, embedCode)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"widget_id":  widget.ID,
		"embed_code": embedCode,
	})
}
