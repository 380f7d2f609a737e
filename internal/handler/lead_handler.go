package handler

import (
	"net/http"
	"strconv"

	"agent-service/internal/middleware"
	"agent-service/internal/model"
	"agent-service/pkg/database"
	"agent-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateLead handles manual lead entry from the dashboard. Leads captured
// from conversations are written by the converse flow instead.
func CreateLead(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	var req struct {
		ProjectID *uint  `json:"project_id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Notes     string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse lead creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" && req.Email == "" && req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one of name, email or phone is required"})
	}

	lead := model.Lead{
		OrganizationID: orgID,
		ProjectID:      req.ProjectID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Notes:          req.Notes,
		Source:         "manual",
		Status:         "new",
	}

	if result := database.GetDB().Create(&lead); result.Error != nil {
		log.Error("Failed to create lead", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead creation failed"})
	}

	log.Info("Lead created",
		zap.Uint("lead_id", lead.ID),
		zap.Uint("organization_id", lead.OrganizationID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Lead created successfully",
		"lead":    lead,
	})
}

// GetLead retrieves lead details
func GetLead(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lead ID"})
	}

	var lead model.Lead
	if result := database.GetDB().Where("id = ? AND organization_id = ?", id, orgID).First(&lead); result.Error != nil {
		log.Error("Lead not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lead not found"})
	}

	return c.JSON(http.StatusOK, lead)
}

// ListLeads retrieves leads for the caller's organization, optionally
// filtered by project
func ListLeads(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	query := database.GetDB().Where("organization_id = ?", orgID)
	if projectID := c.QueryParam("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var leads []model.Lead
	if result := query.Order("created_at DESC").Find(&leads); result.Error != nil {
		log.Error("Failed to retrieve leads", zap.Uint("organization_id", orgID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve leads"})
	}

	return c.JSON(http.StatusOK, leads)
}
