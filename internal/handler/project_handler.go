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

// CreateProject handles project creation within the caller's organization
func CreateProject(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Location    string `json:"location"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse project creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid project data", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	project := model.Project{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		Active:         true,
	}

	if result := database.GetDB().Create(&project); result.Error != nil {
		log.Error("Failed to create project", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
	}

	log.Info("Project created",
		zap.String("name", project.Name),
		zap.Uint("id", project.ID),
		zap.Uint("organization_id", project.OrganizationID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Project created successfully",
		"project": project,
	})
}

// GetProject retrieves project details
func GetProject(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid project ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project ID"})
	}

	var project model.Project
	if result := database.GetDB().Where("id = ? AND organization_id = ?", id, orgID).First(&project); result.Error != nil {
		log.Error("Project not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	return c.JSON(http.StatusOK, project)
}

// ListProjects retrieves all projects belonging to the caller's organization
func ListProjects(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	var projects []model.Project
	if result := database.GetDB().Where("organization_id = ?", orgID).Order("created_at DESC").Find(&projects); result.Error != nil {
		log.Error("Failed to retrieve projects", zap.Uint("organization_id", orgID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve projects"})
	}

	return c.JSON(http.StatusOK, projects)
}

// DeleteProject removes a project
func DeleteProject(c echo.Context) error {
	log := logger.FromEcho(c)

	orgID, ok := middleware.OrgID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid project ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project ID"})
	}

	var project model.Project
	if result := database.GetDB().Where("id = ? AND organization_id = ?", id, orgID).First(&project); result.Error != nil {
		log.Error("Project not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	if result := database.GetDB().Delete(&project); result.Error != nil {
		log.Error("Failed to delete project", zap.Uint("project_id", project.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project deletion failed"})
	}

	log.Info("Project deleted", zap.Uint("project_id", project.ID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Project deleted successfully"})
}
