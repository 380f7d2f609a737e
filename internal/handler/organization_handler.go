package handler

import (
	"net/http"
	"strconv"

	"agent-service/internal/model"
	"agent-service/pkg/database"
	"agent-service/pkg/jwtutil"
	"agent-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateOrganization handles organization creation. This is the tenancy
// root, so it only needs an authenticated user, not an existing org scope.
func CreateOrganization(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		log.Error("Failed to get user claims from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name             string `json:"name"`
		SubscriptionTier string `json:"subscription_tier"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organization creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid organization data", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	org := model.Organization{
		Name:    req.Name,
		OwnerID: claims.UserID,
		Active:  true,
	}
	if req.SubscriptionTier != "" {
		org.SubscriptionTier = req.SubscriptionTier
	}

	if result := database.GetDB().Create(&org); result.Error != nil {
		log.Error("Failed to create organization", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization creation failed"})
	}

	log.Info("Organization created",
		zap.String("name", org.Name),
		zap.Uint("id", org.ID),
		zap.Uint("owner_id", org.OwnerID))

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Organization created successfully",
		"organization": org,
	})
}

// GetOrganization retrieves organization details
func GetOrganization(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid organization ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid organization ID"})
	}

	var org model.Organization
	if result := database.GetDB().First(&org, id); result.Error != nil {
		log.Error("Organization not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not found"})
	}

	// Only members see the org; membership here is claim-scoped
	if claims.OrgID == nil || *claims.OrgID != org.ID {
		if org.OwnerID != claims.UserID {
			log.Warn("Cross-organization access attempt",
				zap.Uint("user_id", claims.UserID),
				zap.Uint("organization_id", org.ID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}

	return c.JSON(http.StatusOK, org)
}

// ListOrganizations retrieves organizations owned by the caller
func ListOrganizations(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var orgs []model.Organization
	if result := database.GetDB().Where("owner_id = ?", claims.UserID).Find(&orgs); result.Error != nil {
		log.Error("Failed to retrieve organizations", zap.Uint("user_id", claims.UserID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve organizations"})
	}

	return c.JSON(http.StatusOK, orgs)
}
