package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/services"
)

// CRMController serves the admin dashboard
type CRMController struct {
	stats *services.StatsService
}

func NewCRMController(stats *services.StatsService) *CRMController {
	return &CRMController{stats: stats}
}

// Dashboard handles GET /api/crm/crm/admin
func (cc *CRMController) Dashboard(c *gin.Context) {
	stats, err := cc.stats.Dashboard(c)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to load dashboard stats")
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}
