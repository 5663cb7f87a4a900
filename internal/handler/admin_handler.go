package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/EcoCommute/service-planner/internal/application"
	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/middleware"
	"github.com/EcoCommute/service-planner/internal/response"
)

// AdminPlanHandler handles admin HTTP requests for plan management.
type AdminPlanHandler struct {
	service *application.PlannerService
}

// NewAdminPlanHandler creates a new AdminPlanHandler.
func NewAdminPlanHandler(service *application.PlannerService) *AdminPlanHandler {
	return &AdminPlanHandler{service: service}
}

// RegisterRoutes registers admin plan routes.
func (h *AdminPlanHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/plans", h.ListPlans)
		admin.GET("/plans/stats", h.PlanStats)
	}
}

// ListPlans handles GET /api/v1/admin/plans.
func (h *AdminPlanHandler) ListPlans(c *gin.Context) {
	page, limit := parsePagination(c)

	plans, total, err := h.service.ListAllPlans(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, plans, total, page, limit)
}

// PlanStats handles GET /api/v1/admin/plans/stats.
func (h *AdminPlanHandler) PlanStats(c *gin.Context) {
	stats, err := h.service.GetPlanStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
