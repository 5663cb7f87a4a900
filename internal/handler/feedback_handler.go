package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/EcoCommute/service-planner/internal/application"
	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/middleware"
	"github.com/EcoCommute/service-planner/internal/response"
)

// FeedbackHandler handles HTTP requests for trip feedback operations.
type FeedbackHandler struct {
	service *application.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service *application.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// RegisterRoutes registers all feedback routes.
func (h *FeedbackHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	feedback := r.Group("/api/v1/plans")
	feedback.Use(authMW)
	{
		feedback.POST("/:id/feedback", middleware.RequireRole(auth.RoleCommuter), h.SubmitFeedback)
		feedback.GET("/:id/feedback", h.GetPlanFeedback)
	}
}

// SubmitFeedback handles POST /api/v1/plans/:id/feedback.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan ID")
		return
	}

	commuterID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitFeedback(c.Request.Context(), planID, commuterID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetPlanFeedback handles GET /api/v1/plans/:id/feedback.
func (h *FeedbackHandler) GetPlanFeedback(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan ID")
		return
	}

	requesterID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetPlanFeedback(c.Request.Context(), planID, requesterID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
