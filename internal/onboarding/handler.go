package onboarding

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickskil/launchpad-portal/internal/auth"
	"github.com/quickskil/launchpad-portal/internal/catalog"
)

// Handler exposes the onboarding pipeline over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers onboarding routes. The explicit status update is
// staff-only; everything else is reachable by the owning client.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.POST("", h.startProject)
		projects.GET("/:id", h.getProject)
		projects.GET("/:id/prompt", h.getPrompt)
		projects.POST("/:id/services", h.selectServices)
		projects.PUT("/:id/business-info", h.submitBusinessInfo)
		projects.PUT("/:id/design-specs", h.submitDesignSpecs)
		projects.POST("/:id/uploads", h.recordUploads)
		projects.POST("/:id/deposit-checkout", h.createDepositCheckout)
		projects.POST("/:id/deposit-paid", h.markDepositPaid)
		projects.POST("/:id/advance-launch-approval", h.advanceToLaunchApproval)
		projects.POST("/:id/approve-launch", h.approveLaunch)
		projects.POST("/:id/final-paid", h.markFinalInvoicePaid)
		projects.PUT("/:id/status", auth.RequireRole(auth.RoleStaff), h.updateStatus)
	}
	router.GET("/clients/:clientId/projects", h.listClientProjects)
}

type startProjectRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
}

func (h *Handler) startProject(c *gin.Context) {
	var req startProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	project, err := h.service.StartProject(c.Request.Context(), req.ClientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": project})
}

func (h *Handler) getProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	project, err := h.service.GetProject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) getPrompt(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	prompt, err := h.service.Prompt(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

type selectServicesRequest struct {
	Services []string `json:"services" binding:"required"`
}

func (h *Handler) selectServices(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	var req selectServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	project, err := h.service.SelectServices(c.Request.Context(), id, req.Services)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

func (h *Handler) submitBusinessInfo(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	var info BusinessInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	project, err := h.service.SubmitBusinessInfo(c.Request.Context(), id, info)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

func (h *Handler) submitDesignSpecs(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	var specs DesignSpecs
	if err := c.ShouldBindJSON(&specs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	project, err := h.service.SubmitDesignSpecs(c.Request.Context(), id, specs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

type recordUploadsRequest struct {
	Assets []UploadAsset `json:"assets"`
}

func (h *Handler) recordUploads(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	var req recordUploadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	project, err := h.service.RecordUploads(c.Request.Context(), id, req.Assets)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

func (h *Handler) createDepositCheckout(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	record, err := h.service.CreateDepositCheckout(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "request": record, "sample": record.Sample})
}

func (h *Handler) markDepositPaid(c *gin.Context) {
	h.transition(c, h.service.MarkDepositPaid)
}

func (h *Handler) advanceToLaunchApproval(c *gin.Context) {
	h.transition(c, h.service.AdvanceToLaunchApproval)
}

func (h *Handler) approveLaunch(c *gin.Context) {
	h.transition(c, h.service.ApproveLaunch)
}

func (h *Handler) markFinalInvoicePaid(c *gin.Context) {
	h.transition(c, h.service.MarkFinalInvoicePaid)
}

type updateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	actor := ActorClient
	if auth.RoleFromContext(c) == auth.RoleStaff {
		actor = ActorStaff
	}
	project, err := h.service.UpdateStatus(c.Request.Context(), id, actor, req.Status, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

func (h *Handler) listClientProjects(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid client id"})
		return
	}
	projects, err := h.service.ListClientProjects(c.Request.Context(), clientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*Project, error)) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	project, err := op(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

func (h *Handler) projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid project id"})
		return uuid.Nil, false
	}
	return id, true
}

// fail maps domain errors onto the uniform failure shape. Validation errors
// come back as structured failures; genuine collaborator violations 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var unknown *catalog.UnknownServiceError
	var protected *StatusProtectedError
	switch {
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": unknown.Error()})
	case errors.As(err, &protected):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "message": protected.Error()})
	case errors.Is(err, ErrDepositSettled):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "message": err.Error()})
	case errors.Is(err, ErrNoServicesSelected):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "project not found"})
	default:
		h.logger.Error("onboarding operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "internal error"})
	}
}
