package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickskil/launchpad-portal/internal/auth"
	"github.com/quickskil/launchpad-portal/pkg/payments"
)

// Handler exposes the payment-request lifecycle and the reconciliation
// read model over HTTP. Mutating routes are staff-only.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	staffOnly := auth.RequireRole(auth.RoleStaff)

	requests := router.Group("/payment-requests")
	{
		requests.POST("", staffOnly, h.create)
		requests.GET("/:id", h.get)
		requests.PUT("/:id", staffOnly, h.update)
		requests.DELETE("/:id", staffOnly, h.delete)
		requests.POST("/:id/email", staffOnly, h.sendEmail)
		requests.GET("/:id/invoice.pdf", h.invoicePDF)
	}

	billing := router.Group("/clients/:clientId/billing")
	{
		billing.GET("/history", h.history)
		billing.GET("/history.xlsx", staffOnly, h.exportHistory)
	}
}

type createRequest struct {
	UserID           uuid.UUID  `json:"user_id" binding:"required"`
	ProjectID        *uuid.UUID `json:"project_id"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	Description      string     `json:"description"`
	Type             string     `json:"type"`
	GenerateCheckout bool       `json:"generate_checkout"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	record, err := h.service.Create(c.Request.Context(), CreateRequest{
		UserID:           req.UserID,
		ProjectID:        req.ProjectID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Description:      req.Description,
		Type:             payments.RecordType(req.Type),
		GenerateCheckout: req.GenerateCheckout,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "request": record, "sample": record.Sample})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	record, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type updateRequest struct {
	Amount           *float64       `json:"amount"`
	Currency         *string        `json:"currency"`
	Description      *string        `json:"description"`
	Status           *RequestStatus `json:"status"`
	CheckoutURL      *string        `json:"checkout_url"`
	LastEmailSubject *string        `json:"last_email_subject"`
	LastEmailMessage *string        `json:"last_email_message"`
}

func (h *Handler) update(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	record, err := h.service.Update(c.Request.Context(), id, UpdateRequest(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "request": record})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "payment request deleted"})
}

type sendEmailRequest struct {
	To          string `json:"to" binding:"required,email"`
	Subject     string `json:"subject" binding:"required"`
	Message     string `json:"message" binding:"required"`
	IncludeLink bool   `json:"include_link"`
}

func (h *Handler) sendEmail(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	result, err := h.service.SendEmail(c.Request.Context(), id, req.To, req.Subject, req.Message, req.IncludeLink)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "request": result.Request, "sample": result.Sample})
}

func (h *Handler) invoicePDF(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	data, err := h.service.InvoicePDF(c.Request.Context(), id, c.Query("client_name"), c.Query("client_email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handler) history(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid client id"})
		return
	}
	history, err := h.service.History(c.Request.Context(), clientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) exportHistory(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid client id"})
		return
	}
	data, err := h.service.ExportHistory(c.Request.Context(), clientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="billing-history.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) requestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid payment request id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var invalid *InvalidAmountError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": invalid.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "payment request not found"})
	default:
		h.logger.Error("billing operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "internal error"})
	}
}
