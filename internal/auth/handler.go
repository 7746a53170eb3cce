package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const staffTokenTTL = 12 * time.Hour

// Handler issues staff tokens. Client session issuance lives with the host
// application; this portal only needs to tell staff apart.
type Handler struct {
	secret            []byte
	staffEmail        string
	staffPasswordHash string
	logger            *zap.Logger
}

func NewHandler(secret []byte, staffEmail, staffPasswordHash string, logger *zap.Logger) *Handler {
	return &Handler{
		secret:            secret,
		staffEmail:        staffEmail,
		staffPasswordHash: staffPasswordHash,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auth")
	{
		group.POST("/staff/login", h.staffLogin)
		group.GET("/me", h.me)
	}
}

type staffLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) staffLogin(c *gin.Context) {
	var req staffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	if req.Email != h.staffEmail ||
		bcrypt.CompareHashAndPassword([]byte(h.staffPasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "invalid credentials"})
		return
	}

	token, err := IssueToken(h.secret, req.Email, RoleStaff, staffTokenTTL)
	if err != nil {
		h.logger.Error("failed to sign staff token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "token": token})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": UserIDFromContext(c),
		"role":    RoleFromContext(c),
	})
}
