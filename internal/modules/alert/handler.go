package alert

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"vehiclerent/internal/middleware"
	"vehiclerent/internal/pkg/jwt"
	"vehiclerent/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	alerts     AlertRepository
	hub        *Hub
	jwtService *jwt.Service
}

func NewHandler(alerts AlertRepository, hub *Hub, jwtService *jwt.Service) *Handler {
	return &Handler{alerts: alerts, hub: hub, jwtService: jwtService}
}

// RegisterRoutes registers alert routes under the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/alerts")
	{
		g.GET("", h.List)
		g.PATCH("/read-all", h.MarkAllAsRead)
		g.PATCH("/:id/read", h.MarkAsRead)
	}
}

// RegisterPublicRoutes registers the websocket endpoint, which authenticates
// through the token query parameter.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/alerts/ws", h.ServeWS)
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.alerts.ListForUser(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		log.Printf("alert_list_failed user_id=%d error=%v", userID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load alerts")
		return
	}
	unread, err := h.alerts.CountUnread(c.Request.Context(), userID)
	if err != nil {
		log.Printf("alert_count_failed user_id=%d error=%v", userID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load alerts")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"alerts":       items,
		"unread_count": unread,
	})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid alert ID")
		return
	}

	if err := h.alerts.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Alert not found")
			return
		}
		log.Printf("alert_mark_read_failed alert_id=%d user_id=%d error=%v", id, userID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update alert")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Alert marked as read"})
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	if err := h.alerts.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		log.Printf("alert_mark_all_failed user_id=%d error=%v", userID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update alerts")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "All alerts marked as read"})
}

// ServeWS upgrades to a websocket that streams new alerts.
//
// Endpoint: GET /api/alerts/ws?token=JWT_TOKEN
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("alert_ws_upgrade_failed user_id=%d error=%v", claims.UserID, err)
		return
	}
	log.Printf("alert_ws_connected user_id=%d", claims.UserID)
	h.hub.ServeWS(conn, claims.UserID)
	log.Printf("alert_ws_disconnected user_id=%d", claims.UserID)
}
