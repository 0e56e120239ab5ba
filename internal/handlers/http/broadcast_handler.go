package http

import (
	"net/http"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"
	"aircast/internal/infrastructure/monitoring"
	apperrors "aircast/pkg/errors"
	"aircast/pkg/validation"

	webrtc "github.com/pion/webrtc/v3"

	"github.com/gin-gonic/gin"
)

// ConnectionCounter reports how many signaling connections are open.
type ConnectionCounter interface {
	Count() int
}

// BroadcastHandler is the read-only REST surface for the dashboard pages.
// All membership mutation happens over the signaling websocket.
type BroadcastHandler struct {
	membership ports.MembershipService
	counter    ConnectionCounter
	health     *monitoring.HealthChecker
	iceServers []webrtc.ICEServer
}

func NewBroadcastHandler(
	membership ports.MembershipService,
	counter ConnectionCounter,
	health *monitoring.HealthChecker,
	iceServers []webrtc.ICEServer,
) *BroadcastHandler {
	return &BroadcastHandler{
		membership: membership,
		counter:    counter,
		health:     health,
		iceServers: iceServers,
	}
}

func (h *BroadcastHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/broadcasts/:code/cameras", h.GetCameraRoster)
		api.GET("/broadcasts/:code/viewers", h.GetViewerCount)
		api.GET("/webrtc/config", h.GetWebRTCConfig)
	}
}

// GetCameraRoster returns the camera roster for a broadcast. An unknown
// stream code yields an empty roster; it is indistinguishable from a
// broadcast with no cameras.
func (h *BroadcastHandler) GetCameraRoster(c *gin.Context) {
	code := c.Param("code")
	if err := validation.ValidateStreamCode(code); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	roster, err := h.membership.CameraRoster(c.Request.Context(), domain.StreamCode(code))
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to read camera roster"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streamCode": code,
		"cameras":    roster,
	})
}

func (h *BroadcastHandler) GetViewerCount(c *gin.Context) {
	code := c.Param("code")
	if err := validation.ValidateStreamCode(code); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	count, err := h.membership.ViewerCount(c.Request.Context(), domain.StreamCode(code))
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to count viewers"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streamCode": code,
		"count":      count,
	})
}

// GetWebRTCConfig hands clients the static ICE configuration (STUN only).
func (h *BroadcastHandler) GetWebRTCConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"iceServers": h.iceServers,
	})
}

func (h *BroadcastHandler) Health(c *gin.Context) {
	status := h.health.CheckAll(c.Request.Context())

	httpStatus := http.StatusOK
	if status.Status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":      status.Status,
		"timestamp":   status.Timestamp.Unix(),
		"checks":      status.Checks,
		"connections": h.counter.Count(),
	})
}
