package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"
	"aircast/internal/core/services"
	"aircast/internal/infrastructure/middleware"
	"aircast/internal/infrastructure/monitoring"
	"aircast/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	webrtc "github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopMessenger struct{}

func (nopMessenger) SendTo(domain.ConnectionID, string, interface{}) {}

type fixedCounter int

func (c fixedCounter) Count() int { return int(c) }

func newTestRouter(t *testing.T, health *monitoring.HealthChecker) (*gin.Engine, ports.MembershipService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop().Sugar()
	membership := services.NewMembershipService(
		memory.NewMemoryCameraRepository(),
		memory.NewMemoryDirectorRepository(),
		memory.NewMemoryViewerRepository(),
		nopMessenger{},
		log,
	)

	iceServers := []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}}

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(log))
	NewBroadcastHandler(membership, fixedCounter(3), health, iceServers).SetupRoutes(router)
	return router, membership
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetCameraRoster(t *testing.T) {
	router, membership := newTestRouter(t, monitoring.NewHealthChecker())

	require.NoError(t, membership.CameraJoin(context.Background(), "cam-1", "match-42", "North goal", "Dana"))

	w := doGet(router, "/api/v1/broadcasts/match-42/cameras")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		StreamCode string              `json:"streamCode"`
		Cameras    []domain.CameraInfo `json:"cameras"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "match-42", body.StreamCode)
	require.Len(t, body.Cameras, 1)
	assert.Equal(t, domain.ConnectionID("cam-1"), body.Cameras[0].ID)
	assert.Equal(t, "North goal", body.Cameras[0].Name)
}

func TestGetCameraRosterUnknownCodeIsEmpty(t *testing.T) {
	router, _ := newTestRouter(t, monitoring.NewHealthChecker())

	w := doGet(router, "/api/v1/broadcasts/never-seen/cameras")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Cameras []domain.CameraInfo `json:"cameras"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Cameras)
}

func TestGetCameraRosterRejectsBadStreamCode(t *testing.T) {
	router, _ := newTestRouter(t, monitoring.NewHealthChecker())

	w := doGet(router, "/api/v1/broadcasts/bad%20code/cameras")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetViewerCount(t *testing.T) {
	router, membership := newTestRouter(t, monitoring.NewHealthChecker())

	require.NoError(t, membership.ViewerJoin(context.Background(), "view-1", "match-42"))
	require.NoError(t, membership.ViewerJoin(context.Background(), "view-2", "match-42"))

	w := doGet(router, "/api/v1/broadcasts/match-42/viewers")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestGetWebRTCConfig(t *testing.T) {
	router, _ := newTestRouter(t, monitoring.NewHealthChecker())

	w := doGet(router, "/api/v1/webrtc/config")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, body.ICEServers[0].URLs)
}

func TestHealthEndpoint(t *testing.T) {
	health := monitoring.NewHealthChecker()
	health.AddCheck("signal", func(ctx context.Context) (bool, error) {
		return true, nil
	}, time.Second)

	router, _ := newTestRouter(t, health)

	w := doGet(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status      string            `json:"status"`
		Checks      map[string]string `json:"checks"`
		Connections int               `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["signal"])
	assert.Equal(t, 3, body.Connections)
}

func TestHealthEndpointUnhealthy(t *testing.T) {
	health := monitoring.NewHealthChecker()
	health.AddCheck("signal", func(ctx context.Context) (bool, error) {
		return false, nil
	}, time.Second)

	router, _ := newTestRouter(t, health)

	w := doGet(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
