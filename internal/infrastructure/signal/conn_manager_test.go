package signal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aircast/internal/core/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// wsPair upgrades one websocket connection against a throwaway test server
// and returns both ends.
func wsPair(t *testing.T) (server *websocket.Conn, clientConn *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverChan := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverChan <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	server = <-serverChan
	t.Cleanup(func() { server.Close() })
	return server, clientConn
}

func TestSendToDeliversEnvelope(t *testing.T) {
	manager := NewConnManager(time.Second, zap.NewNop().Sugar())
	serverSide, clientSide := wsPair(t)

	manager.Register("cam-1", serverSide)
	manager.SendTo("cam-1", domain.EventCameraJoined, domain.CameraJoinedPayload{CameraID: "cam-1"})

	clientSide.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, clientSide.ReadJSON(&env))
	assert.Equal(t, domain.EventCameraJoined, env.Event)
	assert.JSONEq(t, `{"cameraId":"cam-1"}`, string(env.Payload))
}

func TestSendToUnknownTargetIsSilent(t *testing.T) {
	manager := NewConnManager(time.Second, zap.NewNop().Sugar())

	// Must not panic or block
	manager.SendTo("nobody", domain.EventOffer, domain.OfferPayload{From: "x", Offer: json.RawMessage(`{}`)})
	assert.Zero(t, manager.Count())
}

func TestUnregisterOnlyRemovesOwnConnection(t *testing.T) {
	manager := NewConnManager(time.Second, zap.NewNop().Sugar())
	firstServer, _ := wsPair(t)
	secondServer, _ := wsPair(t)

	manager.Register("cam-1", firstServer)
	manager.Register("cam-1", secondServer)
	assert.Equal(t, 1, manager.Count())

	// The first connection's cleanup must not evict the reconnect.
	manager.Unregister("cam-1", firstServer)
	assert.True(t, manager.IsConnected("cam-1"))

	manager.Unregister("cam-1", secondServer)
	assert.False(t, manager.IsConnected("cam-1"))
	assert.Zero(t, manager.Count())
}

func TestRegisterReplacesAndClosesStaleConnection(t *testing.T) {
	manager := NewConnManager(time.Second, zap.NewNop().Sugar())
	staleServer, staleClient := wsPair(t)
	freshServer, freshClient := wsPair(t)

	manager.Register("dir-1", staleServer)
	manager.Register("dir-1", freshServer)

	// The stale server socket was closed; its peer sees EOF.
	staleClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := staleClient.ReadMessage()
	assert.Error(t, err)

	manager.SendTo("dir-1", domain.EventActiveCamera, domain.ActiveCameraPayload{CameraID: "cam-2"})

	freshClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, freshClient.ReadJSON(&env))
	assert.Equal(t, domain.EventActiveCamera, env.Event)
}
