package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"
	"aircast/internal/infrastructure/monitoring"
	"aircast/pkg/tracing"
	"aircast/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ServerOptions struct {
	AllowedOrigins []string
	PingInterval   time.Duration
	PongTimeout    time.Duration
	WriteTimeout   time.Duration
	// MessagesPerSecond and Burst bound the inbound message rate per
	// connection; zero disables the limiter.
	MessagesPerSecond float64
	Burst             int
	MaxMessageSize    int64
}

// WebSocketServer terminates the persistent signaling channel for every
// participant. One connection is one participant for its whole lifetime; the
// uuid assigned at upgrade is the participant's addressable identity.
type WebSocketServer struct {
	conns      *ConnManager
	membership ports.MembershipService
	feed       ports.FeedService
	relay      ports.RelayService
	collector  *monitoring.Collector
	opts       ServerOptions
	upgrader   websocket.Upgrader
	logger     *zap.SugaredLogger
}

func NewWebSocketServer(
	conns *ConnManager,
	membership ports.MembershipService,
	feed ports.FeedService,
	relay ports.RelayService,
	collector *monitoring.Collector,
	opts ServerOptions,
	logger *zap.SugaredLogger,
) *WebSocketServer {
	s := &WebSocketServer{
		conns:      conns,
		membership: membership,
		feed:       feed,
		relay:      relay,
		collector:  collector,
		opts:       opts,
		logger:     logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *WebSocketServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := domain.ConnectionID(utils.GenerateConnectionID())
	s.conns.Register(id, conn)
	s.collector.ConnectionOpened()

	s.logger.Infow("participant connected", "connection_id", id, "remote_addr", r.RemoteAddr)

	if s.opts.MaxMessageSize > 0 {
		conn.SetReadLimit(s.opts.MaxMessageSize)
	}
	conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
		return nil
	})

	var limiter *rate.Limiter
	if s.opts.MessagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.MessagesPerSecond), s.opts.Burst)
	}

	pingTicker := time.NewTicker(s.opts.PingInterval)
	defer pingTicker.Stop()

	messageChan := make(chan Envelope, 16)
	errorChan := make(chan error, 1)
	// done unblocks the reader if the select loop exits first (ping failure)
	// while messageChan is full.
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			var env Envelope
			if err := conn.ReadJSON(&env); err != nil {
				select {
				case errorChan <- err:
				case <-done:
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
			select {
			case messageChan <- env:
			case <-done:
				return
			}
		}
	}()

loop:
	for {
		select {
		case env := <-messageChan:
			if limiter != nil && !limiter.Allow() {
				s.collector.MessageRejected("rate_limited")
				s.logger.Warnw("message rate limit exceeded", "connection_id", id, "event", env.Event)
				continue
			}
			s.dispatch(r.Context(), id, env)

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Debugw("ping failed", "connection_id", id, "error", err)
				break loop
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Infow("read error", "connection_id", id, "error", err)
			}
			break loop
		}
	}

	// Unconditional cleanup: there is no explicit leave message in the
	// protocol, disconnection is the only exit.
	s.conns.Unregister(id, conn)
	s.collector.ConnectionClosed()

	if err := s.membership.Disconnect(context.Background(), id); err != nil {
		s.logger.Warnw("disconnect cleanup failed", "connection_id", id, "error", err)
	}

	s.logger.Infow("participant disconnected", "connection_id", id)
}

func (s *WebSocketServer) dispatch(ctx context.Context, id domain.ConnectionID, env Envelope) {
	ctx, span := tracing.TraceSignalEvent(ctx, env.Event, string(id))
	defer span.End()

	s.collector.MessageReceived(env.Event)

	if err := s.handleEvent(ctx, id, env); err != nil {
		// Failures are observed by clients only as "nothing happened";
		// no error frame goes back over the channel.
		tracing.RecordError(ctx, err)
		s.collector.MessageRejected("malformed")
		s.logger.Warnw("failed to handle event",
			"connection_id", id,
			"event", env.Event,
			"error", err,
		)
	}
}

func (s *WebSocketServer) handleEvent(ctx context.Context, id domain.ConnectionID, env Envelope) error {
	switch env.Event {
	case domain.EventCameraJoin:
		var req struct {
			StreamCode   string `json:"streamCode"`
			CameraName   string `json:"cameraName"`
			OperatorName string `json:"operatorName"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid camera:join payload: %w", err)
		}
		s.collector.ParticipantJoined("camera")
		return s.membership.CameraJoin(ctx, id, domain.StreamCode(req.StreamCode), req.CameraName, req.OperatorName)

	case domain.EventCameraReady:
		// The payload repeats the camera id, but the authenticated-enough
		// identity is the connection itself.
		return s.membership.CameraReady(ctx, id)

	case domain.EventDirectorJoin:
		var req struct {
			StreamCode string `json:"streamCode"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid broadcaster:join payload: %w", err)
		}
		s.collector.ParticipantJoined("director")
		return s.membership.DirectorJoin(ctx, id, domain.StreamCode(req.StreamCode))

	case domain.EventViewerJoin:
		var req struct {
			StreamCode string `json:"streamCode"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid viewer:join payload: %w", err)
		}
		s.collector.ParticipantJoined("viewer")
		return s.membership.ViewerJoin(ctx, id, domain.StreamCode(req.StreamCode))

	case domain.EventSetActiveCamera:
		var req struct {
			CameraID   string `json:"cameraId"`
			StreamCode string `json:"streamCode"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid set-active-camera payload: %w", err)
		}
		return s.feed.SetActiveCamera(ctx, id, domain.StreamCode(req.StreamCode), domain.ConnectionID(req.CameraID))

	case domain.EventMatchUpdate:
		var req struct {
			StreamCode string          `json:"streamCode"`
			Data       json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid match:update payload: %w", err)
		}
		return s.feed.PublishBroadcastState(ctx, domain.StreamCode(req.StreamCode), req.Data)

	case domain.EventDirectorMessage:
		var req struct {
			CameraID string          `json:"cameraId"`
			Message  json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid broadcaster:message payload: %w", err)
		}
		s.relay.ForwardDirectorMessage(ctx, id, domain.ConnectionID(req.CameraID), req.Message)
		return nil

	case domain.EventOffer:
		var req struct {
			To    string          `json:"to"`
			Offer json.RawMessage `json:"offer"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid webrtc:offer payload: %w", err)
		}
		s.relay.ForwardOffer(ctx, id, domain.ConnectionID(req.To), req.Offer)
		return nil

	case domain.EventAnswer:
		var req struct {
			To     string          `json:"to"`
			Answer json.RawMessage `json:"answer"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid webrtc:answer payload: %w", err)
		}
		s.relay.ForwardAnswer(ctx, id, domain.ConnectionID(req.To), req.Answer)
		return nil

	case domain.EventICECandidate:
		var req struct {
			To        string          `json:"to"`
			Candidate json.RawMessage `json:"candidate"`
		}
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return fmt.Errorf("invalid webrtc:ice-candidate payload: %w", err)
		}
		s.relay.ForwardICECandidate(ctx, id, domain.ConnectionID(req.To), req.Candidate)
		return nil

	default:
		return fmt.Errorf("unknown event: %s", env.Event)
	}
}
