package services

import (
	"context"
	"encoding/json"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"

	"go.uber.org/zap"
)

// relayService forwards signaling payloads between two named participants
// without interpreting their contents. Delivery is best-effort: a target
// that is no longer connected means the message is silently dropped, which
// keeps the relay independent of the peers' protocol version.
type relayService struct {
	messenger ports.Messenger
	logger    *zap.SugaredLogger
}

func NewRelayService(messenger ports.Messenger, logger *zap.SugaredLogger) ports.RelayService {
	return &relayService{
		messenger: messenger,
		logger:    logger,
	}
}

func (s *relayService) ForwardOffer(ctx context.Context, from, to domain.ConnectionID, offer json.RawMessage) {
	s.logger.Debugw("routing offer", "from", from, "to", to, "sdp_bytes", len(offer))
	s.messenger.SendTo(to, domain.EventOffer, domain.OfferPayload{From: from, Offer: offer})
}

func (s *relayService) ForwardAnswer(ctx context.Context, from, to domain.ConnectionID, answer json.RawMessage) {
	s.logger.Debugw("routing answer", "from", from, "to", to, "sdp_bytes", len(answer))
	s.messenger.SendTo(to, domain.EventAnswer, domain.AnswerPayload{From: from, Answer: answer})
}

func (s *relayService) ForwardICECandidate(ctx context.Context, from, to domain.ConnectionID, candidate json.RawMessage) {
	s.logger.Debugw("routing ice candidate", "from", from, "to", to)
	s.messenger.SendTo(to, domain.EventICECandidate, domain.ICECandidatePayload{From: from, Candidate: candidate})
}

func (s *relayService) ForwardDirectorMessage(ctx context.Context, from, cameraID domain.ConnectionID, message json.RawMessage) {
	s.logger.Debugw("routing director message", "from", from, "to", cameraID)
	s.messenger.SendTo(cameraID, domain.EventDirectorMessage, domain.DirectorMessagePayload{From: from, Message: message})
}
