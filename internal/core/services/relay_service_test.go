package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"aircast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardOfferTagsSender(t *testing.T) {
	recorder, svc := newServices(t)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0..."}`)
	svc.Relay.ForwardOffer(context.Background(), "view-1", "cam-1", offer)

	forwarded := recorder.messages("cam-1", domain.EventOffer)
	require.Len(t, forwarded, 1)
	payload := forwarded[0].Payload.(domain.OfferPayload)
	assert.Equal(t, domain.ConnectionID("view-1"), payload.From)
	assert.JSONEq(t, string(offer), string(payload.Offer))
}

func TestForwardAnswerTagsSender(t *testing.T) {
	recorder, svc := newServices(t)

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0..."}`)
	svc.Relay.ForwardAnswer(context.Background(), "cam-1", "view-1", answer)

	forwarded := recorder.messages("view-1", domain.EventAnswer)
	require.Len(t, forwarded, 1)
	payload := forwarded[0].Payload.(domain.AnswerPayload)
	assert.Equal(t, domain.ConnectionID("cam-1"), payload.From)
	assert.JSONEq(t, string(answer), string(payload.Answer))
}

func TestForwardICECandidatePassesPayloadVerbatim(t *testing.T) {
	recorder, svc := newServices(t)

	// The relay never parses the candidate; any JSON shape passes through
	candidate := json.RawMessage(`{"candidate":"candidate:1 1 UDP 2122252543 192.0.2.1 54321 typ host","sdpMid":"0"}`)
	svc.Relay.ForwardICECandidate(context.Background(), "view-1", "cam-1", candidate)

	forwarded := recorder.messages("cam-1", domain.EventICECandidate)
	require.Len(t, forwarded, 1)
	payload := forwarded[0].Payload.(domain.ICECandidatePayload)
	assert.JSONEq(t, string(candidate), string(payload.Candidate))
}

func TestForwardDirectorMessage(t *testing.T) {
	recorder, svc := newServices(t)

	message := json.RawMessage(`{"action":"zoom","level":2}`)
	svc.Relay.ForwardDirectorMessage(context.Background(), "dir-1", "cam-1", message)

	forwarded := recorder.messages("cam-1", domain.EventDirectorMessage)
	require.Len(t, forwarded, 1)
	payload := forwarded[0].Payload.(domain.DirectorMessagePayload)
	assert.Equal(t, domain.ConnectionID("dir-1"), payload.From)
	assert.JSONEq(t, string(message), string(payload.Message))
}
