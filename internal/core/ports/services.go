package ports

import (
	"context"
	"encoding/json"

	"aircast/internal/core/domain"
)

// Messenger is the one-way notify capability of the transport layer.
// Delivery is fire-and-forget: sending to a ConnectionID that is no longer
// connected is a silent no-op, never an error.
type Messenger interface {
	SendTo(id domain.ConnectionID, event string, payload interface{})
}

type MembershipService interface {
	CameraJoin(ctx context.Context, id domain.ConnectionID, code domain.StreamCode, name, operator string) error
	CameraReady(ctx context.Context, id domain.ConnectionID) error
	DirectorJoin(ctx context.Context, id domain.ConnectionID, code domain.StreamCode) error
	ViewerJoin(ctx context.Context, id domain.ConnectionID, code domain.StreamCode) error
	// Disconnect removes id from whichever keyspaces hold it and notifies
	// dependent participants. Safe to call for ids that never joined.
	Disconnect(ctx context.Context, id domain.ConnectionID) error
	CameraRoster(ctx context.Context, code domain.StreamCode) ([]domain.CameraInfo, error)
	ViewerCount(ctx context.Context, code domain.StreamCode) (int, error)
}

type FeedService interface {
	SetActiveCamera(ctx context.Context, directorID domain.ConnectionID, code domain.StreamCode, cameraID domain.ConnectionID) error
	PublishBroadcastState(ctx context.Context, code domain.StreamCode, data json.RawMessage) error
}

type RelayService interface {
	ForwardOffer(ctx context.Context, from, to domain.ConnectionID, offer json.RawMessage)
	ForwardAnswer(ctx context.Context, from, to domain.ConnectionID, answer json.RawMessage)
	ForwardICECandidate(ctx context.Context, from, to domain.ConnectionID, candidate json.RawMessage)
	ForwardDirectorMessage(ctx context.Context, from, cameraID domain.ConnectionID, message json.RawMessage)
}
