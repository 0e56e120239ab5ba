package services

import (
	"context"
	"encoding/json"
	"errors"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"

	"go.uber.org/zap"
)

type feedService struct {
	directors ports.DirectorRepository
	viewers   ports.ViewerRepository
	messenger ports.Messenger
	logger    *zap.SugaredLogger
}

func NewFeedService(
	directors ports.DirectorRepository,
	viewers ports.ViewerRepository,
	messenger ports.Messenger,
	logger *zap.SugaredLogger,
) ports.FeedService {
	return &feedService{
		directors: directors,
		viewers:   viewers,
		messenger: messenger,
		logger:    logger,
	}
}

// SetActiveCamera overwrites the director's selection unconditionally and
// re-notifies every current viewer, even when the camera id is unchanged.
// The camera is deliberately not validated against the stream or its status;
// the director is trusted to select from its own roster.
func (s *feedService) SetActiveCamera(ctx context.Context, directorID domain.ConnectionID, code domain.StreamCode, cameraID domain.ConnectionID) error {
	if _, err := s.directors.SetActiveCamera(ctx, directorID, cameraID); err != nil {
		if errors.Is(err, domain.ErrDirectorNotFound) {
			// Switch racing the director's own disconnect
			return nil
		}
		return err
	}

	viewers, err := s.viewers.FindByStream(ctx, code)
	if err != nil {
		return err
	}

	for _, viewer := range viewers {
		s.messenger.SendTo(viewer.ID, domain.EventActiveCamera, domain.ActiveCameraPayload{
			CameraID: cameraID,
		})
	}

	s.logger.Infow("active camera changed",
		"director_id", directorID,
		"stream_code", code,
		"camera_id", cameraID,
		"viewers_notified", len(viewers),
	)
	return nil
}

// PublishBroadcastState pushes a full state snapshot to every viewer of the
// broadcast. No diffing and no delivery confirmation; each call stands alone.
func (s *feedService) PublishBroadcastState(ctx context.Context, code domain.StreamCode, data json.RawMessage) error {
	viewers, err := s.viewers.FindByStream(ctx, code)
	if err != nil {
		return err
	}

	payload := domain.MatchUpdatePayload{StreamCode: code, Data: data}
	for _, viewer := range viewers {
		s.messenger.SendTo(viewer.ID, domain.EventMatchUpdate, payload)
	}

	s.logger.Debugw("broadcast state published",
		"stream_code", code,
		"viewers_notified", len(viewers),
		"payload_bytes", len(data),
	)
	return nil
}
