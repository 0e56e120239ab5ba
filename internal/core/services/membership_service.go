package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"

	"go.uber.org/zap"
)

type membershipService struct {
	cameras   ports.CameraRepository
	directors ports.DirectorRepository
	viewers   ports.ViewerRepository
	messenger ports.Messenger
	logger    *zap.SugaredLogger
}

func NewMembershipService(
	cameras ports.CameraRepository,
	directors ports.DirectorRepository,
	viewers ports.ViewerRepository,
	messenger ports.Messenger,
	logger *zap.SugaredLogger,
) ports.MembershipService {
	return &membershipService{
		cameras:   cameras,
		directors: directors,
		viewers:   viewers,
		messenger: messenger,
		logger:    logger,
	}
}

func (s *membershipService) CameraJoin(ctx context.Context, id domain.ConnectionID, code domain.StreamCode, name, operator string) error {
	camera := &domain.Camera{
		ID:         id,
		StreamCode: code,
		Name:       name,
		Operator:   operator,
		Status:     domain.CameraStatusConnecting,
		JoinedAt:   time.Now(),
	}

	if err := s.cameras.Add(ctx, camera); err != nil {
		return fmt.Errorf("failed to register camera: %w", err)
	}

	s.logger.Infow("camera joined",
		"camera_id", id,
		"stream_code", code,
		"name", name,
		"operator", operator,
	)

	// A director that joined earlier learns about the new camera right away.
	// No director yet is fine; it picks up the roster on its own join.
	if director, err := s.directors.FindByStream(ctx, code); err == nil {
		s.messenger.SendTo(director.ID, domain.EventCameraNew, domain.CameraNewPayload{
			CameraID: id,
			Name:     name,
			Operator: operator,
		})
	}

	// Ack with the camera's addressable identity for peer negotiation
	s.messenger.SendTo(id, domain.EventCameraJoined, domain.CameraJoinedPayload{CameraID: id})
	return nil
}

func (s *membershipService) CameraReady(ctx context.Context, id domain.ConnectionID) error {
	camera, err := s.cameras.SetStatus(ctx, id, domain.CameraStatusLive)
	if err != nil {
		if errors.Is(err, domain.ErrCameraNotFound) {
			// Readiness racing a disconnect; nothing to do
			return nil
		}
		return err
	}

	s.logger.Infow("camera ready", "camera_id", id, "stream_code", camera.StreamCode)

	// Repeated ready signals re-notify; the director UI treats the update
	// as idempotent.
	if director, err := s.directors.FindByStream(ctx, camera.StreamCode); err == nil {
		s.messenger.SendTo(director.ID, domain.EventCameraStatus, domain.CameraStatusPayload{
			CameraID: id,
			Status:   domain.CameraStatusLive,
		})
	}
	return nil
}

func (s *membershipService) DirectorJoin(ctx context.Context, id domain.ConnectionID, code domain.StreamCode) error {
	director := &domain.Director{
		ID:         id,
		StreamCode: code,
		JoinedAt:   time.Now(),
	}

	if err := s.directors.Add(ctx, director); err != nil {
		return fmt.Errorf("failed to register director: %w", err)
	}

	s.logger.Infow("director joined", "director_id", id, "stream_code", code)

	// Pull, not a subscription: the roster snapshot is how the director
	// learns about cameras that joined before it.
	roster, err := s.CameraRoster(ctx, code)
	if err != nil {
		return err
	}
	s.messenger.SendTo(id, domain.EventDirectorCameras, domain.CameraRosterPayload{Cameras: roster})
	return nil
}

func (s *membershipService) ViewerJoin(ctx context.Context, id domain.ConnectionID, code domain.StreamCode) error {
	viewer := &domain.Viewer{
		ID:         id,
		StreamCode: code,
		JoinedAt:   time.Now(),
	}

	if err := s.viewers.Add(ctx, viewer); err != nil {
		return fmt.Errorf("failed to register viewer: %w", err)
	}

	s.logger.Infow("viewer joined", "viewer_id", id, "stream_code", code)

	// Late joiners must not wait for the next switch event to start
	// negotiating with the current feed.
	if director, err := s.directors.FindByStream(ctx, code); err == nil && director.ActiveCameraID != "" {
		s.messenger.SendTo(id, domain.EventActiveCamera, domain.ActiveCameraPayload{
			CameraID: director.ActiveCameraID,
		})
	}

	s.broadcastViewerCount(ctx, code)
	return nil
}

func (s *membershipService) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	// A connection's role is not tracked outside the registries, so every
	// keyspace is checked. The checks are independent and order-insensitive.
	if camera, err := s.cameras.GetByID(ctx, id); err == nil {
		if err := s.cameras.Remove(ctx, id); err != nil && !errors.Is(err, domain.ErrCameraNotFound) {
			s.logger.Warnw("failed to remove camera", "camera_id", id, "error", err)
		}
		s.logger.Infow("camera disconnected", "camera_id", id, "stream_code", camera.StreamCode)

		// The director keeps a stale ActiveCameraID if the active camera
		// drops; there is no clear operation in the protocol.
		if director, err := s.directors.FindByStream(ctx, camera.StreamCode); err == nil {
			s.messenger.SendTo(director.ID, domain.EventCameraGone, domain.CameraGonePayload{CameraID: id})
		}
	}

	if director, err := s.directors.GetByID(ctx, id); err == nil {
		if err := s.directors.Remove(ctx, id); err != nil && !errors.Is(err, domain.ErrDirectorNotFound) {
			s.logger.Warnw("failed to remove director", "director_id", id, "error", err)
		}
		// Cameras and viewers are not told; the stream is presumed ending.
		s.logger.Infow("director disconnected", "director_id", id, "stream_code", director.StreamCode)
	}

	if viewer, err := s.viewers.GetByID(ctx, id); err == nil {
		if err := s.viewers.Remove(ctx, id); err != nil && !errors.Is(err, domain.ErrViewerNotFound) {
			s.logger.Warnw("failed to remove viewer", "viewer_id", id, "error", err)
		}
		s.logger.Infow("viewer disconnected", "viewer_id", id, "stream_code", viewer.StreamCode)
		s.broadcastViewerCount(ctx, viewer.StreamCode)
	}

	return nil
}

func (s *membershipService) CameraRoster(ctx context.Context, code domain.StreamCode) ([]domain.CameraInfo, error) {
	cameras, err := s.cameras.FindByStream(ctx, code)
	if err != nil {
		return nil, err
	}

	roster := make([]domain.CameraInfo, 0, len(cameras))
	for _, camera := range cameras {
		roster = append(roster, camera.Info())
	}
	return roster, nil
}

func (s *membershipService) ViewerCount(ctx context.Context, code domain.StreamCode) (int, error) {
	return s.viewers.CountByStream(ctx, code)
}

func (s *membershipService) broadcastViewerCount(ctx context.Context, code domain.StreamCode) {
	count, err := s.viewers.CountByStream(ctx, code)
	if err != nil {
		s.logger.Warnw("failed to count viewers", "stream_code", code, "error", err)
		return
	}

	payload := domain.ViewerCountPayload{StreamCode: code, Count: count}

	viewers, err := s.viewers.FindByStream(ctx, code)
	if err != nil {
		s.logger.Warnw("failed to list viewers", "stream_code", code, "error", err)
		return
	}
	for _, viewer := range viewers {
		s.messenger.SendTo(viewer.ID, domain.EventViewerCount, payload)
	}

	if director, err := s.directors.FindByStream(ctx, code); err == nil {
		s.messenger.SendTo(director.ID, domain.EventViewerCount, payload)
	}
}
