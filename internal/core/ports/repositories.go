package ports

import (
	"context"

	"aircast/internal/core/domain"
)

// The three keyspaces are independent: a ConnectionID present in one has no
// relationship to the same value in another.

type CameraRepository interface {
	Add(ctx context.Context, camera *domain.Camera) error
	GetByID(ctx context.Context, id domain.ConnectionID) (*domain.Camera, error)
	Remove(ctx context.Context, id domain.ConnectionID) error
	FindByStream(ctx context.Context, code domain.StreamCode) ([]*domain.Camera, error)
	SetStatus(ctx context.Context, id domain.ConnectionID, status domain.CameraStatus) (*domain.Camera, error)
}

type DirectorRepository interface {
	Add(ctx context.Context, director *domain.Director) error
	GetByID(ctx context.Context, id domain.ConnectionID) (*domain.Director, error)
	Remove(ctx context.Context, id domain.ConnectionID) error
	// FindByStream returns the director for a broadcast, or
	// domain.ErrDirectorNotFound. One director per streamCode is expected
	// but not enforced; with several, the most recent join wins.
	FindByStream(ctx context.Context, code domain.StreamCode) (*domain.Director, error)
	SetActiveCamera(ctx context.Context, id domain.ConnectionID, cameraID domain.ConnectionID) (*domain.Director, error)
}

type ViewerRepository interface {
	Add(ctx context.Context, viewer *domain.Viewer) error
	GetByID(ctx context.Context, id domain.ConnectionID) (*domain.Viewer, error)
	Remove(ctx context.Context, id domain.ConnectionID) error
	FindByStream(ctx context.Context, code domain.StreamCode) ([]*domain.Viewer, error)
	CountByStream(ctx context.Context, code domain.StreamCode) (int, error)
}
