package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"
)

type MemoryCameraRepository struct {
	cameras  map[domain.ConnectionID]*domain.Camera
	byStream map[domain.StreamCode]map[domain.ConnectionID]struct{}
	mu       sync.RWMutex
}

func NewMemoryCameraRepository() ports.CameraRepository {
	return &MemoryCameraRepository{
		cameras:  make(map[domain.ConnectionID]*domain.Camera),
		byStream: make(map[domain.StreamCode]map[domain.ConnectionID]struct{}),
	}
}

func (r *MemoryCameraRepository) Add(ctx context.Context, camera *domain.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cameras[camera.ID]; exists {
		return fmt.Errorf("camera already exists: %s", camera.ID)
	}

	// The repository owns its structs; callers only ever hold snapshots.
	// This keeps reads race-free against SetStatus under the
	// goroutine-per-connection model.
	stored := *camera
	r.cameras[stored.ID] = &stored
	if _, ok := r.byStream[camera.StreamCode]; !ok {
		r.byStream[camera.StreamCode] = make(map[domain.ConnectionID]struct{})
	}
	r.byStream[camera.StreamCode][camera.ID] = struct{}{}
	return nil
}

func (r *MemoryCameraRepository) GetByID(ctx context.Context, id domain.ConnectionID) (*domain.Camera, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	camera, exists := r.cameras[id]
	if !exists {
		return nil, domain.ErrCameraNotFound
	}
	snapshot := *camera
	return &snapshot, nil
}

func (r *MemoryCameraRepository) Remove(ctx context.Context, id domain.ConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	camera, exists := r.cameras[id]
	if !exists {
		return domain.ErrCameraNotFound
	}

	delete(r.cameras, id)
	if ids, ok := r.byStream[camera.StreamCode]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byStream, camera.StreamCode)
		}
	}
	return nil
}

func (r *MemoryCameraRepository) FindByStream(ctx context.Context, code domain.StreamCode) ([]*domain.Camera, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cameras []*domain.Camera
	for id := range r.byStream[code] {
		if camera, ok := r.cameras[id]; ok {
			snapshot := *camera
			cameras = append(cameras, &snapshot)
		}
	}

	// Stable roster order for joining directors
	sort.Slice(cameras, func(i, j int) bool {
		if cameras[i].JoinedAt.Equal(cameras[j].JoinedAt) {
			return cameras[i].ID < cameras[j].ID
		}
		return cameras[i].JoinedAt.Before(cameras[j].JoinedAt)
	})
	return cameras, nil
}

func (r *MemoryCameraRepository) SetStatus(ctx context.Context, id domain.ConnectionID, status domain.CameraStatus) (*domain.Camera, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	camera, exists := r.cameras[id]
	if !exists {
		return nil, domain.ErrCameraNotFound
	}
	camera.Status = status
	snapshot := *camera
	return &snapshot, nil
}
