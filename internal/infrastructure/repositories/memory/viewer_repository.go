package memory

import (
	"context"
	"fmt"
	"sync"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"
)

type MemoryViewerRepository struct {
	viewers  map[domain.ConnectionID]*domain.Viewer
	byStream map[domain.StreamCode]map[domain.ConnectionID]struct{}
	mu       sync.RWMutex
}

func NewMemoryViewerRepository() ports.ViewerRepository {
	return &MemoryViewerRepository{
		viewers:  make(map[domain.ConnectionID]*domain.Viewer),
		byStream: make(map[domain.StreamCode]map[domain.ConnectionID]struct{}),
	}
}

func (r *MemoryViewerRepository) Add(ctx context.Context, viewer *domain.Viewer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.viewers[viewer.ID]; exists {
		return fmt.Errorf("viewer already exists: %s", viewer.ID)
	}

	stored := *viewer
	r.viewers[stored.ID] = &stored
	if _, ok := r.byStream[viewer.StreamCode]; !ok {
		r.byStream[viewer.StreamCode] = make(map[domain.ConnectionID]struct{})
	}
	r.byStream[viewer.StreamCode][viewer.ID] = struct{}{}
	return nil
}

func (r *MemoryViewerRepository) GetByID(ctx context.Context, id domain.ConnectionID) (*domain.Viewer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	viewer, exists := r.viewers[id]
	if !exists {
		return nil, domain.ErrViewerNotFound
	}
	snapshot := *viewer
	return &snapshot, nil
}

func (r *MemoryViewerRepository) Remove(ctx context.Context, id domain.ConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	viewer, exists := r.viewers[id]
	if !exists {
		return domain.ErrViewerNotFound
	}

	delete(r.viewers, id)
	if ids, ok := r.byStream[viewer.StreamCode]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byStream, viewer.StreamCode)
		}
	}
	return nil
}

func (r *MemoryViewerRepository) FindByStream(ctx context.Context, code domain.StreamCode) ([]*domain.Viewer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var viewers []*domain.Viewer
	for id := range r.byStream[code] {
		if viewer, ok := r.viewers[id]; ok {
			snapshot := *viewer
			viewers = append(viewers, &snapshot)
		}
	}
	return viewers, nil
}

func (r *MemoryViewerRepository) CountByStream(ctx context.Context, code domain.StreamCode) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byStream[code]), nil
}
