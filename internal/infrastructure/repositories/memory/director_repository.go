package memory

import (
	"context"
	"fmt"
	"sync"

	"aircast/internal/core/domain"
	"aircast/internal/core/ports"
)

type MemoryDirectorRepository struct {
	directors map[domain.ConnectionID]*domain.Director
	byStream  map[domain.StreamCode]domain.ConnectionID
	mu        sync.RWMutex
}

func NewMemoryDirectorRepository() ports.DirectorRepository {
	return &MemoryDirectorRepository{
		directors: make(map[domain.ConnectionID]*domain.Director),
		byStream:  make(map[domain.StreamCode]domain.ConnectionID),
	}
}

func (r *MemoryDirectorRepository) Add(ctx context.Context, director *domain.Director) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.directors[director.ID]; exists {
		return fmt.Errorf("director already exists: %s", director.ID)
	}

	// Stored structs stay private to the repository; reads return snapshots
	// so ActiveCameraID writes cannot race lookups.
	stored := *director
	r.directors[stored.ID] = &stored
	// Last join wins the stream index when two directors share a code
	r.byStream[director.StreamCode] = director.ID
	return nil
}

func (r *MemoryDirectorRepository) GetByID(ctx context.Context, id domain.ConnectionID) (*domain.Director, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	director, exists := r.directors[id]
	if !exists {
		return nil, domain.ErrDirectorNotFound
	}
	snapshot := *director
	return &snapshot, nil
}

func (r *MemoryDirectorRepository) Remove(ctx context.Context, id domain.ConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	director, exists := r.directors[id]
	if !exists {
		return domain.ErrDirectorNotFound
	}

	delete(r.directors, id)
	if r.byStream[director.StreamCode] == id {
		delete(r.byStream, director.StreamCode)
	}
	return nil
}

func (r *MemoryDirectorRepository) FindByStream(ctx context.Context, code domain.StreamCode) (*domain.Director, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byStream[code]
	if !ok {
		return nil, domain.ErrDirectorNotFound
	}
	director, exists := r.directors[id]
	if !exists {
		return nil, domain.ErrDirectorNotFound
	}
	snapshot := *director
	return &snapshot, nil
}

func (r *MemoryDirectorRepository) SetActiveCamera(ctx context.Context, id domain.ConnectionID, cameraID domain.ConnectionID) (*domain.Director, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	director, exists := r.directors[id]
	if !exists {
		return nil, domain.ErrDirectorNotFound
	}
	director.ActiveCameraID = cameraID
	snapshot := *director
	return &snapshot, nil
}
