package vehicle

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Vehicle
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Vehicle)}
}

func (r *memoryRepository) Create(_ context.Context, v Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[v.ID]; exists {
		return errors.New("vehicle exists")
	}
	r.storage[v.ID] = v
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.storage[id]
	if !ok {
		return Vehicle{}, ErrNotFound
	}
	return v, nil
}

func (r *memoryRepository) List(_ context.Context, onlyAvailable bool) ([]Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var vehicles []Vehicle
	for _, v := range r.storage {
		if onlyAvailable && !v.Available {
			continue
		}
		vehicles = append(vehicles, v)
	}
	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].CreatedAt.After(vehicles[j].CreatedAt)
	})
	return vehicles, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}

func (r *memoryRepository) AttachImage(_ context.Context, img Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.storage[img.VehicleID]
	if !ok {
		return ErrNotFound
	}
	v.Images = append(v.Images, img)
	r.storage[img.VehicleID] = v
	return nil
}
