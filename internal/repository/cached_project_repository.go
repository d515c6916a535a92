package repository

import (
	"context"

	"github.com/guillecolu/machinetrack-api/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedProjectRepository keeps recently used project documents in memory
// and writes through to the wrapped repository. Callers always receive
// copies, so mutating a returned project never touches the cache.
type CachedProjectRepository struct {
	inner ProjectRepository
	cache *lru.Cache[string, *models.Project]
}

// NewCachedProjectRepository wraps inner with an LRU of the given size.
// A size of zero disables caching and returns inner unchanged.
func NewCachedProjectRepository(inner ProjectRepository, size int) (ProjectRepository, error) {
	if size <= 0 {
		return inner, nil
	}
	cache, err := lru.New[string, *models.Project](size)
	if err != nil {
		return nil, err
	}
	return &CachedProjectRepository{inner: inner, cache: cache}, nil
}

func (r *CachedProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.inner.Create(ctx, project); err != nil {
		return err
	}
	r.cache.Add(project.ID, project.Clone())
	return nil
}

func (r *CachedProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached.Clone(), nil
	}
	project, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, project.Clone())
	return project, nil
}

// List always reads from the backing store.
func (r *CachedProjectRepository) List(ctx context.Context, page, pageSize int) ([]models.Project, int64, error) {
	return r.inner.List(ctx, page, pageSize)
}

// Put drops the cached entry when the write fails: the store still holds
// the previous document and the cache must not claim otherwise.
func (r *CachedProjectRepository) Put(ctx context.Context, project *models.Project) error {
	if err := r.inner.Put(ctx, project); err != nil {
		r.cache.Remove(project.ID)
		return err
	}
	r.cache.Add(project.ID, project.Clone())
	return nil
}

// RemovePart follows the same rule as Put.
func (r *CachedProjectRepository) RemovePart(ctx context.Context, project *models.Project, partID string) error {
	if err := r.inner.RemovePart(ctx, project, partID); err != nil {
		r.cache.Remove(project.ID)
		return err
	}
	r.cache.Add(project.ID, project.Clone())
	return nil
}

func (r *CachedProjectRepository) Delete(ctx context.Context, id string) error {
	r.cache.Remove(id)
	return r.inner.Delete(ctx, id)
}

// Len reports how many projects are cached.
func (r *CachedProjectRepository) Len() int {
	return r.cache.Len()
}
