package repository

import (
	"context"

	"github.com/guillecolu/machinetrack-api/internal/database"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create stores a new project document
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID loads a project document
func (r *GormProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns projects ordered by creation, newest first
func (r *GormProjectRepository) List(ctx context.Context, page, pageSize int) ([]models.Project, int64, error) {
	projects := []models.Project{}
	query := r.db.WithContext(ctx).Model(&models.Project{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := utils.NewPaginationParams(page, pageSize)
	if err := query.Order("created_at DESC").Scopes(database.Paginate(params)).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Put overwrites an existing project document. The row is checked inside
// the same transaction so a concurrently deleted project is not recreated.
func (r *GormProjectRepository) Put(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return putProject(tx, project)
	})
}

// RemovePart soft deletes the part's tasks and writes the project. Nothing
// is changed when either step fails.
func (r *GormProjectRepository) RemovePart(ctx context.Context, project *models.Project, partID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND part_id = ?", project.ID, partID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return putProject(tx, project)
	})
}

func putProject(tx *gorm.DB, project *models.Project) error {
	var existing models.Project
	if err := tx.Select("id", "created_at").Where("id = ?", project.ID).First(&existing).Error; err != nil {
		return err
	}
	project.CreatedAt = existing.CreatedAt

	return tx.Save(project).Error
}

// Delete removes a project with its tasks and reports in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
