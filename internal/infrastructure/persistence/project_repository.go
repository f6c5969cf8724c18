package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskfabric/backend/internal/domain/project"
	"github.com/taskfabric/backend/internal/domain/shared"
)

// GormProjectRepository implements project.Repository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

var _ project.Repository = (*GormProjectRepository)(nil)

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create persists a new project
func (r *GormProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update persists changes to an existing project
func (r *GormProjectRepository) Update(ctx context.Context, p *project.Project) error {
	result := r.db.WithContext(ctx).Model(p).
		Select("Name", "Description", "Status", "ProjectManagerID", "UpdatedAt").
		Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a project by ID
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&project.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID retrieves a project by its ID, including assigned teams
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).Preload("Teams").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByManagerID retrieves all projects managed by the given user
func (r *GormProjectRepository) FindByManagerID(ctx context.Context, managerID uuid.UUID) ([]*project.Project, error) {
	var projects []*project.Project
	err := r.db.WithContext(ctx).
		Preload("Teams").
		Where("project_manager_id = ?", managerID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// FindByTeamID retrieves all projects a team is assigned to
func (r *GormProjectRepository) FindByTeamID(ctx context.Context, teamID uuid.UUID) ([]*project.Project, error) {
	var projects []*project.Project
	err := r.db.WithContext(ctx).
		Preload("Teams").
		Joins("JOIN project_teams ON project_teams.project_id = projects.id").
		Where("project_teams.team_id = ?", teamID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Search retrieves projects matching the filter
func (r *GormProjectRepository) Search(ctx context.Context, filter project.SearchFilter) ([]*project.Project, error) {
	query := r.db.WithContext(ctx).Preload("Teams").Model(&project.Project{})
	if filter.Name != nil && *filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+*filter.Name+"%")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var projects []*project.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// AddTeam persists a project-team assignment
func (r *GormProjectRepository) AddTeam(ctx context.Context, link project.ProjectTeam) error {
	return r.db.WithContext(ctx).Create(&link).Error
}
