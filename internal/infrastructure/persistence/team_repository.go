package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/team"
)

// GormTeamRepository implements team.Repository using GORM
type GormTeamRepository struct {
	db *gorm.DB
}

var _ team.Repository = (*GormTeamRepository)(nil)

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

// Create persists a new team
func (r *GormTeamRepository) Create(ctx context.Context, t *team.Team) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Update persists changes to an existing team
func (r *GormTeamRepository) Update(ctx context.Context, t *team.Team) error {
	result := r.db.WithContext(ctx).Model(t).
		Select("Name", "Description", "UpdatedAt").
		Updates(t)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a team by ID
func (r *GormTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&team.Team{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID retrieves a team by its ID, including members
func (r *GormTeamRepository) FindByID(ctx context.Context, id uuid.UUID) (*team.Team, error) {
	var t team.Team
	if err := r.db.WithContext(ctx).Preload("Members").First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindAll retrieves all teams
func (r *GormTeamRepository) FindAll(ctx context.Context) ([]*team.Team, error) {
	var teams []*team.Team
	err := r.db.WithContext(ctx).
		Preload("Members").
		Order("created_at ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// FindByUserID retrieves all teams the given user belongs to
func (r *GormTeamRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*team.Team, error) {
	var teams []*team.Team
	err := r.db.WithContext(ctx).
		Preload("Members").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.created_at ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember persists a team membership
func (r *GormTeamRepository) AddMember(ctx context.Context, m team.TeamMember) error {
	return r.db.WithContext(ctx).Create(&m).Error
}

// RemoveMember removes a team membership
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&team.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HasMember reports whether a user is a member of a team
func (r *GormTeamRepository) HasMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&team.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
