package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/project"
)

// CreateProjectRequest is the input for creating a project
type CreateProjectRequest struct {
	Name             string    `json:"name" binding:"required,max=255"`
	Description      string    `json:"description"`
	Status           string    `json:"status" binding:"required"`
	ProjectManagerID uuid.UUID `json:"project_manager_id" binding:"required"`
}

// UpdateProjectRequest is the input for updating a project
type UpdateProjectRequest struct {
	Name             string    `json:"name" binding:"required,max=255"`
	Description      string    `json:"description"`
	Status           string    `json:"status" binding:"required"`
	ProjectManagerID uuid.UUID `json:"project_manager_id" binding:"required"`
}

// UpdateStatusRequest is the input for a project status transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddTeamRequest is the input for assigning a team to a project
type AddTeamRequest struct {
	TeamID uuid.UUID `json:"team_id" binding:"required"`
}

// SearchRequest narrows a project search; empty fields match everything
type SearchRequest struct {
	Name   string `form:"name"`
	Status string `form:"status"`
}

// ProjectResponse is the public view of a project
type ProjectResponse struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Status           project.Status `json:"status"`
	ProjectManagerID uuid.UUID      `json:"project_manager_id"`
	TeamIDs          []uuid.UUID    `json:"team_ids"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ToProjectResponse converts a domain project to its response representation
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Status:           p.Status,
		ProjectManagerID: p.ProjectManagerID,
		TeamIDs:          p.TeamIDs(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToProjectResponses converts a slice of domain projects
func ToProjectResponses(projects []*project.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		out[i] = ToProjectResponse(p)
	}
	return out
}
