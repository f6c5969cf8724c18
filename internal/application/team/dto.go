package team

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/team"
)

// CreateTeamRequest is the input for creating a team
type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// UpdateTeamRequest is the input for updating a team
type UpdateTeamRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// AddMemberRequest is the input for adding a member to a team
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// TeamResponse is the public view of a team
type TeamResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	MemberIDs   []uuid.UUID `json:"member_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToTeamResponse converts a domain team to its response representation
func ToTeamResponse(t *team.Team) TeamResponse {
	return TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		MemberIDs:   t.MemberIDs(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTeamResponses converts a slice of domain teams
func ToTeamResponses(teams []*team.Team) []TeamResponse {
	out := make([]TeamResponse, len(teams))
	for i, t := range teams {
		out[i] = ToTeamResponse(t)
	}
	return out
}
