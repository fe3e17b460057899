package project

import (
	"context"
	"fmt"

	"github.com/labelforge/labelforge-go/graphql"
)

type Member struct {
	RoleID string
	Email  string
	UserID string
	Role   string
}

// AppendToRoles adds a user to a project, inviting them to the organization
// first if needed. An empty role defaults to LABELER.
func (s *Service) AppendToRoles(ctx context.Context, projectID, userEmail, role string) ([]Member, error) {
	if role == "" {
		role = RoleLabeler
	}
	vars := map[string]interface{}{
		"data":  map[string]interface{}{"role": role, "userEmail": userEmail},
		"where": map[string]interface{}{"id": projectID},
	}

	var payload struct {
		Data struct {
			ID    string `json:"id"`
			Roles []struct {
				ID   string `json:"id"`
				Role string `json:"role"`
				User struct {
					ID    string `json:"id"`
					Email string `json:"email"`
				} `json:"user"`
			} `json:"roles"`
		} `json:"data"`
	}
	if err := s.exec.Execute(ctx, graphql.AppendToRoles, vars, &payload); err != nil {
		return nil, fmt.Errorf("append to roles: %w", err)
	}

	members := make([]Member, 0, len(payload.Data.Roles))
	for _, r := range payload.Data.Roles {
		members = append(members, Member{
			RoleID: r.ID,
			Email:  r.User.Email,
			UserID: r.User.ID,
			Role:   r.Role,
		})
	}
	return members, nil
}

// UpdateRole changes the role of a project member.
func (s *Service) UpdateRole(ctx context.Context, roleID, projectID, userID, role string) error {
	vars := map[string]interface{}{
		"roleID":    roleID,
		"projectID": projectID,
		"userID":    userID,
		"role":      role,
	}
	if err := s.exec.Execute(ctx, graphql.UpdatePropertiesInRole, vars, nil); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// DeleteFromRoles removes a project member by role id (not user id).
func (s *Service) DeleteFromRoles(ctx context.Context, roleID string) error {
	vars := map[string]interface{}{"where": map[string]interface{}{"id": roleID}}
	if err := s.exec.Execute(ctx, graphql.DeleteFromRoles, vars, nil); err != nil {
		return fmt.Errorf("delete from roles: %w", err)
	}
	return nil
}
