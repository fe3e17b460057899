package project

import (
	"context"
	"fmt"
	"time"

	"github.com/labelforge/labelforge-go/graphql"
)

// Version is a frozen snapshot of project labels, downloadable via Content.
type Version struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	ProjectID string    `json:"projectId"`
}

func (s *Service) ListVersions(ctx context.Context, projectID string, first, skip int) ([]Version, error) {
	if first <= 0 {
		first = 100
	}
	vars := map[string]interface{}{
		"where": map[string]interface{}{"projectId": projectID},
		"first": first,
		"skip":  skip,
	}

	var payload struct {
		Data []Version `json:"data"`
	}
	if err := s.exec.Execute(ctx, graphql.ProjectVersions, vars, &payload); err != nil {
		return nil, fmt.Errorf("list project versions: %w", err)
	}
	return payload.Data, nil
}

// UpdateVersion sets the download link of a project version.
func (s *Service) UpdateVersion(ctx context.Context, versionID string, content *string) (*Version, error) {
	vars := map[string]interface{}{"id": versionID}
	if content != nil {
		vars["content"] = *content
	}

	var payload struct {
		Data Version `json:"data"`
	}
	if err := s.exec.Execute(ctx, graphql.UpdatePropertiesInProjectVersion, vars, &payload); err != nil {
		return nil, fmt.Errorf("update project version: %w", err)
	}
	return &payload.Data, nil
}
