// Package label reads labels produced on the platform.
package label

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labelforge/labelforge-go/graphql"
)

// DefaultFields is the fragment requested when the caller does not ask for
// specific fields.
const DefaultFields = "id jsonResponse labelType secondsToLabel createdAt author { id email }"

type Label struct {
	ID             string          `json:"id"`
	JSONResponse   json.RawMessage `json:"jsonResponse"`
	LabelType      string          `json:"labelType"`
	SecondsToLabel float64         `json:"secondsToLabel"`
	CreatedAt      time.Time       `json:"createdAt"`
	Author         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"author"`
	Asset struct {
		ID         string `json:"id"`
		ExternalID string `json:"externalId"`
	} `json:"asset"`
}

// Where restricts label queries to a project and optional filters.
type Where struct {
	ProjectID    string
	AssetIDIn    []string
	TypeIn       []string
	AuthorIn     []string
	CreatedAtGte string
	CreatedAtLte string
}

func (w Where) variables() map[string]interface{} {
	m := map[string]interface{}{
		"project": map[string]interface{}{"id": w.ProjectID},
	}
	if len(w.AssetIDIn) > 0 {
		m["asset"] = map[string]interface{}{"idIn": w.AssetIDIn}
	}
	if len(w.TypeIn) > 0 {
		m["typeIn"] = w.TypeIn
	}
	if len(w.AuthorIn) > 0 {
		m["authorIn"] = w.AuthorIn
	}
	if w.CreatedAtGte != "" {
		m["createdAtGte"] = w.CreatedAtGte
	}
	if w.CreatedAtLte != "" {
		m["createdAtLte"] = w.CreatedAtLte
	}
	return m
}

type Service struct {
	exec graphql.Executor
}

func NewService(exec graphql.Executor) *Service {
	return &Service{exec: exec}
}

func (s *Service) List(ctx context.Context, where Where, first, skip int, fields ...string) ([]Label, error) {
	fragment := DefaultFields
	if len(fields) > 0 {
		fragment = fields[0]
		for _, f := range fields[1:] {
			fragment += " " + f
		}
	}
	if first <= 0 {
		first = 100
	}

	var payload struct {
		Data []Label `json:"data"`
	}
	vars := map[string]interface{}{
		"where": where.variables(),
		"first": first,
		"skip":  skip,
	}
	if err := s.exec.Execute(ctx, graphql.Labels(fragment), vars, &payload); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return payload.Data, nil
}
