// Package project exposes the project lifecycle: creation, settings,
// archival, deletion, members and versions.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/labelforge/labelforge-go/graphql"
)

// Input types accepted by the platform.
const (
	InputTypeImage = "IMAGE"
	InputTypePDF   = "PDF"
	InputTypeText  = "TEXT"
	InputTypeVideo = "VIDEO"
)

// Member roles.
const (
	RoleAdmin       = "ADMIN"
	RoleTeamManager = "TEAM_MANAGER"
	RoleReviewer    = "REVIEWER"
	RoleLabeler     = "LABELER"
)

var (
	ErrNotFound = errors.New("project not found")

	// creation is eventually consistent; Create polls until the project is
	// readable or this deadline passes.
	createPollDeadline = 60 * time.Second
	createPollInterval = time.Second
)

// DefaultFields is the fragment requested when the caller does not ask for
// specific fields.
const DefaultFields = "id title description inputType jsonInterface numberOfAssets archived"

type Project struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	InputType      string          `json:"inputType"`
	JSONInterface  json.RawMessage `json:"jsonInterface"`
	NumberOfAssets int             `json:"numberOfAssets"`
	Archived       bool            `json:"archived"`
}

type CreateInput struct {
	InputType     string
	JSONInterface map[string]interface{}
	Title         string
	Description   string
	ProjectType   string
}

// UpdateInput carries optional project settings; nil fields are left
// untouched server side.
type UpdateInput struct {
	CanNavigateBetweenAssets     *bool
	CanSkipAsset                 *bool
	ConsensusMark                *float64
	ConsensusTotCoverage         *int
	Description                  *string
	HoneypotMark                 *float64
	InputType                    *string
	Instructions                 *string
	JSONInterface                map[string]interface{}
	MetadataTypes                map[string]string
	MinConsensusSize             *int
	ReviewCoverage               *int
	ShouldRelaunchKpiComputation *bool
	Title                        *string
	UseHoneypot                  *bool
}

// Where restricts project queries.
type Where struct {
	ProjectID    string
	SearchQuery  string
	UpdatedAtGte string
	UpdatedAtLte string
}

func (w Where) variables() map[string]interface{} {
	m := map[string]interface{}{}
	if w.ProjectID != "" {
		m["id"] = w.ProjectID
	}
	if w.SearchQuery != "" {
		m["searchQuery"] = w.SearchQuery
	}
	if w.UpdatedAtGte != "" {
		m["updatedAtGte"] = w.UpdatedAtGte
	}
	if w.UpdatedAtLte != "" {
		m["updatedAtLte"] = w.UpdatedAtLte
	}
	return m
}

type Service struct {
	exec graphql.Executor
}

func NewService(exec graphql.Executor) *Service {
	return &Service{exec: exec}
}

// Create creates a project and waits until it is readable.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Project, error) {
	if in.Title == "" {
		return nil, errors.New("project title is required")
	}
	iface, err := json.Marshal(in.JSONInterface)
	if err != nil {
		return nil, fmt.Errorf("encode json interface: %w", err)
	}

	data := map[string]interface{}{
		"description":   in.Description,
		"inputType":     in.InputType,
		"jsonInterface": string(iface),
		"title":         in.Title,
	}
	if in.ProjectType != "" {
		data["projectType"] = in.ProjectType
	}

	var payload struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := s.exec.Execute(ctx, graphql.CreateProject, map[string]interface{}{"data": data}, &payload); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	id := payload.Data.ID
	log.WithField("project", id).Debug("project created, waiting for readability")

	deadline := time.Now().Add(createPollDeadline)
	for {
		p, err := s.Get(ctx, id, "id")
		if err == nil {
			p.Title = in.Title
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("project %s not readable after creation: %w", id, ErrNotFound)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(createPollInterval):
		}
	}
}

// Get fetches one project. With no fields the default fragment is used.
func (s *Service) Get(ctx context.Context, projectID string, fields ...string) (*Project, error) {
	projects, err := s.List(ctx, Where{ProjectID: projectID}, 1, 0, fields...)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNotFound
	}
	return &projects[0], nil
}

func (s *Service) List(ctx context.Context, where Where, first, skip int, fields ...string) ([]Project, error) {
	fragment := DefaultFields
	if len(fields) > 0 {
		fragment = joinFields(fields)
	}
	if first <= 0 {
		first = 100
	}

	var payload struct {
		Data []Project `json:"data"`
	}
	vars := map[string]interface{}{
		"where": where.variables(),
		"first": first,
		"skip":  skip,
	}
	if err := s.exec.Execute(ctx, graphql.Projects(fragment), vars, &payload); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return payload.Data, nil
}

func (s *Service) Count(ctx context.Context, where Where) (int, error) {
	var payload struct {
		Data int `json:"data"`
	}
	vars := map[string]interface{}{"where": where.variables()}
	if err := s.exec.Execute(ctx, graphql.CountProjects, vars, &payload); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return payload.Data, nil
}

// Update changes project settings after validating documented ranges.
func (s *Service) Update(ctx context.Context, projectID string, in UpdateInput) (*Project, error) {
	if err := validateRanges(in); err != nil {
		return nil, err
	}

	vars := map[string]interface{}{"projectID": projectID}
	setOpt := func(key string, v interface{}) {
		vars[key] = v
	}
	if in.CanNavigateBetweenAssets != nil {
		setOpt("canNavigateBetweenAssets", *in.CanNavigateBetweenAssets)
	}
	if in.CanSkipAsset != nil {
		setOpt("canSkipAsset", *in.CanSkipAsset)
	}
	if in.ConsensusMark != nil {
		setOpt("consensusMark", *in.ConsensusMark)
	}
	if in.ConsensusTotCoverage != nil {
		setOpt("consensusTotCoverage", *in.ConsensusTotCoverage)
	}
	if in.Description != nil {
		setOpt("description", *in.Description)
	}
	if in.HoneypotMark != nil {
		setOpt("honeypotMark", *in.HoneypotMark)
	}
	if in.InputType != nil {
		setOpt("inputType", *in.InputType)
	}
	if in.Instructions != nil {
		setOpt("instructions", *in.Instructions)
	}
	if in.JSONInterface != nil {
		iface, err := json.Marshal(in.JSONInterface)
		if err != nil {
			return nil, fmt.Errorf("encode json interface: %w", err)
		}
		setOpt("jsonInterface", string(iface))
	}
	if in.MetadataTypes != nil {
		setOpt("metadataTypes", in.MetadataTypes)
	}
	if in.MinConsensusSize != nil {
		setOpt("minConsensusSize", *in.MinConsensusSize)
	}
	if in.ReviewCoverage != nil {
		setOpt("reviewCoverage", *in.ReviewCoverage)
	}
	if in.ShouldRelaunchKpiComputation != nil {
		setOpt("shouldRelaunchKpiComputation", *in.ShouldRelaunchKpiComputation)
	}
	if in.Title != nil {
		setOpt("title", *in.Title)
	}
	if in.UseHoneypot != nil {
		setOpt("useHoneyPot", *in.UseHoneypot)
	}

	var payload struct {
		Data Project `json:"data"`
	}
	if err := s.exec.Execute(ctx, graphql.UpdatePropertiesInProject, vars, &payload); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &payload.Data, nil
}

// Delete removes the project permanently. Deletion is asynchronous server
// side; the call returns as soon as it is scheduled.
func (s *Service) Delete(ctx context.Context, projectID string) error {
	vars := map[string]interface{}{"where": map[string]interface{}{"id": projectID}}
	if err := s.exec.Execute(ctx, graphql.DeleteProjectAsynchronously, vars, nil); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	log.WithField("project", projectID).Info("project deletion scheduled")
	return nil
}

func (s *Service) Archive(ctx context.Context, projectID string) error {
	return s.setArchived(ctx, projectID, true)
}

func (s *Service) Unarchive(ctx context.Context, projectID string) error {
	return s.setArchived(ctx, projectID, false)
}

func (s *Service) setArchived(ctx context.Context, projectID string, archived bool) error {
	vars := map[string]interface{}{
		"projectID": projectID,
		"archived":  archived,
	}
	if err := s.exec.Execute(ctx, graphql.UpdatePropertiesInProject, vars, nil); err != nil {
		return fmt.Errorf("archive project: %w", err)
	}
	return nil
}

func validateRanges(in UpdateInput) error {
	if in.ConsensusTotCoverage != nil && (*in.ConsensusTotCoverage < 0 || *in.ConsensusTotCoverage > 100) {
		return errors.New("consensus total coverage must be between 0 and 100")
	}
	if in.MinConsensusSize != nil && (*in.MinConsensusSize < 1 || *in.MinConsensusSize > 10) {
		return errors.New("min consensus size must be between 1 and 10")
	}
	if in.ReviewCoverage != nil && (*in.ReviewCoverage < 0 || *in.ReviewCoverage > 100) {
		return errors.New("review coverage must be between 0 and 100")
	}
	return nil
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += " "
		}
		out += f
	}
	return out
}
