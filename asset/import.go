package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosuri/uiprogress"
	log "github.com/sirupsen/logrus"

	"github.com/labelforge/labelforge-go/graphql"
	"github.com/labelforge/labelforge-go/project"
)

const defaultBatchSize = 100

type Service struct {
	exec         graphql.Executor
	store        Store
	projects     *project.Service
	batchSize    int
	showProgress bool
}

type Option func(*Service)

func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithProgress(enabled bool) Option {
	return func(s *Service) { s.showProgress = enabled }
}

func NewService(exec graphql.Executor, store Store, opts ...Option) *Service {
	s := &Service{
		exec:      exec,
		store:     store,
		projects:  project.NewService(exec),
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.showProgress {
		if p, ok := store.(interface{ EnableProgress(bool) }); ok {
			p.EnableProgress(true)
		}
	}
	return s
}

type Result struct {
	Imported int
	AssetIDs []string
}

// Import validates the assets, resolves the project input type and hands the
// batch to the matching importer, batchSize assets at a time.
func (s *Service) Import(ctx context.Context, projectID string, assets []Asset) (*Result, error) {
	if len(assets) == 0 {
		return &Result{}, nil
	}

	p, err := s.projects.Get(ctx, projectID, "inputType")
	if err != nil {
		return nil, err
	}

	creator, ok := lookup(p.InputType)
	if !ok {
		return nil, fmt.Errorf("%w: input type %q has no importer", ErrImportValidation, p.InputType)
	}

	if err := s.prepare(assets); err != nil {
		return nil, err
	}
	if err := s.rejectKnownExternalIDs(ctx, projectID, assets); err != nil {
		return nil, err
	}

	importer := creator(Deps{Exec: s.exec, Store: s.store})

	var bar *uiprogress.Bar
	var progress *uiprogress.Progress
	if s.showProgress {
		progress = uiprogress.New()
		progress.Start()
		bar = progress.AddBar(len(assets)).AppendCompleted()
		defer progress.Stop()
	}

	result := &Result{AssetIDs: make([]string, 0, len(assets))}
	pending := false
	for start := 0; start < len(assets); start += s.batchSize {
		end := start + s.batchSize
		if end > len(assets) {
			end = len(assets)
		}
		batch := assets[start:end]

		switch err := importer.Import(ctx, projectID, batch); {
		case errors.Is(err, ErrBatchImportPending):
			pending = true
		case err != nil:
			return result, fmt.Errorf("%w: assets %d-%d: %w", ErrBatchImport, start, end-1, err)
		}

		result.Imported += len(batch)
		for _, a := range batch {
			result.AssetIDs = append(result.AssetIDs, a.ID)
		}
		if bar != nil {
			bar.Set(result.Imported)
		}
	}

	log.WithFields(log.Fields{"project": projectID, "assets": result.Imported, "pending": pending}).Info("import finished")
	if pending {
		return result, ErrBatchImportPending
	}
	return result, nil
}

// prepare fills defaults and rejects malformed assets before any network
// round trip.
func (s *Service) prepare(assets []Asset) error {
	seen := make(map[string]struct{}, len(assets))
	for i := range assets {
		a := &assets[i]
		if a.Content == "" && len(a.JSONContent) == 0 {
			return fmt.Errorf("%w: asset %d has neither content nor a frame sequence", ErrImportValidation, i)
		}
		if a.Status == "" {
			a.Status = StatusTodo
		}
		if a.ID == "" {
			a.ID = s.store.UniqueID()
		}
		if a.ExternalID != "" {
			if _, dup := seen[a.ExternalID]; dup {
				return fmt.Errorf("%w: duplicate external id %q in batch", ErrImportValidation, a.ExternalID)
			}
			seen[a.ExternalID] = struct{}{}
		}
	}
	return nil
}

// rejectKnownExternalIDs refuses external ids already present in the project.
func (s *Service) rejectKnownExternalIDs(ctx context.Context, projectID string, assets []Asset) error {
	externalIDs := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.ExternalID != "" {
			externalIDs = append(externalIDs, a.ExternalID)
		}
	}
	if len(externalIDs) == 0 {
		return nil
	}

	var payload struct {
		Data []struct {
			ExternalID string `json:"externalId"`
		} `json:"data"`
	}
	vars := map[string]interface{}{
		"where": map[string]interface{}{
			"project":              map[string]interface{}{"id": projectID},
			"externalIdStrictlyIn": externalIDs,
		},
		"first": len(externalIDs),
		"skip":  0,
	}
	if err := s.exec.Execute(ctx, graphql.Assets("externalId"), vars, &payload); err != nil {
		return fmt.Errorf("check existing external ids: %w", err)
	}
	if len(payload.Data) > 0 {
		return fmt.Errorf("%w: external id %q already in project", ErrImportValidation, payload.Data[0].ExternalID)
	}
	return nil
}
