package asset

// Importer registry keyed by project input type. Importers self-register
// from init so adding a media type stays local to its file.

import (
	"context"

	"github.com/labelforge/labelforge-go/graphql"
)

type Deps struct {
	Exec  graphql.Executor
	Store Store
}

type Importer interface {
	Import(ctx context.Context, projectID string, batch []Asset) error
}

type Creator func(deps Deps) Importer

var importers = map[string]Creator{}

func register(inputType string, creator Creator) {
	importers[inputType] = creator
}

func lookup(inputType string) (Creator, bool) {
	c, ok := importers[inputType]
	return c, ok
}
