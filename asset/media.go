package asset

import (
	"context"
	"fmt"

	"github.com/labelforge/labelforge-go/project"
)

func init() {
	register(project.InputTypeImage, newMediaImporter(acceptPrefix("image/")))
	register(project.InputTypePDF, newMediaImporter(acceptExact("application/pdf")))
	register(project.InputTypeText, newMediaImporter(acceptPrefix("text/")))
}

// mediaImporter covers the single-file input types with no processing
// parameters: images, PDFs and texts.
type mediaImporter struct {
	deps   Deps
	accept func(string) bool
}

func newMediaImporter(accept func(string) bool) Creator {
	return func(d Deps) Importer { return &mediaImporter{deps: d, accept: accept} }
}

func (im *mediaImporter) Import(ctx context.Context, projectID string, batch []Asset) error {
	assets := make([]*Asset, 0, len(batch))
	for i := range batch {
		a := &batch[i]
		if len(a.JSONContent) > 0 {
			return fmt.Errorf("%w: frame sequences are only valid for VIDEO projects", ErrImportValidation)
		}
		assets = append(assets, a)
	}

	if err := resolveContents(ctx, im.deps, projectID, assets, im.accept); err != nil {
		return err
	}
	for _, a := range assets {
		meta, err := metadataJSON(*a, nil)
		if err != nil {
			return fmt.Errorf("encode metadata for %q: %w", a.ExternalID, err)
		}
		a.metadataJSON = meta
	}
	return appendSync(ctx, im.deps, projectID, assets)
}
