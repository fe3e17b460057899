package asset

import (
	"context"
	"fmt"

	"github.com/labelforge/labelforge-go/bucket"
	"github.com/labelforge/labelforge-go/graphql"
)

// appendSync runs the synchronous dataset mutation for resolved assets.
func appendSync(ctx context.Context, deps Deps, projectID string, assets []*Asset) error {
	n := len(assets)
	if n == 0 {
		return nil
	}

	content := make([]string, n)
	externalIDs := make([]string, n)
	ids := make([]string, n)
	honeypots := make([]bool, n)
	jsonContents := make([]string, n)
	metas := make([]string, n)
	statuses := make([]string, n)
	for i, a := range assets {
		content[i] = a.Content
		externalIDs[i] = a.ExternalID
		ids[i] = a.ID
		honeypots[i] = a.IsHoneypot
		jsonContents[i] = a.jsonContentURL
		metas[i] = a.metadataJSON
		statuses[i] = a.Status
	}

	vars := map[string]interface{}{
		"data": map[string]interface{}{
			"contentArray":      content,
			"externalIDArray":   externalIDs,
			"idArray":           ids,
			"isHoneypotArray":   honeypots,
			"jsonContentArray":  jsonContents,
			"jsonMetadataArray": metas,
			"statusArray":       statuses,
		},
		"where": map[string]interface{}{"id": projectID},
	}
	return deps.Exec.Execute(ctx, graphql.AppendManyToDataset, vars, nil)
}

// appendAsync schedules server-side processing (e.g. splitting a video into
// frames) for resolved assets.
func appendAsync(ctx context.Context, deps Deps, projectID, uploadType string, assets []*Asset) error {
	n := len(assets)
	if n == 0 {
		return nil
	}

	content := make([]string, n)
	externalIDs := make([]string, n)
	ids := make([]string, n)
	metas := make([]string, n)
	for i, a := range assets {
		content[i] = a.Content
		externalIDs[i] = a.ExternalID
		ids[i] = a.ID
		metas[i] = a.metadataJSON
	}

	vars := map[string]interface{}{
		"data": map[string]interface{}{
			"contentArray":      content,
			"externalIDArray":   externalIDs,
			"idArray":           ids,
			"jsonMetadataArray": metas,
			"uploadType":        uploadType,
		},
		"where": map[string]interface{}{"id": projectID},
	}
	return deps.Exec.Execute(ctx, graphql.AppendManyFramesToDataset, vars, nil)
}

// resolveContents uploads local content files behind signed URLs and swaps
// each asset's content for its bucket URL. Hosted URLs pass through.
func resolveContents(ctx context.Context, deps Deps, projectID string, assets []*Asset, accept func(string) bool) error {
	var (
		locals []*Asset
		paths  []string
		mimes  []string
	)
	for _, a := range assets {
		if isHostedURL(a.Content) {
			continue
		}
		mt, err := detectLocalMime(a.Content, accept)
		if err != nil {
			return err
		}
		locals = append(locals, a)
		mimes = append(mimes, mt)
		paths = append(paths, fmt.Sprintf("projects/%s/assets/%s", projectID, a.ID))
	}
	if len(locals) == 0 {
		return nil
	}

	urls, err := deps.Store.RequestSignedURLs(ctx, paths)
	if err != nil {
		return mapForbidden(err)
	}

	uploads := make([]bucket.Upload, len(locals))
	for i, a := range locals {
		uploads[i] = bucket.Upload{URL: urls[i], Path: a.Content, ContentType: mimes[i]}
	}
	if err := deps.Store.UploadAll(ctx, uploads); err != nil {
		return err
	}

	for i, a := range locals {
		a.Content = urls[i]
	}
	return nil
}
