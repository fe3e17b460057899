// Package asset imports media assets into a project: local files, hosted
// URLs, and video frame sequences.
package asset

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/labelforge/labelforge-go/bucket"
	"github.com/labelforge/labelforge-go/graphql"
)

// StatusTodo is the initial labeling status of an imported asset.
const StatusTodo = "TODO"

// Asset is one item to import. Content is a local path or a hosted URL.
// JSONContent holds a video frame sequence (paths or URLs) instead of, or in
// addition to, Content.
type Asset struct {
	Content      string
	ExternalID   string
	ID           string
	JSONContent  []string
	JSONMetadata map[string]interface{}
	IsHoneypot   bool
	Status       string

	// resolved during import
	jsonContentURL string
	metadataJSON   string
}

// Store is the bucket surface the importers need. *bucket.Store satisfies it.
type Store interface {
	RequestSignedURLs(ctx context.Context, filePaths []string) ([]string, error)
	UploadAll(ctx context.Context, uploads []bucket.Upload) error
	UniqueID() string
}

var (
	ErrMimeType                 = errors.New("mime type not compatible with project input type")
	ErrImportValidation         = errors.New("invalid import payload")
	ErrUploadFromLocalForbidden = errors.New("uploading local data is forbidden for this organization")
	ErrBatchImport              = errors.New("batch import failed")

	// ErrBatchImportPending reports a successful import whose assets are
	// still being processed server side and are not readable yet.
	ErrBatchImportPending = errors.New("asset import scheduled, awaiting server-side processing")
)

// processingParameters drive server-side video handling. They are emitted
// under the "processingParameters" key of the asset metadata.
type processingParameters struct {
	ShouldKeepNativeFrameRate bool `json:"shouldKeepNativeFrameRate"`
	FramesPlayedPerSecond     int  `json:"framesPlayedPerSecond"`
	ShouldUseNativeVideo      bool `json:"shouldUseNativeVideo"`
}

// userProcessingParameters extracts the caller-provided processingParameters
// sub-document, if any.
func userProcessingParameters(a Asset) map[string]interface{} {
	raw, ok := a.JSONMetadata["processingParameters"]
	if !ok {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	return m
}

// merge overlays caller-provided values on top of the path defaults.
func (p processingParameters) merge(user map[string]interface{}) processingParameters {
	if v, ok := user["shouldKeepNativeFrameRate"].(bool); ok {
		p.ShouldKeepNativeFrameRate = v
	}
	if v, ok := user["shouldUseNativeVideo"].(bool); ok {
		p.ShouldUseNativeVideo = v
	}
	switch v := user["framesPlayedPerSecond"].(type) {
	case int:
		p.FramesPlayedPerSecond = v
	case float64:
		p.FramesPlayedPerSecond = int(v)
	}
	return p
}

// metadataJSON serializes asset metadata with params substituted under
// processingParameters, preserving every other caller key.
func metadataJSON(a Asset, params *processingParameters) (string, error) {
	meta := make(map[string]interface{}, len(a.JSONMetadata)+1)
	for k, v := range a.JSONMetadata {
		if k == "processingParameters" {
			continue
		}
		meta[k] = v
	}
	if params != nil {
		meta["processingParameters"] = *params
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isHostedURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// mapForbidden converts the platform's refusal of local uploads into the
// dedicated sentinel.
func mapForbidden(err error) error {
	var gqlErr *graphql.Error
	if errors.As(err, &gqlErr) && gqlErr.Extensions.Code == "UPLOAD_FROM_LOCAL_DATA_FORBIDDEN" {
		return ErrUploadFromLocalForbidden
	}
	return err
}
