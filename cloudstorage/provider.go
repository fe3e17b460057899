// Package cloudstorage imports assets straight from a customer object store:
// bucket objects are listed, presigned for reading, and handed to the asset
// importer as hosted URLs.
package cloudstorage

import (
	"context"
	"fmt"
	"time"

	"github.com/labelforge/labelforge-go/graphql"
)

// presignExpiry bounds how long the platform has to fetch a presigned object.
const presignExpiry = 60 * time.Minute

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Provider lists bucket objects and presigns them for reading.
type Provider interface {
	List(ctx context.Context, prefix string) ([]Object, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Connection is a cloud storage connection registered on the platform side.
type Connection struct {
	ID              string    `json:"id"`
	LastChecked     time.Time `json:"lastChecked"`
	NumberOfAssets  int       `json:"numberOfAssets"`
	SelectedFolders []string  `json:"selectedFolders"`
	ProjectID       string    `json:"projectId"`
}

// Where restricts connection queries.
type Where struct {
	ConnectionID  string
	IntegrationID string
	ProjectID     string
}

// Connections lists the platform-side cloud storage connections.
func Connections(ctx context.Context, exec graphql.Executor, where Where, first, skip int) ([]Connection, error) {
	if first <= 0 {
		first = 100
	}

	w := map[string]interface{}{}
	if where.ConnectionID != "" {
		w["id"] = where.ConnectionID
	}
	if where.IntegrationID != "" {
		w["integrationId"] = where.IntegrationID
	}
	if where.ProjectID != "" {
		w["projectId"] = where.ProjectID
	}

	var payload struct {
		Data []Connection `json:"data"`
	}
	vars := map[string]interface{}{"where": w, "first": first, "skip": skip}
	if err := exec.Execute(ctx, graphql.DataConnections, vars, &payload); err != nil {
		return nil, fmt.Errorf("list cloud storage connections: %w", err)
	}
	return payload.Data, nil
}
