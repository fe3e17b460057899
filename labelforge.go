// Package labelforge is the Go client for the LabelForge annotation
// platform. A Client bundles the platform services behind one authenticated
// GraphQL transport:
//
//	client, err := labelforge.NewFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	p, err := client.Projects.Create(ctx, project.CreateInput{
//		InputType:     project.InputTypeVideo,
//		Title:         "Traffic cameras",
//		JSONInterface: iface,
//	})
//	...
//	_, err = client.Assets.Import(ctx, p.ID, []asset.Asset{
//		{Content: "./videos/cam-042.mp4", ExternalID: "cam-042"},
//	})
//	...
//	err = client.Projects.Delete(ctx, p.ID)
package labelforge

import (
	"github.com/labelforge/labelforge-go/asset"
	"github.com/labelforge/labelforge-go/bucket"
	"github.com/labelforge/labelforge-go/config"
	"github.com/labelforge/labelforge-go/graphql"
	"github.com/labelforge/labelforge-go/label"
	"github.com/labelforge/labelforge-go/notification"
	"github.com/labelforge/labelforge-go/project"
)

type Client struct {
	Projects      *project.Service
	Assets        *asset.Service
	Labels        *label.Service
	Notifications *notification.Service

	gql   *graphql.Client
	store *bucket.Store
}

// New builds a client from an explicit configuration.
func New(cfg *config.Config, assetOpts ...asset.Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gql := graphql.NewClient(cfg)
	store := bucket.NewStore(gql, cfg.Upload.Concurrency)

	opts := append([]asset.Option{asset.WithBatchSize(cfg.Upload.BatchSize)}, assetOpts...)

	return &Client{
		Projects:      project.NewService(gql),
		Assets:        asset.NewService(gql, store, opts...),
		Labels:        label.NewService(gql),
		Notifications: notification.NewService(gql),
		gql:           gql,
		store:         store,
	}, nil
}

// NewFromEnv builds a client from the LABELFORGE_* environment.
func NewFromEnv(assetOpts ...asset.Option) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg, assetOpts...)
}

// GraphQL exposes the underlying transport for operations the typed services
// do not cover.
func (c *Client) GraphQL() graphql.Executor {
	return c.gql
}

// Bucket exposes the signed-URL upload store.
func (c *Client) Bucket() *bucket.Store {
	return c.store
}
