package commands

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go/asset"
	"github.com/labelforge/labelforge-go/cloudstorage"
)

func Storage() *cli.Command {
	return &cli.Command{
		Name:  "storage",
		Usage: "import assets straight from cloud storage buckets",
		Subcommands: []*cli.Command{
			storageImport(),
			storageConnections(),
		},
	}
}

func storageImport() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "presign every object under a prefix and import the URLs",
		ArgsUsage: "<project-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Value: "s3",
				Usage: "s3 or minio",
			},
			&cli.StringFlag{Name: "bucket", Required: true},
			&cli.StringFlag{Name: "prefix"},
			&cli.StringFlag{Name: "storage-endpoint", Usage: "minio endpoint host:port"},
			&cli.StringFlag{Name: "access-key", EnvVars: []string{"MINIO_ACCESS_KEY"}},
			&cli.StringFlag{Name: "secret-key", EnvVars: []string{"MINIO_SECRET_KEY"}},
			&cli.BoolFlag{Name: "insecure", Usage: "plain HTTP for minio"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowSubcommandHelp(c)
			}
			projectID := c.Args().First()

			client, err := newClient(c)
			if err != nil {
				return err
			}

			provider, err := buildProvider(c)
			if err != nil {
				return err
			}

			objects, err := provider.List(c.Context, c.String("prefix"))
			if err != nil {
				return err
			}
			if len(objects) == 0 {
				log.Info("no objects under prefix")
				return nil
			}

			assets := make([]asset.Asset, 0, len(objects))
			for _, obj := range objects {
				url, err := provider.PresignGet(c.Context, obj.Key)
				if err != nil {
					return fmt.Errorf("presign %s: %w", obj.Key, err)
				}
				assets = append(assets, asset.Asset{Content: url, ExternalID: obj.Key})
			}

			result, err := client.Assets.Import(c.Context, projectID, assets)
			if errors.Is(err, asset.ErrBatchImportPending) {
				log.WithField("project", projectID).Info("assets scheduled, the platform is still processing them")
			} else if err != nil {
				return err
			}
			log.WithFields(log.Fields{"project": projectID, "imported": result.Imported}).
				Info("storage import done")
			return nil
		},
	}
}

func buildProvider(c *cli.Context) (cloudstorage.Provider, error) {
	switch c.String("provider") {
	case "minio":
		return cloudstorage.NewMinIOProvider(
			c.String("storage-endpoint"),
			c.String("access-key"),
			c.String("secret-key"),
			c.String("bucket"),
			!c.Bool("insecure"))
	case "s3":
		return cloudstorage.NewS3Provider(c.Context, c.String("bucket"))
	default:
		return nil, fmt.Errorf("unknown storage provider %q", c.String("provider"))
	}
}

func storageConnections() *cli.Command {
	return &cli.Command{
		Name:      "connections",
		Usage:     "list the platform-side storage connections of a project",
		ArgsUsage: "<project-id>",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			connections, err := cloudstorage.Connections(c.Context, client.GraphQL(),
				cloudstorage.Where{ProjectID: c.Args().First()}, 100, 0)
			if err != nil {
				return err
			}
			for _, conn := range connections {
				fmt.Printf("%s\t%d assets\tchecked %s\n",
					conn.ID, conn.NumberOfAssets, conn.LastChecked.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
