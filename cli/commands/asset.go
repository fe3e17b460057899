package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go/asset"
	"github.com/labelforge/labelforge-go/journal"
)

func Asset() *cli.Command {
	return &cli.Command{
		Name:    "asset",
		Aliases: []string{"a"},
		Usage:   "import assets into a project",
		Subcommands: []*cli.Command{
			assetImport(),
			assetImported(),
		},
	}
}

func assetImport() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import local files or hosted URLs",
		ArgsUsage: "<project-id> <file-or-url>...",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "external-id",
				Aliases: []string{"e"},
				Usage:   "external id per argument, in order",
			},
			&cli.BoolFlag{
				Name:  "frames",
				Usage: "treat the arguments as the frame sequence of a single video asset",
			},
			&cli.IntFlag{
				Name:  "fps",
				Usage: "frames played per second (overrides the native frame rate)",
			},
			&cli.BoolFlag{
				Name:  "no-native",
				Usage: "split videos into frames server side instead of keeping the native file",
			},
			&cli.StringFlag{
				Name:  "metadata",
				Usage: "JSON metadata attached to every asset",
			},
			&cli.StringFlag{
				Name:  "journal",
				Value: "labelforge.db",
				Usage: "import journal; already imported files are skipped",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "import files even if the journal has seen them",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "disable the progress bar",
			},
		},
		Action: runAssetImport,
	}
}

func runAssetImport(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.ShowSubcommandHelp(c)
	}
	projectID := c.Args().First()
	args := c.Args().Tail()

	client, err := newClient(c, asset.WithProgress(!c.Bool("no-progress")))
	if err != nil {
		return err
	}

	jrn, err := journal.Open(c.String("journal"))
	if err != nil {
		return err
	}
	defer jrn.Close()

	meta, err := parseMetadata(c)
	if err != nil {
		return err
	}

	assets, files, err := buildAssets(c, projectID, jrn, args, meta)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		log.Info("nothing to import")
		return nil
	}

	result, err := client.Assets.Import(c.Context, projectID, assets)
	pending := errors.Is(err, asset.ErrBatchImportPending)
	if err != nil && !pending {
		return err
	}

	for i, f := range files {
		if f.checksum == "" {
			continue
		}
		entry := journal.Entry{
			Checksum:   f.checksum,
			ProjectID:  projectID,
			ExternalID: assets[i].ExternalID,
			AssetID:    result.AssetIDs[i],
			Path:       f.path,
			Size:       f.size,
			ImportedAt: time.Now(),
		}
		if err := jrn.Record(entry); err != nil {
			log.WithError(err).Warn("journal write failed")
		}
	}

	if pending {
		log.WithField("project", projectID).Info("assets scheduled, the platform is still processing them")
	}
	ok, failed, rate := client.Bucket().Stats()
	log.WithFields(log.Fields{
		"imported": result.Imported,
		"uploads":  ok,
		"failed":   failed,
		"rate":     humanize.Bytes(uint64(rate)) + "/s",
	}).Info("import done")
	return nil
}

// localFile is what buildAssets checksummed for one argument. Import rewrites
// asset contents to their signed URLs, so the path and size recorded in the
// journal are captured up front.
type localFile struct {
	path     string
	checksum string
	size     int64
}

// buildAssets turns the CLI arguments into assets, consulting the journal to
// drop local files that were already imported.
func buildAssets(c *cli.Context, projectID string, jrn *journal.Journal, args []string, meta map[string]interface{}) ([]asset.Asset, []localFile, error) {
	externalIDs := c.StringSlice("external-id")

	if c.Bool("frames") {
		a := asset.Asset{JSONContent: args, JSONMetadata: meta}
		if len(externalIDs) > 0 {
			a.ExternalID = externalIDs[0]
		}
		return []asset.Asset{a}, []localFile{{}}, nil
	}

	var (
		assets []asset.Asset
		files  []localFile
	)
	for i, arg := range args {
		a := asset.Asset{Content: arg, JSONMetadata: meta}
		if i < len(externalIDs) {
			a.ExternalID = externalIDs[i]
		}

		var f localFile
		if !isRemote(arg) {
			sum, size, err := journal.Checksum(arg)
			if err != nil {
				return nil, nil, err
			}
			seen, err := jrn.Seen(projectID, sum)
			if err != nil {
				return nil, nil, err
			}
			if seen && !c.Bool("force") {
				log.WithField("file", arg).Info("already imported, skipping (use --force to repeat)")
				continue
			}
			f = localFile{path: arg, checksum: sum, size: size}
		}

		assets = append(assets, a)
		files = append(files, f)
	}
	return assets, files, nil
}

func parseMetadata(c *cli.Context) (map[string]interface{}, error) {
	meta := map[string]interface{}{}
	if raw := c.String("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, fmt.Errorf("parse --metadata: %w", err)
		}
	}

	params, _ := meta["processingParameters"].(map[string]interface{})
	if c.Bool("no-native") {
		if params == nil {
			params = map[string]interface{}{}
		}
		params["shouldUseNativeVideo"] = false
	}
	if fps := c.Int("fps"); fps > 0 {
		if params == nil {
			params = map[string]interface{}{}
		}
		params["framesPlayedPerSecond"] = fps
		params["shouldKeepNativeFrameRate"] = false
	}
	if params != nil {
		meta["processingParameters"] = params
	}
	if len(meta) == 0 {
		return nil, nil
	}
	return meta, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func assetImported() *cli.Command {
	return &cli.Command{
		Name:      "imported",
		Usage:     "list files the journal has imported into a project",
		ArgsUsage: "<project-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "journal", Value: "labelforge.db"},
		},
		Action: func(c *cli.Context) error {
			jrn, err := journal.Open(c.String("journal"))
			if err != nil {
				return err
			}
			defer jrn.Close()

			entries, err := jrn.List(c.Args().First())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
					e.AssetID, e.ExternalID,
					humanize.Bytes(uint64(e.Size)),
					e.ImportedAt.Format(time.RFC3339), e.Path)
			}
			return nil
		},
	}
}
