package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go"
	"github.com/labelforge/labelforge-go/label"
)

const exportPageSize = 100

func projectExport() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "export the labels of a project",
		ArgsUsage: "<project-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "raw",
				Usage:   "raw (one JSON document) or yolo (one txt per asset)",
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    "output file (raw) or directory (yolo)",
			},
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

			labels, err := fetchAllLabels(c, client, projectID)
			if err != nil {
				return err
			}

			switch c.String("format") {
			case "raw":
				return exportRaw(c.String("output"), labels)
			case "yolo":
				return exportYOLO(c, client, projectID, labels)
			default:
				return fmt.Errorf("unknown export format %q", c.String("format"))
			}
		},
	}
}

func fetchAllLabels(c *cli.Context, client *labelforge.Client, projectID string) ([]label.Label, error) {
	var all []label.Label
	for skip := 0; ; skip += exportPageSize {
		page, err := client.Labels.List(c.Context, label.Where{ProjectID: projectID},
			exportPageSize, skip, label.ExportFields)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
	}
}

func exportRaw(path string, labels []label.Label) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := label.ExportRaw(f, labels); err != nil {
		return err
	}
	log.WithFields(log.Fields{"labels": len(labels), "file": path}).Info("export done")
	return nil
}

func exportYOLO(c *cli.Context, client *labelforge.Client, projectID string, labels []label.Label) error {
	p, err := client.Projects.Get(c.Context, projectID, "id", "jsonInterface")
	if err != nil {
		return err
	}
	classes, err := label.Classes(p.JSONInterface)
	if err != nil {
		return err
	}

	dir := c.String("output")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	classFile := strings.Join(classes, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "classes.txt"), []byte(classFile), 0o644); err != nil {
		return err
	}

	index := label.ClassIndex(classes)
	written := 0
	for _, l := range labels {
		lines, err := label.YOLOLines(l, index)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			continue
		}
		name := l.Asset.ExternalID
		if name == "" {
			name = l.ID
		}
		out := strings.Join(lines, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(dir, name+".txt"), []byte(out), 0o644); err != nil {
			return err
		}
		written++
	}
	log.WithFields(log.Fields{"labels": written, "dir": dir}).Info("export done")
	return nil
}
