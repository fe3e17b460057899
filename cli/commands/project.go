package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go/project"
)

func Project() *cli.Command {
	return &cli.Command{
		Name:    "project",
		Aliases: []string{"p"},
		Usage:   "create, inspect and delete projects",
		Subcommands: []*cli.Command{
			projectCreate(),
			projectList(),
			projectGet(),
			projectDelete(),
			projectArchive(),
			projectUnarchive(),
			projectExport(),
		},
	}
}

func projectCreate() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create a project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
			&cli.StringFlag{
				Name:    "input-type",
				Aliases: []string{"i"},
				Value:   project.InputTypeImage,
				Usage:   "IMAGE, PDF, TEXT or VIDEO",
			},
			&cli.StringFlag{
				Name:    "interface",
				Usage:   "path to the labeling interface JSON",
				Aliases: []string{"f"},
			},
		},
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}

			iface := map[string]interface{}{}
			if path := c.String("interface"); path != "" {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &iface); err != nil {
					return fmt.Errorf("parse %s: %w", path, err)
				}
			}

			p, err := client.Projects.Create(c.Context, project.CreateInput{
				Title:         c.String("title"),
				Description:   c.String("description"),
				InputType:     c.String("input-type"),
				JSONInterface: iface,
			})
			if err != nil {
				return err
			}
			fmt.Println(p.ID)
			return nil
		},
	}
}

func projectList() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list projects",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Usage: "substring to search titles for"},
			&cli.IntFlag{Name: "first", Value: 100},
			&cli.IntFlag{Name: "skip", Value: 0},
		},
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			projects, err := client.Projects.List(c.Context,
				project.Where{SearchQuery: c.String("search")},
				c.Int("first"), c.Int("skip"))
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Printf("%s\t%s\t%s\t%d assets\n", p.ID, p.InputType, p.Title, p.NumberOfAssets)
			}
			return nil
		},
	}
}

func projectGet() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "show one project",
		ArgsUsage: "<project-id>",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			p, err := client.Projects.Get(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func projectDelete() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a project and all of its assets",
		ArgsUsage: "<project-id>",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			return client.Projects.Delete(c.Context, c.Args().First())
		},
	}
}

func projectArchive() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "archive a project",
		ArgsUsage: "<project-id>",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			return client.Projects.Archive(c.Context, c.Args().First())
		},
	}
}

func projectUnarchive() *cli.Command {
	return &cli.Command{
		Name:      "unarchive",
		Usage:     "restore an archived project",
		ArgsUsage: "<project-id>",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			return client.Projects.Unarchive(c.Context, c.Args().First())
		},
	}
}
