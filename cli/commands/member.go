package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go/project"
)

func Member() *cli.Command {
	return &cli.Command{
		Name:  "member",
		Usage: "manage project members",
		Subcommands: []*cli.Command{
			memberAdd(),
			memberUpdate(),
			memberRemove(),
		},
	}
}

func memberAdd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add a user to a project",
		ArgsUsage: "<project-id> <email>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "role",
				Value: project.RoleLabeler,
				Usage: "ADMIN, TEAM_MANAGER, REVIEWER or LABELER",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.ShowSubcommandHelp(c)
			}
			client, err := newClient(c)
			if err != nil {
				return err
			}
			members, err := client.Projects.AppendToRoles(c.Context,
				c.Args().Get(0), c.Args().Get(1), c.String("role"))
			if err != nil {
				return err
			}
			for _, m := range members {
				fmt.Printf("%s\t%s\t%s\n", m.RoleID, m.Role, m.Email)
			}
			return nil
		},
	}
}

func memberUpdate() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "change a member's role",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "role-id", Required: true},
			&cli.StringFlag{Name: "project-id", Required: true},
			&cli.StringFlag{Name: "user-id", Required: true},
			&cli.StringFlag{Name: "role", Required: true},
		},
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			return client.Projects.UpdateRole(c.Context,
				c.String("role-id"), c.String("project-id"),
				c.String("user-id"), c.String("role"))
		},
	}
}

func memberRemove() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "remove a member from a project",
		ArgsUsage: "<role-id>",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			return client.Projects.DeleteFromRoles(c.Context, c.Args().First())
		},
	}
}
