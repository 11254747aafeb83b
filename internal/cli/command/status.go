// Package command provides CLI command definitions for docmesh-cli.
package command

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/docmesh-go/internal/cli/connection"
	"github.com/yndnr/docmesh-go/internal/cli/output"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server health and diagnostics",
		Action: statusShow,
	}
}

// statusRow is the status command's output shape.
type statusRow struct {
	InstanceID string `json:"instanceId" yaml:"instanceId"`
	Status     string `json:"status" yaml:"status"`
	Rooms      int    `json:"rooms" yaml:"rooms"`
	Clients    int    `json:"clients" yaml:"clients"`
	Bus        string `json:"bus" yaml:"bus"`
}

func statusShow(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	client := connection.NewHTTPClient(flags.Server)

	var health struct {
		Status     string `json:"status"`
		InstanceID string `json:"instanceId"`
	}
	resp, err := client.Get(c.Context, "/health")
	if err != nil {
		return err
	}
	if err := connection.ParseResponse(resp, &health); err != nil {
		return err
	}

	var diag struct {
		Rooms   int `json:"rooms"`
		Clients int `json:"clients"`
		Bus     struct {
			Connected bool `json:"connected"`
		} `json:"bus"`
	}
	resp, err = client.Get(c.Context, "/diagnostics")
	if err != nil {
		return err
	}
	if err := connection.ParseResponse(resp, &diag); err != nil {
		return err
	}

	bus := "disconnected"
	if diag.Bus.Connected {
		bus = "connected"
	}

	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, []statusRow{{
		InstanceID: health.InstanceID,
		Status:     health.Status,
		Rooms:      diag.Rooms,
		Clients:    diag.Clients,
		Bus:        bus,
	}})
}
