// Package command provides CLI command definitions for docmesh-cli.
package command

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/docmesh-go/internal/cli/connection"
	"github.com/yndnr/docmesh-go/internal/core/crdt"
	"github.com/yndnr/docmesh-go/internal/gateway"
)

// RoomCommand returns the room subcommand group.
func RoomCommand() *cli.Command {
	roomFlag := &cli.StringFlag{
		Name:     "room",
		Aliases:  []string{"r"},
		Usage:    "Room ID",
		Required: true,
	}

	return &cli.Command{
		Name:  "room",
		Usage: "Interact with document rooms",
		Subcommands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Join a room and print every message until interrupted",
				Flags:  []cli.Flag{roomFlag},
				Action: roomWatch,
			},
			{
				Name:      "set",
				Usage:     "Set document fields (field=value pairs, values parsed as JSON)",
				ArgsUsage: "FIELD=VALUE [FIELD=VALUE...]",
				Flags: []cli.Flag{
					roomFlag,
					&cli.BoolFlag{
						Name:  "binary",
						Usage: "Send the update as a binary frame instead of a JSON envelope",
					},
				},
				Action: roomSet,
			},
		},
	}
}

func roomWatch(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	roomID := c.String("room")

	ws, err := connection.DialWS(c.Context, flags.Server)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.Join(roomID); err != nil {
		return fmt.Errorf("join room: %w", err)
	}

	fmt.Fprintf(os.Stderr, "watching room %s (Ctrl+C to stop)\n", roomID)

	enc := json.NewEncoder(os.Stdout)
	for {
		msg, err := ws.Read()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if err := enc.Encode(msg); err != nil {
			return err
		}
	}
}

func roomSet(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	roomID := c.String("room")

	if c.NArg() == 0 {
		return fmt.Errorf("at least one FIELD=VALUE argument is required")
	}

	fields := make(map[string]any, c.NArg())
	for _, arg := range c.Args().Slice() {
		field, raw, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return fmt.Errorf("argument %q is not FIELD=VALUE", arg)
		}
		// Values are parsed as JSON when possible, else kept as strings.
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		fields[field] = value
	}

	ws, err := connection.DialWS(c.Context, flags.Server)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.Join(roomID); err != nil {
		return fmt.Errorf("join room: %w", err)
	}

	// Drain the join responses (document-state and ack) before sending.
	for i := 0; i < 2; i++ {
		if _, err := ws.Read(); err != nil {
			return fmt.Errorf("join handshake: %w", err)
		}
	}

	if c.Bool("binary") {
		return sendBinaryFields(ws, roomID, fields)
	}

	update, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := ws.SendUpdate(roomID, update); err != nil {
		return fmt.Errorf("send update: %w", err)
	}

	fmt.Printf("updated %d field(s) in room %s\n", len(fields), roomID)
	return nil
}

// sendBinaryFields sends each field as one binary-framed merge delta.
func sendBinaryFields(ws *connection.WSClient, roomID string, fields map[string]any) error {
	ts := time.Now().UnixMilli()
	for field, value := range fields {
		delta, err := crdt.EncodeWrite(field, value, ts, "docmesh-cli")
		if err != nil {
			return err
		}
		frame, err := gateway.EncodeFrame(roomID, ts, delta)
		if err != nil {
			return err
		}
		if err := ws.SendBinary(frame); err != nil {
			return fmt.Errorf("send frame: %w", err)
		}
	}
	fmt.Printf("sent %d binary update(s) to room %s\n", len(fields), roomID)
	return nil
}
