package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdChat() *cli.Command {
	var userID string
	var message string
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to chat as",
			Required:    true,
			Sources:     cli.EnvVars("LUMI_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "message",
			Aliases:     []string{"m"},
			Usage:       "Message to send",
			Required:    true,
			Destination: &message,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Send one message and print the reply",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, a)

			reply, err := a.uc.Chat.Send(ctx, userID, message)
			if err != nil {
				return goerr.Wrap(err, "failed to send message", goerr.V("user_id", userID))
			}

			name := a.uc.Generator.PersonaName()
			line := fmt.Sprintf("%s %s\n", color.New(color.FgCyan, color.Bold).Sprintf("%s:", name), reply.Content)
			safe.Write(ctx, c.Root().Writer, []byte(line))
			return nil
		},
	}
}
