package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secrets/cmd/app/commands"
	"github.com/allisson/secrets/internal/app"
	"github.com/allisson/secrets/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server and metering queue",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "generate-kek",
			Usage: "Generate a new key-encryption key for envelope encryption",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.GenerateKEK()
			},
		},
		{
			Name:  "verify-audit-chain",
			Usage: "Verify the hash-chained audit log for one package",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "package-id",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Package ID to verify",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.VerifyAuditChain(ctx, cmd.String("package-id"))
			},
		},
	}
}
