// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.1.0"

// rootCommand builds the acx command tree. --config and --verbose apply to every subcommand.
func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "acx",
		Usage:   "Migrate teacher accounts and profiles between hosted projects",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.loadConfig,
		After:    r.Close,
		Commands: r.register(),
	}
}

// setupCommand handles setup operations for the config file and run ledger.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the run ledger and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// migrateCommand handles account migration runs.
func migrateCommand(r *Runner) *cli.Command {
	runFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Run every check without writing to the destination",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Process only the first N source records (0 for all)",
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Migrate only the record with this email",
			},
			&cli.BoolFlag{
				Name:  "no-ledger",
				Usage: "Do not record the run in the local ledger",
			},
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Copy accounts and profiles from the source project to the destination",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the migration and write a report",
				Flags: append(runFlags(),
					&cli.BoolFlag{
						Name:  "details",
						Usage: "List skipped and failed records in the summary",
						Value: true,
					},
				),
				Action: r.MigrateRun,
			},
			{
				Name:    "ui",
				Aliases: []string{"tui", "interactive"},
				Usage:   "Preview source records and run the migration in an interactive TUI",
				Flags:   runFlags(),
				Action:  r.MigrateUI,
			},
			{
				Name:  "report",
				Usage: "Print the summary of a saved migration report",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MigrateReport,
			},
		},
	}
}

// auditCommand handles read-only checks of source and destination data.
func auditCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Inspect source and destination profiles",
		Commands: []*cli.Command{
			{
				Name:  "count",
				Usage: "Count destination profiles per account type",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "sample",
						Usage: "Number of migrated profiles to show",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuditCount,
			},
			{
				Name:  "analyze",
				Usage: "Check migrated profiles for missing required fields",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuditAnalyze,
			},
			{
				Name:  "inspect",
				Usage: "Preview the fields of the first source records",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of records to preview",
						Value:   3,
					},
				},
				Action: r.AuditInspect,
			},
		},
	}
}

// quotaCommand handles free-quota maintenance of migrated profiles.
func quotaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "quota",
		Usage: "Free consultation quota maintenance",
		Commands: []*cli.Command{
			{
				Name:  "backfill",
				Usage: "Raise freeQuotaLimit to the migrated-account value",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "List the profiles that would change without writing",
					},
				},
				Action: r.QuotaBackfill,
			},
		},
	}
}

// exportCommand handles contact sheet exports.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export destination data",
		Commands: []*cli.Command{
			{
				Name:  "contacts",
				Usage: "Export destination profile contacts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (csv, markdown, txt, xlsx)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: contacts.<ext>)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Only export this account type",
					},
				},
				Action: r.ExportContacts,
			},
		},
	}
}

// historyCommand handles queries against the run ledger.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse recorded migration runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by run status (running, completed, failed, interrupted)",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Filter by mode (dry-run, production)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a run and its record outcomes",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show outcomes with this status",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Remove a run from the history",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Delete a run still marked running, e.g. after a crash",
					},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// serveCommand runs the app version endpoint.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the mobile app version endpoints",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}
