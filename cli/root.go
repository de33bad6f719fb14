// Package cli is the teloquent command line: migration commands and code generators.
package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teloquent/teloquent"
	"github.com/teloquent/teloquent/config"
	"github.com/teloquent/teloquent/migrator"
)

// Options what the command tree runs
type Options struct {
	// Migrations registered on the migrator, in order
	Migrations []migrator.Migration
	Version    string
	// Now the clock of make:migration timestamps, time.Now when nil
	Now func() time.Time
}

type app struct {
	opts       Options
	configFile string
	envFile    string
	dsn        string
	config     *config.Config
	db         *teloquent.DB
	migrator   *migrator.Migrator
}

// NewRootCommand builds the teloquent command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "teloquent",
		Short:         "Teloquent runs database migrations and scaffolds models",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./teloquent.{yaml,json,toml})")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file loaded before the config (default: .env)")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", "", "database DSN, overrides the config")

	root.AddCommand(
		a.migrateCommand(),
		a.rollbackCommand(),
		a.resetCommand(),
		a.refreshCommand(),
		a.statusCommand(),
		versionCommand(opts.Version),
		a.makeMigrationCommand(),
		makeModelCommand(),
	)
	return root
}

// open loads the config and opens the DB, for commands touching the database
func (a *app) open(cmd *cobra.Command, args []string) error {
	opts := config.Options{ConfigFile: a.configFile}
	if a.envFile != "" {
		opts.EnvFiles = []string{a.envFile}
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.dsn != "" {
		cfg.DSN = a.dsn
	}

	db, err := cfg.Open()
	if err != nil {
		return err
	}

	a.config, a.db = cfg, db
	a.migrator = cfg.NewMigrator(db).Register(a.opts.Migrations...)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	defer func() { a.db = nil }()

	if closer, ok := a.db.Conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// databaseCommand runs cmd between opening and closing the configured database
func (a *app) databaseCommand(cmd *cobra.Command) *cobra.Command {
	run := cmd.RunE
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd, args); err != nil {
			return err
		}
		defer a.close()
		return run(cmd, args)
	}
	return cmd
}

func printNames(out io.Writer, verb string, names []string, none string) {
	if len(names) == 0 {
		fmt.Fprintln(out, none)
		return
	}
	for _, name := range names {
		fmt.Fprintf(out, "%s: %s\n", verb, name)
	}
}

func (a *app) migrateCommand() *cobra.Command {
	return a.databaseCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run the pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.migrator.Migrate(cmd.Context())
			printNames(cmd.OutOrStdout(), "Migrated", names, "Nothing to migrate.")
			return err
		},
	})
}

func (a *app) rollbackCommand() *cobra.Command {
	var steps int
	cmd := a.databaseCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last batches of migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.migrator.Rollback(cmd.Context(), steps)
			printNames(cmd.OutOrStdout(), "Rolled back", names, "Nothing to rollback.")
			return err
		},
	})
	cmd.Flags().IntVar(&steps, "steps", 1, "number of batches to roll back")
	return cmd
}

func (a *app) resetCommand() *cobra.Command {
	return a.databaseCommand(&cobra.Command{
		Use:   "reset",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.migrator.Reset(cmd.Context())
			printNames(cmd.OutOrStdout(), "Rolled back", names, "Nothing to rollback.")
			return err
		},
	})
}

func (a *app) refreshCommand() *cobra.Command {
	return a.databaseCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Roll back every migration then migrate again",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.migrator.Refresh(cmd.Context())
			printNames(cmd.OutOrStdout(), "Migrated", names, "Nothing to migrate.")
			return err
		},
	})
}

func (a *app) statusCommand() *cobra.Command {
	return a.databaseCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which migrations ran",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := a.migrator.Status(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
			for _, status := range statuses {
				ran, batch := "No", "-"
				if status.Ran {
					ran, batch = "Yes", fmt.Sprint(status.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, status.Name)
			}
			return w.Flush()
		},
	})
}

func versionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the teloquent version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "teloquent", version)
		},
	}
}

func (a *app) makeMigrationCommand() *cobra.Command {
	var create, table, attributes, dir string
	cmd := &cobra.Command{
		Use:   "make:migration NAME",
		Short: "Scaffold a migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := ParseFields(attributes)
			if err != nil {
				return err
			}

			filename, err := GenerateMigration(MigrationOptions{
				Name:   args[0],
				Create: create,
				Table:  table,
				Fields: fields,
				Folder: dir,
				Now:    a.opts.Now(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created migration:", filename)
			return nil
		},
	}
	cmd.Flags().StringVar(&create, "create", "", "table the migration creates")
	cmd.Flags().StringVar(&table, "table", "", "table the migration alters")
	cmd.Flags().StringVar(&attributes, "attributes", "", "columns, e.g. name:string,age:int")
	cmd.Flags().StringVar(&dir, "dir", "migrations", "migrations folder")
	return cmd
}

func makeModelCommand() *cobra.Command {
	var attributes, relations, dir string
	cmd := &cobra.Command{
		Use:   "make:model NAME",
		Short: "Scaffold a model type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := ParseFields(attributes)
			if err != nil {
				return err
			}
			rels, err := ParseRelations(relations)
			if err != nil {
				return err
			}

			filename, err := GenerateModel(args[0], fields, rels, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created model:", filename)
			return nil
		},
	}
	cmd.Flags().StringVar(&attributes, "attributes", "", "attributes with casts, e.g. age:int,active:bool")
	cmd.Flags().StringVar(&relations, "relations", "", "relations, e.g. posts:Post:hasMany,roles:Role:belongsToMany")
	cmd.Flags().StringVar(&dir, "dir", "models", "models folder")
	return cmd
}
