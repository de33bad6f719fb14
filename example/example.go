// Command example runs the blog migrations and a small buyer/seller walkthrough:
//
//	go run ./example migrate --dsn example.db
//	go run ./example demo --dsn example.db
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teloquent/teloquent"
	"github.com/teloquent/teloquent/cli"
	"github.com/teloquent/teloquent/config"
)

func main() {
	root := cli.NewRootCommand(cli.Options{Migrations: migrations, Version: "example"})
	root.AddCommand(demoCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Migrate, seed buyer and seller profiles and print the users with their profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, _ := cmd.Flags().GetString("dsn")
			cfg, err := config.Load(config.Options{})
			if err != nil {
				return err
			}
			if dsn != "" {
				cfg.DSN = dsn
			}

			db, err := cfg.Open()
			if err != nil {
				return err
			}
			teloquent.Initialize(db)
			defer teloquent.Reset()

			ctx := cmd.Context()
			if _, err := cfg.NewMigrator(db).Register(migrations...).Migrate(ctx); err != nil {
				return err
			}

			return db.Transaction(ctx, func(ctx context.Context) error {
				buyer, err := Profile.FirstOrCreate(ctx, map[string]interface{}{"name": "buyer"}, nil)
				if err != nil {
					return err
				}
				seller, err := Profile.FirstOrCreate(ctx, map[string]interface{}{"name": "seller"}, nil)
				if err != nil {
					return err
				}

				user, err := User.UpdateOrCreate(ctx,
					map[string]interface{}{"username": "alice"},
					map[string]interface{}{"settings": map[string]interface{}{"theme": "dark"}},
				)
				if err != nil {
					return err
				}

				profiles := user.BelongsToMany(Profile).WithPivot("state")
				if err := profiles.Sync(ctx, []*teloquent.Model{buyer, seller}); err != nil {
					return err
				}
				if _, err := profiles.UpdateExistingPivot(ctx, seller, map[string]interface{}{"state": "pending"}); err != nil {
					return err
				}

				users, err := User.With("profiles").OrderBy("id").Get(ctx)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(users)
			})
		},
	}
}
