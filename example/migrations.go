package main

import (
	"context"

	"github.com/teloquent/teloquent/migrator"
)

var migrations = []migrator.Migration{
	{
		Name: "20240101_000000_create_profiles_table",
		Up: func(ctx context.Context, schema *migrator.Schema) error {
			return schema.CreateTable(ctx, "profiles", func(table *migrator.Blueprint) {
				table.Increments()
				table.String("name", 40).NotNull().Unique()
				table.Timestamps()
			})
		},
		Down: func(ctx context.Context, schema *migrator.Schema) error {
			return schema.DropTable(ctx, "profiles")
		},
	},
	{
		Name: "20240101_000001_create_users_table",
		Up: func(ctx context.Context, schema *migrator.Schema) error {
			return schema.CreateTable(ctx, "users", func(table *migrator.Blueprint) {
				table.Increments()
				table.String("username", 100).NotNull().Unique()
				table.JSON("settings").Nullable()
				table.Timestamps()
			})
		},
		Down: func(ctx context.Context, schema *migrator.Schema) error {
			return schema.DropTable(ctx, "users")
		},
	},
	{
		Name: "20240101_000002_create_profile_user_table",
		Up: func(ctx context.Context, schema *migrator.Schema) error {
			return schema.CreateTable(ctx, "profile_user", func(table *migrator.Blueprint) {
				table.Integer("profile_id").NotNull().References("id").On("profiles").OnDelete("CASCADE")
				table.Integer("user_id").NotNull().References("id").On("users").OnDelete("CASCADE")
				table.String("state").NotNull().Default("active").Index()
			})
		},
		Down: func(ctx context.Context, schema *migrator.Schema) error {
			return schema.DropTable(ctx, "profile_user")
		},
	},
}
