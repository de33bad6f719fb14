package migrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/teloquent/teloquent"
)

// DefaultTable bookkeeping table of ran migrations
const DefaultTable = "migrations"

// Migration a named, reversible schema change
type Migration struct {
	Name string
	Up   func(ctx context.Context, schema *Schema) error
	Down func(ctx context.Context, schema *Schema) error
}

// Status whether a registered migration ran, and in which batch
type Status struct {
	Name  string
	Ran   bool
	Batch int64
}

// Config migrator config
type Config struct {
	DB *teloquent.DB
	// Table bookkeeping table, DefaultTable when empty
	Table string
}

// Migrator runs registered migrations in registration order, each in its own transaction,
// and records them in batches so they can be rolled back together
type Migrator struct {
	Config
	schema     *Schema
	migrations []Migration
}

type record struct {
	id    int64
	name  string
	batch int64
}

// New initialize a migrator
func New(config Config) *Migrator {
	if config.Table == "" {
		config.Table = DefaultTable
	}
	return &Migrator{Config: config, schema: NewSchema(config.DB)}
}

// Schema returns the schema migrations run against
func (m *Migrator) Schema() *Schema {
	return m.schema
}

// Register adds migrations. A name registered twice keeps its first migration.
func (m *Migrator) Register(migrations ...Migration) *Migrator {
	for _, migration := range migrations {
		if _, ok := m.find(migration.Name); ok {
			m.DB.Logger.Warn(context.Background(), "migration %s already registered, ignored", migration.Name)
			continue
		}
		m.migrations = append(m.migrations, migration)
	}
	return m
}

// Migrations returns the registered migrations
func (m *Migrator) Migrations() []Migration {
	return append([]Migration(nil), m.migrations...)
}

// Migrate runs the pending migrations as a new batch and returns their names
func (m *Migrator) Migrate(ctx context.Context) ([]string, error) {
	records, err := m.records(ctx)
	if err != nil {
		return nil, err
	}

	ran := map[string]bool{}
	var batch int64
	for _, r := range records {
		ran[r.name] = true
		if r.batch > batch {
			batch = r.batch
		}
	}
	batch++

	var migrated []string
	for _, migration := range m.migrations {
		if ran[migration.Name] {
			continue
		}

		m.DB.Logger.Info(ctx, "migrating: %s", migration.Name)
		err := m.DB.Transaction(ctx, func(ctx context.Context) error {
			if migration.Up != nil {
				if err := migration.Up(ctx, m.schema); err != nil {
					return err
				}
			}
			return m.log(ctx, migration.Name, batch)
		})
		if err != nil {
			m.DB.Logger.Error(ctx, "migration %s failed: %v", migration.Name, err)
			return migrated, fmt.Errorf("migrate %s: %w", migration.Name, err)
		}
		m.DB.Logger.Info(ctx, "migrated: %s", migration.Name)
		migrated = append(migrated, migration.Name)
	}

	if len(migrated) == 0 {
		m.DB.Logger.Info(ctx, "nothing to migrate")
	}
	return migrated, nil
}

// Rollback reverts the last steps batches, most recent migration first, and returns the reverted names.
// Recorded migrations that are no longer registered are skipped with a warning.
func (m *Migrator) Rollback(ctx context.Context, steps int) ([]string, error) {
	if steps < 1 {
		steps = 1
	}

	records, err := m.records(ctx)
	if err != nil {
		return nil, err
	}

	var batches []int64
	seen := map[int64]bool{}
	for _, r := range records {
		if !seen[r.batch] {
			seen[r.batch] = true
			batches = append(batches, r.batch)
		}
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i] > batches[j] })
	if len(batches) > steps {
		batches = batches[:steps]
	}

	rollback := map[int64]bool{}
	for _, batch := range batches {
		rollback[batch] = true
	}

	var pending []record
	for _, r := range records {
		if rollback[r.batch] {
			pending = append(pending, r)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].id > pending[j].id })

	var reverted []string
	for _, r := range pending {
		migration, ok := m.find(r.name)
		if !ok {
			m.DB.Logger.Warn(ctx, "migration %s not found, skipped", r.name)
			continue
		}

		m.DB.Logger.Info(ctx, "rolling back: %s", migration.Name)
		err := m.DB.Transaction(ctx, func(ctx context.Context) error {
			if migration.Down != nil {
				if err := migration.Down(ctx, m.schema); err != nil {
					return err
				}
			}
			_, err := m.DB.Table(m.Table).Where("name", migration.Name).Delete(ctx)
			return err
		})
		if err != nil {
			m.DB.Logger.Error(ctx, "rollback of %s failed: %v", migration.Name, err)
			return reverted, fmt.Errorf("rollback %s: %w", migration.Name, err)
		}
		m.DB.Logger.Info(ctx, "rolled back: %s", migration.Name)
		reverted = append(reverted, migration.Name)
	}

	if len(reverted) == 0 {
		m.DB.Logger.Info(ctx, "nothing to rollback")
	}
	return reverted, nil
}

// Reset reverts every ran migration
func (m *Migrator) Reset(ctx context.Context) ([]string, error) {
	records, err := m.records(ctx)
	if err != nil {
		return nil, err
	}

	batches := map[int64]bool{}
	for _, r := range records {
		batches[r.batch] = true
	}
	if len(batches) == 0 {
		m.DB.Logger.Info(ctx, "nothing to reset")
		return nil, nil
	}
	return m.Rollback(ctx, len(batches))
}

// Refresh resets then migrates again, returning the names migrated
func (m *Migrator) Refresh(ctx context.Context) ([]string, error) {
	if _, err := m.Reset(ctx); err != nil {
		return nil, err
	}
	return m.Migrate(ctx)
}

// Status reports every registered migration in registration order
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	records, err := m.records(ctx)
	if err != nil {
		return nil, err
	}

	batches := make(map[string]int64, len(records))
	for _, r := range records {
		batches[r.name] = r.batch
	}

	statuses := make([]Status, len(m.migrations))
	for idx, migration := range m.migrations {
		batch, ran := batches[migration.Name]
		statuses[idx] = Status{Name: migration.Name, Ran: ran, Batch: batch}
	}
	return statuses, nil
}

func (m *Migrator) find(name string) (Migration, bool) {
	for _, migration := range m.migrations {
		if migration.Name == name {
			return migration, true
		}
	}
	return Migration{}, false
}

// records creates the bookkeeping table if needed and returns its rows by id
func (m *Migrator) records(ctx context.Context) ([]record, error) {
	exists, err := m.schema.HasTable(ctx, m.Table)
	if err != nil {
		return nil, err
	}

	if !exists {
		err := m.schema.CreateTable(ctx, m.Table, func(table *Blueprint) {
			table.Increments("id")
			table.String("name")
			table.Integer("batch")
			table.Timestamps()
		})
		if err != nil {
			return nil, err
		}
	}

	rows, err := m.DB.Table(m.Table).OrderBy("id").Rows(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]record, len(rows))
	for idx, row := range rows {
		records[idx] = record{
			id:    cast.ToInt64(row["id"]),
			name:  cast.ToString(row["name"]),
			batch: cast.ToInt64(row["batch"]),
		}
	}
	return records, nil
}

func (m *Migrator) log(ctx context.Context, name string, batch int64) error {
	now := m.DB.NowFunc().UTC().Format(teloquent.TimestampLayout)
	_, err := m.DB.Table(m.Table).Insert(ctx, map[string]interface{}{
		"name":       name,
		"batch":      batch,
		"created_at": now,
		"updated_at": now,
	})
	return err
}
