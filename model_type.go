package teloquent

import (
	"context"

	"github.com/teloquent/teloquent/clause"
	"github.com/teloquent/teloquent/schema"
)

// KeyType how primary keys are produced on insert
type KeyType int

const (
	// KeyAutoIncrement the database assigns the key, read back from the insert id
	KeyAutoIncrement KeyType = iota
	// KeyUUID a time ordered UUID string is assigned before insert when the key is unset
	KeyUUID
)

// Accessor computes a virtual attribute
type Accessor func(m *Model) interface{}

// Mutator transforms a value before it is cast and stored
type Mutator func(m *Model, value interface{}) interface{}

// RelationFunc builds the relation named on registration for a record
type RelationFunc func(m *Model) Relation

// Options model type declaration. Zero values fall back to the defaults:
// table derived from the name, primary key "id", timestamps on.
type Options struct {
	Table             string
	PrimaryKey        string
	KeyType           KeyType
	DisableTimestamps bool
	Casts             map[string]CastType
	Hidden            []string
	Visible           []string
	Appends           []string
	Accessors         map[string]Accessor
	Mutators          map[string]Mutator
}

// ModelType per-type record metadata: table, key, casts, serialization lists,
// accessors, mutators, relations and lifecycle handlers
type ModelType struct {
	Name string
	Options

	db        *DB
	relations map[string]RelationFunc
	handlers  registry
}

// Define declares a model type. Without Bind it resolves the process default DB at first I/O.
func Define(name string, opts ...Options) *ModelType {
	mt := &ModelType{Name: name, relations: map[string]RelationFunc{}}
	if len(opts) > 0 {
		mt.Options = opts[0]
	}
	return mt
}

// Bind binds the model type to db
func (mt *ModelType) Bind(db *DB) *ModelType {
	mt.db = db
	return mt
}

// DB returns the bound DB or the process default, nil when neither exists
func (mt *ModelType) DB() *DB {
	if mt.db != nil {
		return mt.db
	}
	return Default()
}

func (mt *ModelType) resolveDB() (*DB, error) {
	if db := mt.DB(); db != nil && db.Conn != nil {
		return db, nil
	}
	return nil, ErrNotInitialized
}

func (mt *ModelType) namer() schema.Namer {
	if db := mt.DB(); db != nil && db.NamingStrategy != nil {
		return db.NamingStrategy
	}
	return schema.NamingStrategy{}
}

// TableName declared table or plural of the lower-cased name
func (mt *ModelType) TableName() string {
	if mt.Table != "" {
		return mt.Table
	}
	return mt.namer().TableName(mt.Name)
}

// PrimaryKeyName declared primary key or "id"
func (mt *ModelType) PrimaryKeyName() string {
	if mt.PrimaryKey != "" {
		return mt.PrimaryKey
	}
	return "id"
}

// Timestamps reports whether created_at and updated_at are maintained
func (mt *ModelType) Timestamps() bool {
	return !mt.DisableTimestamps
}

// ForeignKey default foreign key referencing this model type, "user_id" for User
func (mt *ModelType) ForeignKey() string {
	return mt.namer().ForeignKey(mt.Name)
}

// Relation registers a named relation, used by eager loading and Model.Load
func (mt *ModelType) Relation(name string, fn RelationFunc) *ModelType {
	mt.relations[name] = fn
	return mt
}

// HasRelation reports whether name is a registered relation
func (mt *ModelType) HasRelation(name string) bool {
	_, ok := mt.relations[name]
	return ok
}

// New returns an unsaved record filled with attrs
func (mt *ModelType) New(attrs ...map[string]interface{}) *Model {
	m := newModel(mt)
	for _, a := range attrs {
		m.Fill(a)
	}
	return m
}

// Query starts a query over the model type's table
func (mt *ModelType) Query() *Query {
	return newQuery(mt.db, mt, mt.TableName())
}

// All loads every record
func (mt *ModelType) All(ctx context.Context) (*Collection, error) {
	return mt.Query().Get(ctx)
}

// Find loads the record whose primary key equals id, nil when absent
func (mt *ModelType) Find(ctx context.Context, id interface{}) (*Model, error) {
	return mt.Query().Find(ctx, id)
}

// FindOrFail is Find returning a *NotFoundError when absent
func (mt *ModelType) FindOrFail(ctx context.Context, id interface{}) (*Model, error) {
	m, err := mt.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &NotFoundError{Model: mt.Name, Key: id}
	}
	return m, nil
}

// Where starts a query with a where predicate
func (mt *ModelType) Where(column string, args ...interface{}) *Query {
	return mt.Query().Where(column, args...)
}

// With starts a query eager loading relation paths
func (mt *ModelType) With(paths ...string) *Query {
	return mt.Query().With(paths...)
}

// Create fills a new record with attrs and saves it
func (mt *ModelType) Create(ctx context.Context, attrs map[string]interface{}) (*Model, error) {
	m := mt.New(attrs)
	if _, err := m.Save(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateOrCreate finds the first record matching attributes, fills values and saves it,
// creating a record from attributes and values when none matches
func (mt *ModelType) UpdateOrCreate(ctx context.Context, attributes, values map[string]interface{}) (*Model, error) {
	m, err := mt.firstWhere(ctx, attributes)
	if err != nil {
		return nil, err
	}

	if m == nil {
		m = mt.New(attributes)
	}
	m.Fill(values)

	if _, err := m.Save(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// FirstOrCreate returns the first record matching attributes, creating it from
// attributes and values when none matches
func (mt *ModelType) FirstOrCreate(ctx context.Context, attributes, values map[string]interface{}) (*Model, error) {
	m, err := mt.firstWhere(ctx, attributes)
	if err != nil || m != nil {
		return m, err
	}

	m = mt.New(attributes, values)
	if _, err := m.Save(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (mt *ModelType) firstWhere(ctx context.Context, attributes map[string]interface{}) (*Model, error) {
	query := mt.Query()
	for _, key := range sortedKeys(attributes) {
		query.Where(key, attributes[key])
	}
	return query.First(ctx)
}

// Destroy loads the records with the given keys and deletes them one by one, firing
// their deleting and deleted handlers. It returns the number of deleted records.
func (mt *ModelType) Destroy(ctx context.Context, ids ...interface{}) (int64, error) {
	if len(ids) == 1 {
		ids = clause.Values(ids[0])
	}
	if len(ids) == 0 {
		return 0, nil
	}

	records, err := mt.Query().WhereIn(mt.PrimaryKeyName(), ids).Get(ctx)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, m := range records.All() {
		ok, err := m.Delete(ctx)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}
