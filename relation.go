package teloquent

import (
	"context"

	"github.com/teloquent/teloquent/utils"
)

// Relation a relationship resolver: a query over the related model type scoped to one
// parent record, plus batch loading for a whole parent collection
type Relation interface {
	// Query returns the underlying query over the related table
	Query() *Query
	// AddConstraints scopes the query to the parent record
	AddConstraints()
	// EagerLoad loads the relation for every parent with a single query and stores it under the
	// first segment of path; the rest of path is eager loaded on the related records
	EagerLoad(ctx context.Context, parents *Collection, path string) error
}

// relation shared resolver state. R is the embedding resolver, returned by the
// pass-through methods so calls chain on the concrete type.
type relation[R any] struct {
	self    R
	related *ModelType
	parent  *Model
	query   *Query
}

func (r *relation[R]) init(self R, related *ModelType, parent *Model) {
	r.self = self
	r.related = related
	r.parent = parent
	r.query = related.Query()
}

// Query returns the underlying query over the related table
func (r *relation[R]) Query() *Query {
	return r.query
}

// Related returns the related model type
func (r *relation[R]) Related() *ModelType {
	return r.related
}

// Parent returns the record the resolver is scoped to
func (r *relation[R]) Parent() *Model {
	return r.parent
}

func (r *relation[R]) Where(column string, args ...interface{}) R {
	r.query.Where(column, args...)
	return r.self
}

func (r *relation[R]) OrWhere(column string, args ...interface{}) R {
	r.query.OrWhere(column, args...)
	return r.self
}

func (r *relation[R]) WhereIn(column string, values interface{}) R {
	r.query.WhereIn(column, values)
	return r.self
}

func (r *relation[R]) OrderBy(column string, direction ...string) R {
	r.query.OrderBy(column, direction...)
	return r.self
}

func (r *relation[R]) Limit(limit int) R {
	r.query.Limit(limit)
	return r.self
}

func (r *relation[R]) Offset(offset int) R {
	r.query.Offset(offset)
	return r.self
}

func (r *relation[R]) With(paths ...string) R {
	r.query.With(paths...)
	return r.self
}

// Get runs the scoped query
func (r *relation[R]) Get(ctx context.Context) (*Collection, error) {
	return r.query.Get(ctx)
}

// First runs the scoped query limited to one row
func (r *relation[R]) First(ctx context.Context) (*Model, error) {
	return r.query.First(ctx)
}

func (r *relation[R]) Count(ctx context.Context) (int64, error) {
	return r.query.Count(ctx)
}

func (r *relation[R]) Exists(ctx context.Context) (bool, error) {
	return r.query.Exists(ctx)
}

// eagerQuery fresh, unscoped query over the related table, eager loading the nested part of path
func (r *relation[R]) eagerQuery(path string) (*Query, string) {
	name, nested := utils.SplitNestedRelationName(path)
	query := r.related.Query()
	if nested != "" {
		query.With(nested)
	}
	return query, name
}

// loadRelations eager loads paths onto parents in order. Unknown relation names are
// logged and skipped.
func loadRelations(ctx context.Context, db *DB, mt *ModelType, parents *Collection, paths []string) error {
	if parents.IsEmpty() {
		return nil
	}

	for _, path := range paths {
		name, _ := utils.SplitNestedRelationName(path)
		fn, ok := mt.relations[name]
		if !ok {
			db.Logger.Warn(ctx, "relation %q does not exist on model %s", name, mt.Name)
			continue
		}

		if err := fn(parents.First()).EagerLoad(ctx, parents, path); err != nil {
			return err
		}
	}
	return nil
}

// keyValues distinct non-nil values of key across models, in first-seen order
func keyValues(models *Collection, key string) []interface{} {
	var (
		values []interface{}
		seen   = map[string]bool{}
	)
	for _, m := range models.items {
		value := m.GetAttribute(key)
		if value == nil {
			continue
		}
		if k := utils.ToStringKey(value); !seen[k] {
			seen[k] = true
			values = append(values, value)
		}
	}
	return values
}
