package teloquent

import (
	"context"

	"github.com/teloquent/teloquent/utils"
)

// HasOne one-to-one where the related row carries ForeignKey referencing the parent's LocalKey
type HasOne struct {
	relation[*HasOne]
	ForeignKey string
	LocalKey   string
}

// NewHasOne builds an unscoped resolver, call AddConstraints to scope it to parent
func NewHasOne(related *ModelType, parent *Model, foreignKey, localKey string) *HasOne {
	r := &HasOne{ForeignKey: foreignKey, LocalKey: localKey}
	r.init(r, related, parent)
	return r
}

// AddConstraints scopes the query to related.foreignKey = parent.localKey
func (r *HasOne) AddConstraints() {
	r.query.Where(r.ForeignKey, r.parent.GetAttribute(r.LocalKey))
}

// GetResults returns the related record, nil when there is none
func (r *HasOne) GetResults(ctx context.Context) (*Model, error) {
	return r.First(ctx)
}

// EagerLoad gives each parent the related record whose foreign key matches its local key, or nil.
// When several match, the last one returned wins.
func (r *HasOne) EagerLoad(ctx context.Context, parents *Collection, path string) error {
	if parents.IsEmpty() {
		return nil
	}

	query, name := r.eagerQuery(path)
	dictionary := map[string]*Model{}

	if keys := keyValues(parents, r.LocalKey); len(keys) > 0 {
		results, err := query.WhereIn(r.ForeignKey, keys).Get(ctx)
		if err != nil {
			return err
		}
		dictionary = results.KeyBy(r.ForeignKey)
	}

	for _, parent := range parents.items {
		parent.SetRelation(name, dictionary[utils.ToStringKey(parent.GetAttribute(r.LocalKey))])
	}
	return nil
}

// Create creates the related record with its foreign key set to the parent's local key
func (r *HasOne) Create(ctx context.Context, attrs map[string]interface{}) (*Model, error) {
	m := r.related.New(attrs)
	m.SetAttribute(r.ForeignKey, r.parent.GetAttribute(r.LocalKey))
	if _, err := m.Save(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
