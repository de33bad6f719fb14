package teloquent

import (
	"context"

	"github.com/teloquent/teloquent/utils"
)

// HasMany one-to-many: related rows carry ForeignKey referencing the parent's LocalKey
type HasMany struct {
	relation[*HasMany]
	ForeignKey string
	LocalKey   string
}

// NewHasMany builds an unscoped resolver, call AddConstraints to scope it to parent
func NewHasMany(related *ModelType, parent *Model, foreignKey, localKey string) *HasMany {
	r := &HasMany{ForeignKey: foreignKey, LocalKey: localKey}
	r.init(r, related, parent)
	return r
}

// AddConstraints scopes the query to related.foreignKey = parent.localKey
func (r *HasMany) AddConstraints() {
	r.query.Where(r.ForeignKey, r.parent.GetAttribute(r.LocalKey))
}

// GetResults returns the related records
func (r *HasMany) GetResults(ctx context.Context) (*Collection, error) {
	return r.Get(ctx)
}

// EagerLoad gives each parent a collection of the related records whose foreign key matches its local key
func (r *HasMany) EagerLoad(ctx context.Context, parents *Collection, path string) error {
	if parents.IsEmpty() {
		return nil
	}

	query, name := r.eagerQuery(path)
	dictionary := map[string][]*Model{}

	if keys := keyValues(parents, r.LocalKey); len(keys) > 0 {
		results, err := query.WhereIn(r.ForeignKey, keys).Get(ctx)
		if err != nil {
			return err
		}

		for _, m := range results.items {
			k := utils.ToStringKey(m.GetAttribute(r.ForeignKey))
			dictionary[k] = append(dictionary[k], m)
		}
	}

	for _, parent := range parents.items {
		parent.SetRelation(name, NewCollection(dictionary[utils.ToStringKey(parent.GetAttribute(r.LocalKey))]...))
	}
	return nil
}

// Create creates a related record with its foreign key set to the parent's local key
func (r *HasMany) Create(ctx context.Context, attrs map[string]interface{}) (*Model, error) {
	m := r.related.New(attrs)
	return r.Save(ctx, m)
}

// Save sets the foreign key of m to the parent's local key and saves it
func (r *HasMany) Save(ctx context.Context, m *Model) (*Model, error) {
	m.SetAttribute(r.ForeignKey, r.parent.GetAttribute(r.LocalKey))
	if _, err := m.Save(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
