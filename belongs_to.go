package teloquent

import (
	"context"

	"github.com/teloquent/teloquent/utils"
)

// BelongsTo inverse one-to-one or one-to-many: the parent carries ForeignKey referencing
// the related OwnerKey
type BelongsTo struct {
	relation[*BelongsTo]
	ForeignKey string
	OwnerKey   string
}

// NewBelongsTo builds an unscoped resolver, call AddConstraints to scope it to parent
func NewBelongsTo(related *ModelType, parent *Model, foreignKey, ownerKey string) *BelongsTo {
	r := &BelongsTo{ForeignKey: foreignKey, OwnerKey: ownerKey}
	r.init(r, related, parent)
	return r
}

// AddConstraints scopes the query to related.ownerKey = parent.foreignKey.
// A parent without a foreign key value adds no predicate, and the terminals below skip the query.
func (r *BelongsTo) AddConstraints() {
	if r.associated() {
		r.query.Where(r.OwnerKey, r.parent.GetAttribute(r.ForeignKey))
	}
}

func (r *BelongsTo) associated() bool {
	return r.parent.GetAttribute(r.ForeignKey) != nil
}

// Get returns the owner in a collection, empty without a query when the foreign key is null
func (r *BelongsTo) Get(ctx context.Context) (*Collection, error) {
	if !r.associated() {
		return NewCollection(), nil
	}
	return r.relation.Get(ctx)
}

// First returns the owner, nil without a query when the foreign key is null
func (r *BelongsTo) First(ctx context.Context) (*Model, error) {
	if !r.associated() {
		return nil, nil
	}
	return r.relation.First(ctx)
}

func (r *BelongsTo) Count(ctx context.Context) (int64, error) {
	if !r.associated() {
		return 0, nil
	}
	return r.relation.Count(ctx)
}

func (r *BelongsTo) Exists(ctx context.Context) (bool, error) {
	if !r.associated() {
		return false, nil
	}
	return r.relation.Exists(ctx)
}

// GetResults returns the owning record, nil without a query when the foreign key is null
func (r *BelongsTo) GetResults(ctx context.Context) (*Model, error) {
	return r.First(ctx)
}

// EagerLoad gives each parent its owning record or nil. Parents without a foreign key value get nil,
// and when none has one no query runs.
func (r *BelongsTo) EagerLoad(ctx context.Context, parents *Collection, path string) error {
	if parents.IsEmpty() {
		return nil
	}

	query, name := r.eagerQuery(path)
	dictionary := map[string]*Model{}

	if keys := keyValues(parents, r.ForeignKey); len(keys) > 0 {
		results, err := query.WhereIn(r.OwnerKey, keys).Get(ctx)
		if err != nil {
			return err
		}
		dictionary = results.KeyBy(r.OwnerKey)
	}

	for _, parent := range parents.items {
		value := parent.GetAttribute(r.ForeignKey)
		if value == nil {
			parent.SetRelation(name, nil)
			continue
		}
		parent.SetRelation(name, dictionary[utils.ToStringKey(value)])
	}
	return nil
}

// Associate sets the parent's foreign key to owner's key and saves the parent
func (r *BelongsTo) Associate(ctx context.Context, owner *Model) (*Model, error) {
	r.parent.SetAttribute(r.ForeignKey, owner.GetAttribute(r.OwnerKey))
	if _, err := r.parent.Save(ctx); err != nil {
		return nil, err
	}
	return r.parent, nil
}

// Dissociate clears the parent's foreign key and saves the parent
func (r *BelongsTo) Dissociate(ctx context.Context) (*Model, error) {
	r.parent.SetAttribute(r.ForeignKey, nil)
	if _, err := r.parent.Save(ctx); err != nil {
		return nil, err
	}
	return r.parent, nil
}
