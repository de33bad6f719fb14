package teloquent

import (
	"context"

	"github.com/teloquent/teloquent/clause"
	"github.com/teloquent/teloquent/utils"
)

const pivotPrefix = "pivot_"

// BelongsToMany many-to-many through a pivot table holding ForeignPivotKey (referencing the parent's
// ParentKey) and RelatedPivotKey (referencing the related RelatedKey)
type BelongsToMany struct {
	relation[*BelongsToMany]
	Table           string
	ForeignPivotKey string
	RelatedPivotKey string
	ParentKey       string
	RelatedKey      string
	pivotColumns    []string
}

// NewBelongsToMany builds an unscoped resolver, call AddConstraints to scope it to parent
func NewBelongsToMany(related *ModelType, parent *Model, table, foreignPivotKey, relatedPivotKey, parentKey, relatedKey string) *BelongsToMany {
	r := &BelongsToMany{
		Table:           table,
		ForeignPivotKey: foreignPivotKey,
		RelatedPivotKey: relatedPivotKey,
		ParentKey:       parentKey,
		RelatedKey:      relatedKey,
	}
	r.init(r, related, parent)
	return r
}

// AddConstraints joins the pivot table and scopes it to pivot.foreignPivotKey = parent.parentKey
func (r *BelongsToMany) AddConstraints() {
	r.performJoin(r.query)
	r.query.Where(r.qualify(r.ForeignPivotKey), r.parent.GetAttribute(r.ParentKey))
}

// WithPivot adds extra pivot columns to select into each record's pivot row. Columns already selected are skipped.
func (r *BelongsToMany) WithPivot(columns ...string) *BelongsToMany {
	for _, column := range columns {
		if !utils.Contains(r.pivotColumns, column) {
			r.pivotColumns = append(r.pivotColumns, column)
		}
	}
	return r
}

// Get runs the scoped query, moving the pivot columns of each record into its pivot row
func (r *BelongsToMany) Get(ctx context.Context) (*Collection, error) {
	results, err := r.selectColumns(r.query).Get(ctx)
	if err != nil {
		return nil, err
	}
	results.Each(func(m *Model, _ int) { r.extractPivot(m) })
	return results, nil
}

// First runs the scoped query limited to one row
func (r *BelongsToMany) First(ctx context.Context) (*Model, error) {
	m, err := r.selectColumns(r.query).First(ctx)
	if err != nil || m == nil {
		return nil, err
	}
	r.extractPivot(m)
	return m, nil
}

// GetResults returns the related records
func (r *BelongsToMany) GetResults(ctx context.Context) (*Collection, error) {
	return r.Get(ctx)
}

// EagerLoad gives each parent a collection of the records attached to it, each carrying its pivot row
func (r *BelongsToMany) EagerLoad(ctx context.Context, parents *Collection, path string) error {
	if parents.IsEmpty() {
		return nil
	}

	query, name := r.eagerQuery(path)
	dictionary := map[string][]*Model{}

	if keys := keyValues(parents, r.ParentKey); len(keys) > 0 {
		r.performJoin(query)
		results, err := r.selectColumns(query).WhereIn(r.qualify(r.ForeignPivotKey), keys).Get(ctx)
		if err != nil {
			return err
		}

		for _, m := range results.items {
			r.extractPivot(m)
			k := utils.ToStringKey(m.pivot[r.ForeignPivotKey])
			dictionary[k] = append(dictionary[k], m)
		}
	}

	for _, parent := range parents.items {
		parent.SetRelation(name, NewCollection(dictionary[utils.ToStringKey(parent.GetAttribute(r.ParentKey))]...))
	}
	return nil
}

// Attach inserts one pivot row per id. ids is a key, a record, a collection or a slice of those.
func (r *BelongsToMany) Attach(ctx context.Context, ids interface{}, pivotAttributes ...map[string]interface{}) error {
	parentKey, err := r.parentKey()
	if err != nil {
		return err
	}

	for _, id := range r.convertToIds(ids) {
		row := map[string]interface{}{}
		for _, attrs := range pivotAttributes {
			for k, v := range attrs {
				row[k] = v
			}
		}
		row[r.ForeignPivotKey] = parentKey
		row[r.RelatedPivotKey] = id

		if _, err := r.pivotQuery().Insert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// Detach deletes the parent's pivot rows for ids, or all of them when ids is nil.
// An empty list detaches nothing.
func (r *BelongsToMany) Detach(ctx context.Context, ids interface{}) (int64, error) {
	if ids == nil {
		return r.DetachAll(ctx)
	}

	keys := r.convertToIds(ids)
	if len(keys) == 0 {
		return 0, nil
	}

	parentKey, err := r.parentKey()
	if err != nil {
		return 0, err
	}
	return r.pivotQuery().Where(r.ForeignPivotKey, parentKey).WhereIn(r.RelatedPivotKey, keys).Delete(ctx)
}

// DetachAll deletes every pivot row of the parent
func (r *BelongsToMany) DetachAll(ctx context.Context) (int64, error) {
	parentKey, err := r.parentKey()
	if err != nil {
		return 0, err
	}
	return r.pivotQuery().Where(r.ForeignPivotKey, parentKey).Delete(ctx)
}

// Sync replaces the parent's pivot rows with one row per id
func (r *BelongsToMany) Sync(ctx context.Context, ids interface{}, pivotAttributes ...map[string]interface{}) error {
	if _, err := r.DetachAll(ctx); err != nil {
		return err
	}

	if keys := r.convertToIds(ids); len(keys) > 0 {
		return r.Attach(ctx, keys, pivotAttributes...)
	}
	return nil
}

// UpdateExistingPivot sets attributes on the pivot row linking the parent and id
func (r *BelongsToMany) UpdateExistingPivot(ctx context.Context, id interface{}, attributes map[string]interface{}) (int64, error) {
	parentKey, err := r.parentKey()
	if err != nil {
		return 0, err
	}
	return r.pivotQuery().
		Where(r.ForeignPivotKey, parentKey).
		Where(r.RelatedPivotKey, r.convertToId(id)).
		Update(ctx, attributes)
}

func (r *BelongsToMany) performJoin(query *Query) *Query {
	return query.Join(r.Table, r.related.TableName()+"."+r.RelatedKey, string(clause.Eq), r.qualify(r.RelatedPivotKey))
}

func (r *BelongsToMany) selectColumns(query *Query) *Query {
	columns := []string{r.related.TableName() + ".*"}
	for _, column := range r.pivotColumnList() {
		columns = append(columns, r.qualify(column)+" AS "+pivotPrefix+column)
	}
	return query.Select(columns...)
}

func (r *BelongsToMany) pivotColumnList() []string {
	columns := []string{r.ForeignPivotKey, r.RelatedPivotKey}
	for _, column := range r.pivotColumns {
		if !utils.Contains(columns, column) {
			columns = append(columns, column)
		}
	}
	return columns
}

// extractPivot moves the pivot_ prefixed attributes of m into its pivot row
func (r *BelongsToMany) extractPivot(m *Model) {
	pivot := map[string]interface{}{}
	for _, column := range r.pivotColumnList() {
		key := pivotPrefix + column
		if value, ok := m.attributes[key]; ok {
			pivot[column] = value
			m.UnsetAttribute(key)
			delete(m.original, key)
		}
	}
	m.pivot = pivot
}

func (r *BelongsToMany) qualify(column string) string {
	return r.Table + "." + column
}

func (r *BelongsToMany) pivotQuery() *Query {
	return newQuery(r.related.DB(), nil, r.Table)
}

func (r *BelongsToMany) parentKey() (interface{}, error) {
	key := r.parent.GetAttribute(r.ParentKey)
	if key == nil {
		return nil, ErrMissingPrimaryKey
	}
	return key, nil
}

func (r *BelongsToMany) convertToIds(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case *Model:
		return []interface{}{r.convertToId(v)}
	case *Collection:
		return Map(v, func(m *Model, _ int) interface{} { return r.convertToId(m) })
	case []*Model:
		return r.convertToIds(NewCollection(v...))
	}

	values := clause.Values(value)
	ids := make([]interface{}, len(values))
	for idx, item := range values {
		ids[idx] = r.convertToId(item)
	}
	return ids
}

func (r *BelongsToMany) convertToId(value interface{}) interface{} {
	if m, ok := value.(*Model); ok {
		return m.GetAttribute(r.RelatedKey)
	}
	return value
}
