package teloquent

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"github.com/teloquent/teloquent/utils"
)

// Model a record of a model type: its attributes, the snapshot of what is stored,
// pending changes, loaded relations and the pivot row it was loaded through
type Model struct {
	typ        *ModelType
	attributes map[string]interface{}
	original   map[string]interface{}
	changes    map[string]interface{}
	relations  map[string]interface{}
	pivot      map[string]interface{}
	exists     bool
}

func newModel(mt *ModelType) *Model {
	return &Model{
		typ:        mt,
		attributes: map[string]interface{}{},
		original:   map[string]interface{}{},
		changes:    map[string]interface{}{},
		relations:  map[string]interface{}{},
	}
}

// Type returns the record's model type
func (m *Model) Type() *ModelType {
	return m.typ
}

// Fill assigns each attribute through SetAttribute in sorted key order
func (m *Model) Fill(attrs map[string]interface{}) *Model {
	for _, key := range sortedKeys(attrs) {
		m.SetAttribute(key, attrs[key])
	}
	return m
}

// FillPairs assigns key, value pairs in the given order. A trailing key without value is ignored.
func (m *Model) FillPairs(pairs ...interface{}) *Model {
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			m.SetAttribute(key, pairs[i+1])
		}
	}
	return m
}

// SetAttribute runs the key's mutator then its cast and records the result as a change
func (m *Model) SetAttribute(key string, value interface{}) *Model {
	if mutator, ok := m.typ.Mutators[key]; ok {
		value = mutator(m, value)
	}
	m.assignAttribute(key, value)
	return m
}

// assignAttribute applies the key's cast and records the result as a change, skipping mutators.
// Stored values already went through the mutator when they were written.
func (m *Model) assignAttribute(key string, value interface{}) {
	if castType, ok := m.typ.Casts[key]; ok {
		value = castValue(castType, value)
	}

	m.attributes[key] = value
	m.changes[key] = value
}

// Set is SetAttribute
func (m *Model) Set(key string, value interface{}) *Model {
	return m.SetAttribute(key, value)
}

// GetAttribute resolves key from the attributes, then the loaded relations, then the accessors
func (m *Model) GetAttribute(key string) interface{} {
	if value, ok := m.attributes[key]; ok {
		return value
	}
	if value, ok := m.relations[key]; ok {
		return value
	}
	if accessor, ok := m.typ.Accessors[key]; ok {
		return accessor(m)
	}
	return nil
}

// Get is GetAttribute
func (m *Model) Get(key string) interface{} {
	return m.GetAttribute(key)
}

// UnsetAttribute removes key from the attributes and pending changes
func (m *Model) UnsetAttribute(key string) *Model {
	delete(m.attributes, key)
	delete(m.changes, key)
	return m
}

// Attributes returns a copy of the attributes
func (m *Model) Attributes() map[string]interface{} {
	return copyMap(m.attributes)
}

// Original returns a copy of the last synced attributes
func (m *Model) Original() map[string]interface{} {
	return copyMap(m.original)
}

// Changes returns a copy of the attributes assigned since the last sync
func (m *Model) Changes() map[string]interface{} {
	return copyMap(m.changes)
}

// GetKey returns the primary key value
func (m *Model) GetKey() interface{} {
	return m.GetAttribute(m.typ.PrimaryKeyName())
}

// IsDirty reports whether any attribute changed since the last sync
func (m *Model) IsDirty() bool {
	return len(m.changes) > 0
}

// IsDirtyKey reports whether any of keys changed since the last sync
func (m *Model) IsDirtyKey(keys ...string) bool {
	for _, key := range keys {
		if _, ok := m.changes[key]; ok {
			return true
		}
	}
	return false
}

// IsNew reports whether the record has not been persisted
func (m *Model) IsNew() bool {
	return !m.exists
}

// Exists reports whether the record is known to be persisted
func (m *Model) Exists() bool {
	return m.exists
}

// SetRelation stores a loaded relation: a *Model, a *Collection or nil
func (m *Model) SetRelation(name string, value interface{}) *Model {
	switch v := value.(type) {
	case *Model:
		if v == nil {
			value = nil
		}
	case *Collection:
		if v == nil {
			value = nil
		}
	}
	m.relations[name] = value
	return m
}

// Relation returns a loaded relation, nil when not loaded or loaded empty
func (m *Model) Relation(name string) interface{} {
	return m.relations[name]
}

// RelationLoaded reports whether name has been loaded
func (m *Model) RelationLoaded(name string) bool {
	_, ok := m.relations[name]
	return ok
}

// Related builds the resolver registered as name on the model type
func (m *Model) Related(name string) (Relation, error) {
	fn, ok := m.typ.relations[name]
	if !ok {
		return nil, ErrUnknownRelation
	}
	return fn(m), nil
}

// GetRelation returns relation name, loading it first when not loaded yet
func (m *Model) GetRelation(ctx context.Context, name string) (interface{}, error) {
	if !m.RelationLoaded(name) {
		if !m.typ.HasRelation(name) {
			return nil, ErrUnknownRelation
		}
		if err := m.Load(ctx, name); err != nil {
			return nil, err
		}
	}
	return m.relations[name], nil
}

// Load eager loads relation paths onto this record
func (m *Model) Load(ctx context.Context, paths ...string) error {
	return NewCollection(m).Load(ctx, paths...)
}

// Pivot returns the pivot row the record was loaded through a many-to-many relation with, nil otherwise
func (m *Model) Pivot() map[string]interface{} {
	if m.pivot == nil {
		return nil
	}
	return copyMap(m.pivot)
}

// Save inserts a new record or updates the changed attributes of an existing one.
// The saving and saved handlers wrap both paths.
func (m *Model) Save(ctx context.Context) (bool, error) {
	db, err := m.typ.resolveDB()
	if err != nil {
		return false, err
	}

	if err := m.fireEvent(ctx, Saving); err != nil {
		return false, err
	}

	var saved bool
	if m.exists {
		saved, err = m.performUpdate(ctx, db)
	} else {
		saved, err = m.performInsert(ctx, db)
	}
	if err != nil {
		return false, err
	}

	m.changes = map[string]interface{}{}
	if err := m.fireEvent(ctx, Saved); err != nil {
		return saved, err
	}
	return saved, nil
}

func (m *Model) performInsert(ctx context.Context, db *DB) (bool, error) {
	if m.typ.Timestamps() {
		ts := db.now().UTC().Format(TimestampLayout)
		m.SetAttribute("created_at", ts)
		m.SetAttribute("updated_at", ts)
	}

	pk := m.typ.PrimaryKeyName()
	if m.typ.KeyType == KeyUUID && isEmptyKey(m.GetKey()) {
		id, err := uuid.NewV7()
		if err != nil {
			return false, err
		}
		m.SetAttribute(pk, id.String())
	}

	if err := m.fireEvent(ctx, Creating); err != nil {
		return false, err
	}

	id, err := db.insertRow(ctx, m.typ.TableName(), copyMap(m.attributes))
	if err != nil {
		return false, err
	}

	if isEmptyKey(m.GetKey()) {
		m.SetAttribute(pk, id)
	}

	m.exists = true
	m.syncOriginal()

	if err := m.fireEvent(ctx, Created); err != nil {
		return true, err
	}
	return true, nil
}

func (m *Model) performUpdate(ctx context.Context, db *DB) (bool, error) {
	if !m.IsDirty() {
		return true, nil
	}

	if m.typ.Timestamps() {
		m.SetAttribute("updated_at", db.now().UTC().Format(TimestampLayout))
	}

	if err := m.fireEvent(ctx, Updating); err != nil {
		return false, err
	}

	affected, err := m.keyQuery(db).Update(ctx, copyMap(m.changes))
	if err != nil {
		return false, err
	}

	m.syncOriginal()

	if err := m.fireEvent(ctx, Updated); err != nil {
		return affected > 0, err
	}
	return affected > 0, nil
}

// Delete removes an existing record. A record that was never saved is left alone and false is returned.
func (m *Model) Delete(ctx context.Context) (bool, error) {
	if !m.exists {
		return false, nil
	}

	db, err := m.typ.resolveDB()
	if err != nil {
		return false, err
	}

	if err := m.fireEvent(ctx, Deleting); err != nil {
		return false, err
	}

	affected, err := m.keyQuery(db).Delete(ctx)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	m.exists = false
	if err := m.fireEvent(ctx, Deleted); err != nil {
		return true, err
	}
	return true, nil
}

// Refresh reloads the attributes from the database, dropping pending changes and loaded relations.
// Records that were never saved, or whose row is gone, are left untouched.
func (m *Model) Refresh(ctx context.Context) error {
	if !m.exists {
		return nil
	}

	key := m.GetKey()
	if isEmptyKey(key) {
		return ErrMissingPrimaryKey
	}

	fresh, err := m.typ.Find(ctx, key)
	if err != nil {
		return err
	}
	if fresh == nil {
		return nil
	}

	m.attributes = copyMap(fresh.attributes)
	m.original = copyMap(fresh.attributes)
	m.changes = map[string]interface{}{}
	m.relations = map[string]interface{}{}
	m.exists = true
	return nil
}

func (m *Model) keyQuery(db *DB) *Query {
	return newQuery(db, m.typ, m.typ.TableName()).Where(m.typ.PrimaryKeyName(), m.GetKey())
}

func (m *Model) syncOriginal() {
	m.original = copyMap(m.attributes)
}

// ToJSON serializes the record: the visible attributes (all but hidden when no visible list is set),
// appended accessors, loaded relations and the pivot row
func (m *Model) ToJSON() map[string]interface{} {
	result := map[string]interface{}{}

	if len(m.typ.Visible) > 0 {
		for _, key := range m.typ.Visible {
			result[key] = m.GetAttribute(key)
		}
	} else {
		for key, value := range m.attributes {
			if !utils.Contains(m.typ.Hidden, key) {
				result[key] = value
			}
		}
	}

	for _, key := range m.typ.Appends {
		result[key] = m.GetAttribute(key)
	}

	for name, relation := range m.relations {
		switch v := relation.(type) {
		case *Model:
			result[name] = v.ToJSON()
		case *Collection:
			result[name] = v.ToJSON()
		case nil:
			result[name] = nil
		}
	}

	if m.pivot != nil {
		result["pivot"] = copyMap(m.pivot)
	}
	return result
}

// MarshalJSON implements json.Marshaler
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToJSON())
}

// HasOne builds a has-one resolver scoped to this record.
// keys are the foreign key on the related table and the local key, both optional.
func (m *Model) HasOne(related *ModelType, keys ...string) *HasOne {
	foreignKey, localKey := optionalKeys(keys, m.typ.ForeignKey(), m.typ.PrimaryKeyName())
	r := NewHasOne(related, m, foreignKey, localKey)
	r.AddConstraints()
	return r
}

// HasMany builds a has-many resolver scoped to this record.
// keys are the foreign key on the related table and the local key, both optional.
func (m *Model) HasMany(related *ModelType, keys ...string) *HasMany {
	foreignKey, localKey := optionalKeys(keys, m.typ.ForeignKey(), m.typ.PrimaryKeyName())
	r := NewHasMany(related, m, foreignKey, localKey)
	r.AddConstraints()
	return r
}

// BelongsTo builds a belongs-to resolver scoped to this record.
// keys are the foreign key on this record and the owner key on the related table, both optional.
func (m *Model) BelongsTo(related *ModelType, keys ...string) *BelongsTo {
	foreignKey, ownerKey := optionalKeys(keys, related.ForeignKey(), related.PrimaryKeyName())
	r := NewBelongsTo(related, m, foreignKey, ownerKey)
	r.AddConstraints()
	return r
}

// BelongsToMany builds a many-to-many resolver scoped to this record.
// keys are the pivot table, the foreign and related pivot keys, the parent key and the related key, all optional.
func (m *Model) BelongsToMany(related *ModelType, keys ...string) *BelongsToMany {
	var table string
	if len(keys) > 0 {
		table, keys = keys[0], keys[1:]
	}
	if table == "" {
		table = m.typ.namer().JoinTableName(m.typ.Name, related.Name)
	}

	foreignPivotKey, relatedPivotKey := optionalKeys(keys, m.typ.ForeignKey(), related.ForeignKey())
	if len(keys) > 2 {
		keys = keys[2:]
	} else {
		keys = nil
	}
	parentKey, relatedKey := optionalKeys(keys, m.typ.PrimaryKeyName(), related.PrimaryKeyName())

	r := NewBelongsToMany(related, m, table, foreignPivotKey, relatedPivotKey, parentKey, relatedKey)
	r.AddConstraints()
	return r
}

func optionalKeys(keys []string, first, second string) (string, string) {
	if len(keys) > 0 && keys[0] != "" {
		first = keys[0]
	}
	if len(keys) > 1 && keys[1] != "" {
		second = keys[1]
	}
	return first, second
}

// hydrate builds a persisted record from a database row: attributes are cast but not mutated,
// then the record is synced so it starts clean
func (mt *ModelType) hydrate(row map[string]interface{}) *Model {
	m := newModel(mt)
	for key, value := range row {
		m.assignAttribute(key, value)
	}
	m.exists = true
	m.syncOriginal()
	m.changes = map[string]interface{}{}
	return m
}

// isEmptyKey reports nil, zero numbers and empty strings
func isEmptyKey(key interface{}) bool {
	if key == nil {
		return true
	}

	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return v.IsZero()
	}
	return false
}

func copyMap(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
