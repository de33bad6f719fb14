package teloquent

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/teloquent/teloquent/utils"
)

// Collection ordered list of records. Transforming operations return a new collection
// and leave the receiver unchanged.
type Collection struct {
	items []*Model
}

// NewCollection wraps a copy of items
func NewCollection(items ...*Model) *Collection {
	return &Collection{items: append([]*Model(nil), items...)}
}

// All returns a copy of the items
func (c *Collection) All() []*Model {
	return append([]*Model(nil), c.items...)
}

// Get returns the item at index, nil when out of range
func (c *Collection) Get(index int) *Model {
	if index < 0 || index >= len(c.items) {
		return nil
	}
	return c.items[index]
}

func (c *Collection) First() *Model {
	return c.Get(0)
}

func (c *Collection) Last() *Model {
	return c.Get(len(c.items) - 1)
}

func (c *Collection) Count() int {
	return len(c.items)
}

func (c *Collection) IsEmpty() bool {
	return len(c.items) == 0
}

// Filter returns the items fn accepts
func (c *Collection) Filter(fn func(m *Model, index int) bool) *Collection {
	var items []*Model
	for idx, m := range c.items {
		if fn(m, idx) {
			items = append(items, m)
		}
	}
	return &Collection{items: items}
}

// Find returns the first item fn accepts, nil when none does
func (c *Collection) Find(fn func(m *Model, index int) bool) *Model {
	for idx, m := range c.items {
		if fn(m, idx) {
			return m
		}
	}
	return nil
}

// Each calls fn for every item and returns the collection
func (c *Collection) Each(fn func(m *Model, index int)) *Collection {
	for idx, m := range c.items {
		fn(m, idx)
	}
	return c
}

// Iter iterates index, item pairs
func (c *Collection) Iter() iter.Seq2[int, *Model] {
	return func(yield func(int, *Model) bool) {
		for idx, m := range c.items {
			if !yield(idx, m) {
				return
			}
		}
	}
}

// SortBy stable sorts by an attribute, direction "asc" (default) or "desc"
func (c *Collection) SortBy(key string, direction ...string) *Collection {
	return c.SortByFunc(func(m *Model) interface{} { return m.GetAttribute(key) }, direction...)
}

// SortByFunc stable sorts by the value fn derives from each item
func (c *Collection) SortByFunc(fn func(m *Model) interface{}, direction ...string) *Collection {
	desc := len(direction) > 0 && strings.EqualFold(direction[0], Desc)

	items := c.All()
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return compareValues(fn(items[j]), fn(items[i])) < 0
		}
		return compareValues(fn(items[i]), fn(items[j])) < 0
	})
	return &Collection{items: items}
}

// GroupBy groups items by the string key of an attribute
func (c *Collection) GroupBy(key string) map[string]*Collection {
	return c.GroupByFunc(func(m *Model) interface{} { return m.GetAttribute(key) })
}

// GroupByFunc groups items by the string key of the value fn derives from each item
func (c *Collection) GroupByFunc(fn func(m *Model) interface{}) map[string]*Collection {
	groups := map[string]*Collection{}
	for _, m := range c.items {
		k := utils.ToStringKey(fn(m))
		if _, ok := groups[k]; !ok {
			groups[k] = &Collection{}
		}
		groups[k].items = append(groups[k].items, m)
	}
	return groups
}

// Pluck returns one attribute of every item
func (c *Collection) Pluck(key string) []interface{} {
	values := make([]interface{}, len(c.items))
	for idx, m := range c.items {
		values[idx] = m.GetAttribute(key)
	}
	return values
}

// KeyBy indexes items by the string key of an attribute, later items win
func (c *Collection) KeyBy(key string) map[string]*Model {
	return c.KeyByFunc(func(m *Model) interface{} { return m.GetAttribute(key) })
}

func (c *Collection) KeyByFunc(fn func(m *Model) interface{}) map[string]*Model {
	keyed := make(map[string]*Model, len(c.items))
	for _, m := range c.items {
		keyed[utils.ToStringKey(fn(m))] = m
	}
	return keyed
}

// Merge returns the items of c followed by the items of others
func (c *Collection) Merge(others ...*Collection) *Collection {
	items := c.All()
	for _, other := range others {
		if other != nil {
			items = append(items, other.items...)
		}
	}
	return &Collection{items: items}
}

// Slice returns items[start:end]. Negative bounds count from the end, end is optional.
func (c *Collection) Slice(start int, end ...int) *Collection {
	n := len(c.items)
	stop := n
	if len(end) > 0 {
		stop = end[0]
	}

	start, stop = clampIndex(start, n), clampIndex(stop, n)
	if start >= stop {
		return &Collection{}
	}
	return NewCollection(c.items[start:stop]...)
}

// Take returns the first n items
func (c *Collection) Take(n int) *Collection {
	if n <= 0 {
		return &Collection{}
	}
	return c.Slice(0, n)
}

// TakeLast returns the last n items
func (c *Collection) TakeLast(n int) *Collection {
	if n <= 0 {
		return &Collection{}
	}
	return c.Slice(-n)
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		idx += n
	}
	if idx < 0 {
		return 0
	}
	if idx > n {
		return n
	}
	return idx
}

// ToJSON serializes every item
func (c *Collection) ToJSON() []map[string]interface{} {
	results := make([]map[string]interface{}, len(c.items))
	for idx, m := range c.items {
		results[idx] = m.ToJSON()
	}
	return results
}

// MarshalJSON implements json.Marshaler
func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToJSON())
}

// Load eager loads relation paths onto every item, using the first item's model type
func (c *Collection) Load(ctx context.Context, paths ...string) error {
	if c.IsEmpty() || len(paths) == 0 {
		return nil
	}

	mt := c.First().Type()
	db, err := mt.resolveDB()
	if err != nil {
		return err
	}
	return loadRelations(ctx, db, mt, c, paths)
}

// Map returns fn applied to every item
func Map[U any](c *Collection, fn func(m *Model, index int) U) []U {
	results := make([]U, len(c.items))
	for idx, m := range c.items {
		results[idx] = fn(m, idx)
	}
	return results
}

// Reduce folds the items into a single value
func Reduce[U any](c *Collection, fn func(acc U, m *Model, index int) U, initial U) U {
	acc := initial
	for idx, m := range c.items {
		acc = fn(acc, m, idx)
	}
	return acc
}

// compareValues orders nil first, then numbers, times, booleans and strings by value;
// mixed kinds compare by their string form
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}

	if isNumber(a) && isNumber(b) {
		fa, fb := cast.ToFloat64(a), cast.ToFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
