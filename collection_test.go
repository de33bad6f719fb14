package teloquent_test

import (
	"encoding/json"
	"testing"

	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teloquent/teloquent"
)

var Person = teloquent.Define("Person")

func people() *teloquent.Collection {
	return teloquent.NewCollection(
		Person.New(map[string]interface{}{"id": 1, "name": "carol", "age": 30, "team": "a"}),
		Person.New(map[string]interface{}{"id": 2, "name": "alice", "age": 25, "team": "b"}),
		Person.New(map[string]interface{}{"id": 3, "name": "bob", "age": nil, "team": "a"}),
		Person.New(map[string]interface{}{"id": 4, "name": "dave", "age": 25, "team": "b"}),
	)
}

func TestCollectionFilterLeavesOriginal(t *testing.T) {
	c := people()

	adults := c.Filter(func(m *teloquent.Model, _ int) bool { return cast.ToInt(m.Get("age")) >= 30 })
	assert.Equal(t, []interface{}{1}, adults.Pluck("id"))
	assert.Equal(t, 4, c.Count())
	assert.Equal(t, []interface{}{1, 2, 3, 4}, c.Pluck("id"))
}

func TestCollectionAccessors(t *testing.T) {
	c := people()

	assert.Equal(t, 1, c.First().Get("id"))
	assert.Equal(t, 4, c.Last().Get("id"))
	assert.Nil(t, c.Get(10))
	assert.Nil(t, c.Get(-1))

	empty := teloquent.NewCollection()
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.First())
	assert.Nil(t, empty.Last())

	bob := c.Find(func(m *teloquent.Model, _ int) bool { return m.Get("name") == "bob" })
	require.NotNil(t, bob)
	assert.Equal(t, 3, bob.Get("id"))
	assert.Nil(t, c.Find(func(m *teloquent.Model, _ int) bool { return false }))

	items := c.All()
	items[0] = nil
	assert.NotNil(t, c.First())
}

func TestCollectionSortBy(t *testing.T) {
	c := people()

	assert.Equal(t, []interface{}{3, 2, 4, 1}, c.SortBy("age").Pluck("id"))
	assert.Equal(t, []interface{}{1, 2, 4, 3}, c.SortBy("age", teloquent.Desc).Pluck("id"))
	assert.Equal(t, []interface{}{"alice", "bob", "carol", "dave"}, c.SortBy("name").Pluck("name"))
	assert.Equal(t, []interface{}{1, 2, 3, 4}, c.Pluck("id"))

	byLength := c.SortByFunc(func(m *teloquent.Model) interface{} { return len(cast.ToString(m.Get("name"))) })
	assert.Equal(t, []interface{}{3, 4, 1, 2}, byLength.Pluck("id"))
}

func TestCollectionGrouping(t *testing.T) {
	c := people()

	groups := c.GroupBy("team")
	require.Len(t, groups, 2)
	assert.Equal(t, []interface{}{1, 3}, groups["a"].Pluck("id"))
	assert.Equal(t, []interface{}{2, 4}, groups["b"].Pluck("id"))

	keyed := c.KeyBy("id")
	assert.Equal(t, "dave", keyed["4"].Get("name"))

	byAge := c.KeyBy("age")
	assert.Equal(t, 4, byAge["25"].Get("id"))
}

func TestCollectionSlicing(t *testing.T) {
	c := people()

	assert.Equal(t, []interface{}{2, 3}, c.Slice(1, 3).Pluck("id"))
	assert.Equal(t, []interface{}{3, 4}, c.Slice(-2).Pluck("id"))
	assert.Equal(t, []interface{}{2, 3}, c.Slice(1, -1).Pluck("id"))
	assert.True(t, c.Slice(3, 1).IsEmpty())
	assert.Equal(t, []interface{}{1, 2}, c.Take(2).Pluck("id"))
	assert.Equal(t, []interface{}{4}, c.TakeLast(1).Pluck("id"))
	assert.True(t, c.Take(0).IsEmpty())
	assert.Equal(t, 4, c.Take(10).Count())

	merged := c.Take(1).Merge(c.TakeLast(1), nil)
	assert.Equal(t, []interface{}{1, 4}, merged.Pluck("id"))
}

func TestCollectionMapReduce(t *testing.T) {
	c := people()

	names := teloquent.Map(c, func(m *teloquent.Model, idx int) string {
		return cast.ToString(idx) + ":" + cast.ToString(m.Get("name"))
	})
	assert.Equal(t, []string{"0:carol", "1:alice", "2:bob", "3:dave"}, names)

	total := teloquent.Reduce(c, func(acc int, m *teloquent.Model, _ int) int {
		return acc + cast.ToInt(m.Get("age"))
	}, 0)
	assert.Equal(t, 80, total)

	var visited []int
	c.Each(func(m *teloquent.Model, idx int) { visited = append(visited, idx) })
	assert.Equal(t, []int{0, 1, 2, 3}, visited)

	visited = nil
	for idx := range c.Iter() {
		if idx == 2 {
			break
		}
		visited = append(visited, idx)
	}
	assert.Equal(t, []int{0, 1}, visited)
}

func TestCollectionJSON(t *testing.T) {
	c := teloquent.NewCollection(Person.New(map[string]interface{}{"name": "alice"}))

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"alice"}]`, string(data))
}
