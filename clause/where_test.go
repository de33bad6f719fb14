package clause_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teloquent/teloquent/clause"
)

func TestWhere(t *testing.T) {
	results := []struct {
		Conditions clause.Conditions
		Result     string
		Vars       []interface{}
	}{
		{
			clause.Conditions{
				{Column: "a", Operator: clause.Eq, Value: 1, Boolean: clause.And},
				{Column: "b", Operator: clause.Gt, Value: 2, Boolean: clause.And},
				{Column: "c", Operator: clause.Eq, Value: 3, Boolean: clause.Or},
			},
			"SELECT * FROM users WHERE a = ? AND b > ? OR c = ?", []interface{}{1, 2, 3},
		},
		{
			clause.Conditions{
				{Column: "name", Operator: clause.Like, Value: "%jinzhu%", Boolean: clause.Or},
				{Column: "age", Operator: clause.Gte, Value: 18, Boolean: clause.And},
			},
			"SELECT * FROM users WHERE name LIKE ? AND age >= ?", []interface{}{"%jinzhu%", 18},
		},
		{
			clause.Conditions{
				{Column: "id", Operator: clause.In, Value: []int{1, 2, 3}},
				{Column: "role", Operator: clause.NotIn, Value: []interface{}{"admin"}, Boolean: clause.Or},
			},
			"SELECT * FROM users WHERE id IN (?, ?, ?) OR role NOT IN (?)", []interface{}{1, 2, 3, "admin"},
		},
		{
			clause.Conditions{
				{Column: "deleted_at", Operator: clause.Null},
				{Column: "email", Operator: clause.NotNull, Boolean: clause.And},
			},
			"SELECT * FROM users WHERE deleted_at IS NULL AND email IS NOT NULL", nil,
		},
		{
			clause.Conditions{
				{Column: "age", Operator: clause.Between, Value: []int{18, 30}},
				{Column: "score", Operator: clause.NotBetween, Value: [2]float64{1.5, 2.5}, Boolean: clause.Or},
			},
			"SELECT * FROM users WHERE age BETWEEN ? AND ? OR score NOT BETWEEN ? AND ?", []interface{}{18, 30, 1.5, 2.5},
		},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			stmt := &clause.Statement{}
			stmt.Build(clause.Select{}, clause.From{Table: "users"}, clause.Where{Conditions: result.Conditions})
			assert.Equal(t, result.Result, stmt.String())
			assert.Equal(t, result.Vars, stmt.Vars)
		})
	}
}

func TestWhereEmpty(t *testing.T) {
	stmt := &clause.Statement{}
	stmt.Build(clause.Select{}, clause.From{Table: "users"}, clause.Where{})
	assert.Equal(t, "SELECT * FROM users", stmt.String())
	assert.Empty(t, stmt.Vars)
}

func TestParseOperator(t *testing.T) {
	assert.Equal(t, clause.NotLike, clause.ParseOperator("not  like"))
	assert.Equal(t, clause.In, clause.ParseOperator(" in "))
	assert.Equal(t, clause.Operator("<>"), clause.ParseOperator("<>"))
}

func TestValues(t *testing.T) {
	assert.Equal(t, []interface{}{1, 2}, clause.Values([]int{1, 2}))
	assert.Equal(t, []interface{}{"a"}, clause.Values("a"))
	assert.Equal(t, []interface{}{[]byte("raw")}, clause.Values([]byte("raw")))
	assert.Empty(t, clause.Values(nil))
}
