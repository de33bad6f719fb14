package clause_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teloquent/teloquent/clause"
)

func TestStatementOrder(t *testing.T) {
	limit10, offset20 := 10, 20
	stmt := &clause.Statement{}
	stmt.Build(
		clause.Select{Columns: []string{"users.*", "COUNT(posts.id) AS posts"}},
		clause.From{Table: "users"},
		clause.Joins{
			{Type: clause.LeftJoin, Table: "posts", Left: "posts.user_id", Operator: "=", Right: "users.id"},
		},
		clause.Where{Conditions: clause.Conditions{{Column: "users.active", Operator: clause.Eq, Value: true}}},
		clause.GroupBy{Columns: []string{"users.id"}},
		clause.Having{Conditions: clause.Conditions{{Column: "posts", Operator: clause.Gt, Value: 1}}},
		clause.OrderBy{Columns: []clause.OrderByColumn{{Column: "users.name"}, {Column: "users.id", Desc: true}}},
		clause.Limit{Limit: &limit10, Offset: &offset20},
	)

	assert.Equal(t,
		"SELECT users.*, COUNT(posts.id) AS posts FROM users LEFT JOIN posts ON posts.user_id = users.id "+
			"WHERE users.active = ? GROUP BY users.id HAVING posts > ? ORDER BY users.name ASC, users.id DESC LIMIT ? OFFSET ?",
		stmt.String(),
	)
	assert.Equal(t, []interface{}{true, 1, 10, 20}, stmt.Vars)
}

func TestLimit(t *testing.T) {
	limit0, limit10, offset5 := 0, 10, 5
	results := []struct {
		Limit  clause.Limit
		Result string
		Vars   []interface{}
	}{
		{clause.Limit{Limit: &limit10}, "SELECT * FROM users LIMIT ?", []interface{}{10}},
		{clause.Limit{Limit: &limit0}, "SELECT * FROM users LIMIT ?", []interface{}{0}},
		{clause.Limit{Limit: &limit10, Offset: &offset5}, "SELECT * FROM users LIMIT ? OFFSET ?", []interface{}{10, 5}},
		{clause.Limit{}, "SELECT * FROM users", nil},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			stmt := &clause.Statement{}
			stmt.Build(clause.Select{}, clause.From{Table: "users"}, result.Limit)
			assert.Equal(t, result.Result, stmt.String())
			assert.Equal(t, result.Vars, stmt.Vars)
		})
	}
}

func TestOffsetWithoutLimit(t *testing.T) {
	offset := 20
	stmt := &clause.Statement{}
	stmt.Build(clause.Select{}, clause.From{Table: "users"}, clause.Limit{Offset: &offset})
	assert.Equal(t, "SELECT * FROM users", stmt.String())
	assert.Empty(t, stmt.Vars)
}

func TestJoins(t *testing.T) {
	stmt := &clause.Statement{}
	stmt.Build(clause.Select{}, clause.From{Table: "roles"}, clause.Joins{
		{Table: "role_user", Left: "roles.id", Right: "role_user.role_id"},
		{Type: clause.LeftJoin, Table: "teams", Left: "teams.id", Operator: "=", Right: "roles.team_id"},
	})
	assert.Equal(t, "SELECT * FROM roles INNER JOIN role_user ON roles.id = role_user.role_id LEFT JOIN teams ON teams.id = roles.team_id", stmt.String())
}
