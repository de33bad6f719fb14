package teloquent

import (
	"context"
	"strings"

	"github.com/spf13/cast"

	"github.com/teloquent/teloquent/clause"
)

// Asc and Desc sort directions accepted by OrderBy and Collection.SortBy
const (
	Asc  = "asc"
	Desc = "desc"
)

// Query fluent SELECT builder over one table. Mutators append to the query and return it.
// Terminal operations take a context and resolve the DB at execution time.
type Query struct {
	db        *DB
	model     *ModelType
	table     string
	columns   []string
	wheres    clause.Conditions
	havings   clause.Conditions
	orders    []clause.OrderByColumn
	joins     clause.Joins
	groups    []string
	limit     *int
	offset    *int
	eagerLoad []string
}

func newQuery(db *DB, model *ModelType, table string) *Query {
	return &Query{db: db, model: model, table: table}
}

// Table returns the queried table
func (q *Query) Table() string {
	return q.table
}

// Model returns the model type rows hydrate into
func (q *Query) Model() *ModelType {
	return q.modelType()
}

// EagerLoads returns the relation paths to eager load
func (q *Query) EagerLoads() []string {
	return append([]string(nil), q.eagerLoad...)
}

// Select replaces the select list, no columns selects *
func (q *Query) Select(columns ...string) *Query {
	q.columns = append([]string(nil), columns...)
	return q
}

// Where appends an AND predicate. One argument compares with "=",
// two arguments are an operator and a value:
//
//	q.Where("name", "jinzhu")
//	q.Where("age", ">", 18)
//	q.Where("id", "in", []int{1, 2, 3})
//
// The operator is a string or a clause.Operator. Any other operator type compares the
// value with "=", and arguments past the second are ignored.
func (q *Query) Where(column string, args ...interface{}) *Query {
	q.wheres = append(q.wheres, newCondition(column, clause.And, args...))
	return q
}

// OrWhere appends an OR predicate, arguments as in Where
func (q *Query) OrWhere(column string, args ...interface{}) *Query {
	q.wheres = append(q.wheres, newCondition(column, clause.Or, args...))
	return q
}

// WhereCondition appends a prebuilt condition
func (q *Query) WhereCondition(cond clause.Condition) *Query {
	if cond.Boolean == "" {
		cond.Boolean = clause.And
	}
	q.wheres = append(q.wheres, cond)
	return q
}

func (q *Query) WhereIn(column string, values interface{}) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.In, Value: values, Boolean: clause.And})
}

func (q *Query) WhereNotIn(column string, values interface{}) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.NotIn, Value: values, Boolean: clause.And})
}

func (q *Query) OrWhereIn(column string, values interface{}) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.In, Value: values, Boolean: clause.Or})
}

func (q *Query) WhereNull(column string) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.Null, Boolean: clause.And})
}

func (q *Query) WhereNotNull(column string) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.NotNull, Boolean: clause.And})
}

func (q *Query) OrWhereNull(column string) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.Null, Boolean: clause.Or})
}

func (q *Query) WhereBetween(column string, from, to interface{}) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.Between, Value: []interface{}{from, to}, Boolean: clause.And})
}

func (q *Query) WhereNotBetween(column string, from, to interface{}) *Query {
	return q.WhereCondition(clause.Condition{Column: column, Operator: clause.NotBetween, Value: []interface{}{from, to}, Boolean: clause.And})
}

// OrderBy appends an ordering term, direction defaults to ascending
func (q *Query) OrderBy(column string, direction ...string) *Query {
	desc := len(direction) > 0 && strings.EqualFold(direction[0], Desc)
	q.orders = append(q.orders, clause.OrderByColumn{Column: column, Desc: desc})
	return q
}

func (q *Query) OrderByDesc(column string) *Query {
	return q.OrderBy(column, Desc)
}

func (q *Query) Limit(limit int) *Query {
	q.limit = &limit
	return q
}

func (q *Query) Offset(offset int) *Query {
	q.offset = &offset
	return q
}

func (q *Query) GroupBy(columns ...string) *Query {
	q.groups = append(q.groups, columns...)
	return q
}

// Having appends an AND predicate to the HAVING clause, arguments as in Where
func (q *Query) Having(column string, args ...interface{}) *Query {
	q.havings = append(q.havings, newCondition(column, clause.And, args...))
	return q
}

func (q *Query) OrHaving(column string, args ...interface{}) *Query {
	q.havings = append(q.havings, newCondition(column, clause.Or, args...))
	return q
}

// Join appends a join, kind defaults to INNER
func (q *Query) Join(table, left, operator, right string, kind ...clause.JoinType) *Query {
	joinType := clause.InnerJoin
	if len(kind) > 0 && kind[0] != "" {
		joinType = kind[0]
	}
	q.joins = append(q.joins, clause.Join{Type: joinType, Table: table, Left: left, Operator: operator, Right: right})
	return q
}

func (q *Query) LeftJoin(table, left, operator, right string) *Query {
	return q.Join(table, left, operator, right, clause.LeftJoin)
}

// With appends relation paths to eager load after Get, "posts.comments" loads nested relations
func (q *Query) With(paths ...string) *Query {
	q.eagerLoad = append(q.eagerLoad, paths...)
	return q
}

func newCondition(column string, boolean clause.Boolean, args ...interface{}) clause.Condition {
	cond := clause.Condition{Column: column, Operator: clause.Eq, Boolean: boolean}
	switch len(args) {
	case 0:
	case 1:
		cond.Value = args[0]
	default:
		// unsupported operator types keep "="
		if op, ok := args[0].(string); ok {
			cond.Operator = clause.ParseOperator(op)
		} else if op, ok := args[0].(clause.Operator); ok {
			cond.Operator = op
		}
		cond.Value = args[1]
	}
	return cond
}

// BuildQuery renders the SELECT statement and its parameters
func (q *Query) BuildQuery() (string, []interface{}) {
	return q.build(q.columns)
}

func (q *Query) build(columns []string) (string, []interface{}) {
	stmt := &clause.Statement{}
	stmt.Build(
		clause.Select{Columns: columns},
		clause.From{Table: q.table},
		q.joins,
		clause.Where{Conditions: q.wheres},
		clause.GroupBy{Columns: q.groups},
		clause.Having{Conditions: q.havings},
		clause.OrderBy{Columns: q.orders},
		clause.Limit{Limit: q.limit, Offset: q.offset},
	)
	return stmt.String(), stmt.Vars
}

// BuildWhereClause renders only the predicates, "1=1" when there are none
func (q *Query) BuildWhereClause() (string, []interface{}) {
	if len(q.wheres) == 0 {
		return "1=1", nil
	}

	stmt := &clause.Statement{}
	q.wheres.Build(stmt)
	return stmt.String(), stmt.Vars
}

func (q *Query) resolveDB() (*DB, error) {
	if q.db != nil && q.db.Conn != nil {
		return q.db, nil
	}
	if q.model != nil {
		return q.model.resolveDB()
	}
	if db := Default(); db != nil && db.Conn != nil {
		return db, nil
	}
	return nil, ErrNotInitialized
}

func (q *Query) modelType() *ModelType {
	if q.model == nil {
		q.model = Define(q.table, Options{Table: q.table, DisableTimestamps: true})
		q.model.db = q.db
	}
	return q.model
}

// Rows runs the query and returns the raw rows
func (q *Query) Rows(ctx context.Context) ([]map[string]interface{}, error) {
	db, err := q.resolveDB()
	if err != nil {
		return nil, err
	}

	sql, params := q.BuildQuery()
	return db.selectRows(ctx, sql, params)
}

// Get runs the query, hydrates the rows into records and eager loads the With paths in order
func (q *Query) Get(ctx context.Context) (*Collection, error) {
	db, err := q.resolveDB()
	if err != nil {
		return nil, err
	}

	sql, params := q.BuildQuery()
	rows, err := db.selectRows(ctx, sql, params)
	if err != nil {
		return nil, err
	}

	mt := q.modelType()
	models := make([]*Model, 0, len(rows))
	for _, row := range rows {
		models = append(models, mt.hydrate(row))
	}

	results := NewCollection(models...)
	if len(q.eagerLoad) > 0 {
		if err := loadRelations(ctx, db, mt, results, q.eagerLoad); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// First runs the query limited to one row, nil when nothing matches. The previous limit is restored.
func (q *Query) First(ctx context.Context) (*Model, error) {
	limit := q.limit
	defer func() { q.limit = limit }()

	results, err := q.Limit(1).Get(ctx)
	if err != nil {
		return nil, err
	}
	return results.First(), nil
}

// FirstOrFail is First returning a *NotFoundError when nothing matches
func (q *Query) FirstOrFail(ctx context.Context) (*Model, error) {
	m, err := q.First(ctx)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &NotFoundError{Model: q.modelType().Name}
	}
	return m, nil
}

// Find returns the first record whose primary key equals id
func (q *Query) Find(ctx context.Context, id interface{}) (*Model, error) {
	return q.Where(q.modelType().PrimaryKeyName(), id).First(ctx)
}

// Count runs the query as SELECT COUNT(column) AS count, column defaults to *.
// The select list is left untouched.
func (q *Query) Count(ctx context.Context, column ...string) (int64, error) {
	db, err := q.resolveDB()
	if err != nil {
		return 0, err
	}

	col := "*"
	if len(column) > 0 && column[0] != "" {
		col = column[0]
	}

	sql, params := q.build([]string{"COUNT(" + col + ") AS count"})
	rows, err := db.selectRows(ctx, sql, params)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return cast.ToInt64E(rows[0]["count"])
}

// Exists reports whether Count is positive
func (q *Query) Exists(ctx context.Context) (bool, error) {
	count, err := q.Count(ctx)
	return count > 0, err
}

// Pluck returns the values of column for every matching row
func (q *Query) Pluck(ctx context.Context, column string) ([]interface{}, error) {
	db, err := q.resolveDB()
	if err != nil {
		return nil, err
	}

	sql, params := q.build([]string{column})
	rows, err := db.selectRows(ctx, sql, params)
	if err != nil {
		return nil, err
	}

	key := column
	if idx := strings.LastIndexByte(column, '.'); idx >= 0 {
		key = column[idx+1:]
	}

	values := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, row[key])
	}
	return values, nil
}

// Insert inserts row into the query's table and returns the insert id
func (q *Query) Insert(ctx context.Context, row map[string]interface{}) (int64, error) {
	db, err := q.resolveDB()
	if err != nil {
		return 0, err
	}
	return db.insertRow(ctx, q.table, copyMap(row))
}

// Update sets data on the rows matching the where predicates and returns the affected row count
func (q *Query) Update(ctx context.Context, data map[string]interface{}) (int64, error) {
	db, err := q.resolveDB()
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}

	whereSQL, params := q.BuildWhereClause()
	return db.updateRows(ctx, q.table, copyMap(data), whereSQL, params)
}

// Delete removes the rows matching the where predicates and returns the affected row count
func (q *Query) Delete(ctx context.Context) (int64, error) {
	db, err := q.resolveDB()
	if err != nil {
		return 0, err
	}

	whereSQL, params := q.BuildWhereClause()
	return db.deleteRows(ctx, q.table, whereSQL, params)
}
