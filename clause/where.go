package clause

import (
	"reflect"
	"strings"
)

// Boolean conjunction joining a condition to the ones before it
type Boolean string

const (
	And Boolean = "AND"
	Or  Boolean = "OR"
)

// Operator comparison operator of a condition
type Operator string

const (
	Eq         Operator = "="
	Neq        Operator = "!="
	Gt         Operator = ">"
	Gte        Operator = ">="
	Lt         Operator = "<"
	Lte        Operator = "<="
	Like       Operator = "LIKE"
	NotLike    Operator = "NOT LIKE"
	In         Operator = "IN"
	NotIn      Operator = "NOT IN"
	Null       Operator = "NULL"
	NotNull    Operator = "NOT NULL"
	Between    Operator = "BETWEEN"
	NotBetween Operator = "NOT BETWEEN"
)

// ParseOperator normalizes a user supplied operator, "not  like" becomes NOT LIKE.
// Unknown operators are passed through upper-cased.
func ParseOperator(op string) Operator {
	return Operator(strings.ToUpper(strings.Join(strings.Fields(op), " ")))
}

// Condition a single predicate: column, operator, value and the conjunction
// joining it to the previous predicate
type Condition struct {
	Column   string
	Operator Operator
	Value    interface{}
	Boolean  Boolean
}

// Build renders the predicate without its conjunction
func (cond Condition) Build(builder Builder) {
	builder.WriteString(cond.Column)

	switch cond.Operator {
	case In, NotIn:
		builder.WriteString(" " + string(cond.Operator) + " (")
		builder.AddVar(Values(cond.Value)...)
		builder.WriteByte(')')
	case Null:
		builder.WriteString(" IS NULL")
	case NotNull:
		builder.WriteString(" IS NOT NULL")
	case Between, NotBetween:
		values := Values(cond.Value)
		for len(values) < 2 {
			values = append(values, nil)
		}
		builder.WriteString(" " + string(cond.Operator) + " ")
		builder.AddVar(values[0])
		builder.WriteString(" AND ")
		builder.AddVar(values[1])
	default:
		builder.WriteString(" " + string(cond.Operator) + " ")
		builder.AddVar(cond.Value)
	}
}

// Conditions ordered predicate list. The first predicate is rendered without
// a conjunction, every later one is prefixed with its own.
type Conditions []Condition

// Build renders the predicates in insertion order
func (conds Conditions) Build(builder Builder) {
	for idx, cond := range conds {
		if idx > 0 {
			boolean := cond.Boolean
			if boolean == "" {
				boolean = And
			}
			builder.WriteString(" " + strings.ToUpper(string(boolean)) + " ")
		}
		cond.Build(builder)
	}
}

// Where where clause
type Where struct {
	Conditions Conditions
}

// Name where clause name
func (where Where) Name() string {
	return "WHERE"
}

// Build build where clause
func (where Where) Build(builder Builder) {
	where.Conditions.Build(builder)
}

// Empty reports whether the clause has no predicates
func (where Where) Empty() bool {
	return len(where.Conditions) == 0
}

// Having having clause
type Having struct {
	Conditions Conditions
}

// Name having clause name
func (having Having) Name() string {
	return "HAVING"
}

// Build build having clause
func (having Having) Build(builder Builder) {
	having.Conditions.Build(builder)
}

// Empty reports whether the clause has no predicates
func (having Having) Empty() bool {
	return len(having.Conditions) == 0
}

// Values flattens a list-like value into its elements, any other value
// becomes a single element list. []byte is treated as a scalar.
func Values(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return v
	case []byte:
		return []interface{}{v}
	}

	reflectValue := reflect.ValueOf(value)
	switch reflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		values := make([]interface{}, reflectValue.Len())
		for i := 0; i < reflectValue.Len(); i++ {
			values[i] = reflectValue.Index(i).Interface()
		}
		return values
	}
	return []interface{}{value}
}
