package clause

import "strings"

type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	CrossJoin JoinType = "CROSS"
)

// Join a single "<TYPE> JOIN table ON left operator right" term
type Join struct {
	Type     JoinType
	Table    string
	Left     string
	Operator string
	Right    string
}

func (join Join) Build(builder Builder) {
	joinType := join.Type
	if joinType == "" {
		joinType = InnerJoin
	}
	builder.WriteString(strings.ToUpper(string(joinType)))
	builder.WriteString(" JOIN ")
	builder.WriteString(join.Table)

	if join.Left != "" {
		operator := join.Operator
		if operator == "" {
			operator = string(Eq)
		}
		builder.WriteString(" ON ")
		builder.WriteString(join.Left)
		builder.WriteString(" " + operator + " ")
		builder.WriteString(join.Right)
	}
}

// Joins join terms rendered in insertion order, separated by spaces
type Joins []Join

// Name joins render their own keywords
func (joins Joins) Name() string {
	return ""
}

func (joins Joins) Build(builder Builder) {
	for idx, join := range joins {
		if idx > 0 {
			builder.WriteByte(' ')
		}
		join.Build(builder)
	}
}

// Empty reports whether there are no joins
func (joins Joins) Empty() bool {
	return len(joins) == 0
}
